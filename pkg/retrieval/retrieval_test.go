package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBestPassage_PicksHighestScoreAndStripsPrefix(t *testing.T) {
	text, ok := BestPassage([]Passage{
		{Text: "Answer: devoluciones en 30 dias", Score: 0.4},
		{Text: "Answer: envios gratis sobre $50", Score: 0.9},
	})
	assert.True(t, ok)
	assert.Equal(t, "envios gratis sobre $50", text)
}

func TestBestPassage_Empty(t *testing.T) {
	_, ok := BestPassage(nil)
	assert.False(t, ok)
}

func TestBestPassage_NoPrefix(t *testing.T) {
	text, ok := BestPassage([]Passage{{Text: "horario de 9 a 18", Score: 0.5}})
	assert.True(t, ok)
	assert.Equal(t, "horario de 9 a 18", text)
}
