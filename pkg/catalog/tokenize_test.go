package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_DropsStopWordsAndShortTokens(t *testing.T) {
	tokens := tokenize("Busco una chaqueta de cuero para el invierno")
	assert.ElementsMatch(t, []string{"busco", "chaqueta", "cuero", "invierno"}, tokens)
}

func TestTokenize_Empty(t *testing.T) {
	assert.Empty(t, tokenize("de la el"))
}
