package ttsprovider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopProvider_ReturnsNoAudio(t *testing.T) {
	var p NoopProvider
	url, err := p.Synthesize(context.Background(), "hola", "neutral")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestEncodeAudio_BuildsDataURL(t *testing.T) {
	url := EncodeAudio("audio/mpeg", []byte("fake-mp3-bytes"))
	assert.Equal(t, "data:audio/mpeg;base64,ZmFrZS1tcDMtYnl0ZXM=", url)
}
