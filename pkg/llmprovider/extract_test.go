package llmprovider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
)

func TestExtractJSON_FencedBlock(t *testing.T) {
	raw := "Here is the classification:\n```json\n{\"label\": \"search\", \"confidence\": 0.8}\n```\nLet me know if you need more."
	out, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"label": "search", "confidence": 0.8}`, out)
}

func TestExtractJSON_BareObject(t *testing.T) {
	out, err := ExtractJSON(`{"label":"checkout","confidence":0.91}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"checkout","confidence":0.91}`, out)
}

func TestExtractJSON_ProseWrapped(t *testing.T) {
	out, err := ExtractJSON("sure, the answer is {\"label\":\"info\",\"confidence\":0.5} as requested")
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"info","confidence":0.5}`, out)
}

func TestExtractJSON_NoObject(t *testing.T) {
	_, err := ExtractJSON("no structured data here")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidationFailure, apperrors.KindOf(err))
}

func TestExtractJSON_Empty(t *testing.T) {
	_, err := ExtractJSON("   ")
	require.Error(t, err)
}
