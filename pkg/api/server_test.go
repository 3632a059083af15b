package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWiring_ReportsEveryMissingCollaborator(t *testing.T) {
	s := &Server{}
	err := s.ValidateWiring()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"orchestrator", "pipeline", "catalog", "orderBook", "transcripts", "auth"} {
		assert.Contains(t, msg, want)
	}
}

func TestValidateWiring_PassesWhenRequiredCollaboratorsSet(t *testing.T) {
	// orchestrator/pipeline are concrete *struct types; ValidateWiring only
	// checks nil-ness, so leaving them nil here still exercises every other
	// branch without constructing a real orchestrator/pipeline.
	s := &Server{
		catalog:     &fakeCatalog{},
		orderBook:   newFakeOrderBook(),
		transcripts: &fakeTranscriptStore{},
		auth:        newFakeAuth(),
	}
	err := s.ValidateWiring()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orchestrator")
	assert.Contains(t, err.Error(), "pipeline")
	assert.NotContains(t, err.Error(), "catalog not set")
}
