package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_CheckNow_ReportsPerDependencyStatus(t *testing.T) {
	m := NewMonitor(map[string]Checker{
		"catalog": func(ctx context.Context) error { return nil },
		"llm":     func(ctx context.Context) error { return errors.New("boom") },
	}, nil)

	statuses := m.CheckNow(context.Background())
	require.Len(t, statuses, 2)
	assert.True(t, statuses["catalog"].Healthy)
	assert.False(t, statuses["llm"].Healthy)
	assert.Equal(t, "boom", statuses["llm"].Error)
}

func TestMonitor_Healthy_FalseBeforeFirstCheck(t *testing.T) {
	m := NewMonitor(map[string]Checker{"catalog": func(ctx context.Context) error { return nil }}, nil)
	assert.False(t, m.Healthy())
}

func TestMonitor_StartStop_PopulatesStatuses(t *testing.T) {
	m := NewMonitor(map[string]Checker{"catalog": func(ctx context.Context) error { return nil }}, nil)
	m.checkInterval = 10 * time.Millisecond
	m.Start(context.Background())
	defer m.Stop()

	require.Eventually(t, func() bool { return m.Healthy() }, time.Second, 5*time.Millisecond)
}
