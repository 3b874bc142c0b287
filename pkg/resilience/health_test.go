package resilience

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthAggregator_EmptyIsOK(t *testing.T) {
	h := NewHealthAggregator()
	reports, overall := h.Check(context.Background())
	assert.Empty(t, reports)
	assert.Equal(t, HealthOK, overall)
}

func TestHealthAggregator_WorstOfAggregation(t *testing.T) {
	h := NewHealthAggregator()
	h.Register("db", func(ctx context.Context) (HealthStatus, string) { return HealthOK, "" })
	h.Register("cache", func(ctx context.Context) (HealthStatus, string) { return HealthDegraded, "slow" })
	h.Register("model", func(ctx context.Context) (HealthStatus, string) { return HealthUnhealthy, "down" })

	reports, overall := h.Check(context.Background())
	assert.Len(t, reports, 3)
	assert.Equal(t, HealthUnhealthy, overall)
}

func TestHealthAggregator_Unregister(t *testing.T) {
	h := NewHealthAggregator()
	h.Register("flaky", func(ctx context.Context) (HealthStatus, string) { return HealthUnhealthy, "down" })
	h.Unregister("flaky")

	reports, overall := h.Check(context.Background())
	assert.Empty(t, reports)
	assert.Equal(t, HealthOK, overall)
}

func TestHealthStatus_String(t *testing.T) {
	assert.Equal(t, "ok", HealthOK.String())
	assert.Equal(t, "degraded", HealthDegraded.String())
	assert.Equal(t, "unhealthy", HealthUnhealthy.String())
}
