package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/eventkit/pkg/clock"
)

func TestFixed(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := clock.Fixed(at)

	assert.Equal(t, at, c.Now())
	assert.Equal(t, at, c.Now(), "fixed clock never advances")
}

func TestSystem(t *testing.T) {
	t.Parallel()

	c := clock.System()
	now := c.Now()

	assert.WithinDuration(t, time.Now().UTC(), now, time.Second)
	assert.Equal(t, time.UTC, now.Location())
}
