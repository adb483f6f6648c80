package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, New().Now().Location())
}

func TestSince(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	fixed := Func(func() time.Time { return start.Add(90 * time.Second) })

	assert.Equal(t, 90*time.Second, Since(fixed, start))
}
