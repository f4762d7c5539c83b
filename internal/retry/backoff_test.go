package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff(t *testing.T) {
	base := 100 * time.Millisecond

	tests := []struct {
		name     string
		attempt  int
		base     time.Duration
		expected time.Duration
	}{
		{"first attempt", 0, base, 100 * time.Millisecond},
		{"doubles", 1, base, 200 * time.Millisecond},
		{"doubles again", 4, base, 1600 * time.Millisecond},
		{"negative attempt", -2, base, 100 * time.Millisecond},
		{"capped", 10, time.Second, MaxDelay},
		{"huge attempt", 200, base, MaxDelay},
		{"zero base", 3, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExponentialBackoff(tt.attempt, tt.base))
		})
	}
}
