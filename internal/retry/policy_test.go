package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/webfonts/internal/config"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, config.RetryBackoffLinear, p.Mode)
	assert.Equal(t, time.Second, p.Initial)
	assert.Equal(t, 30*time.Second, p.Max)
	assert.Equal(t, 2, p.MaxRetries)
}

// Initial greater than max is clamped.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	assert.Equal(t, 2*time.Second, p.Initial)
	assert.Equal(t, 2*time.Second, p.Max)
	assert.Equal(t, config.RetryBackoffFixed, p.Mode)
	assert.Equal(t, 5, p.MaxRetries)
}

func TestDelayModes(t *testing.T) {
	ms := time.Millisecond
	tests := []struct {
		name   string
		policy Policy
		want   []time.Duration // attempts 1..4
	}{
		{"fixed", NewPolicy(config.RetryBackoffFixed, 100*ms, 500*ms, 3), []time.Duration{100 * ms, 100 * ms, 100 * ms, 100 * ms}},
		{"linear", NewPolicy(config.RetryBackoffLinear, 100*ms, 250*ms, 5), []time.Duration{100 * ms, 200 * ms, 250 * ms, 250 * ms}},
		{"exponential", NewPolicy(config.RetryBackoffExponential, 50*ms, 160*ms, 5), []time.Duration{50 * ms, 100 * ms, 160 * ms, 160 * ms}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, want := range tt.want {
				assert.Equal(t, want, tt.policy.Delay(i+1), "attempt %d", i+1)
			}
		})
	}
}

func TestDelayEdgeCases(t *testing.T) {
	p := NewPolicy(config.RetryBackoffLinear, 10*time.Millisecond, 20*time.Millisecond, 1)
	assert.Zero(t, p.Delay(0))
	assert.Zero(t, p.Delay(-1))
}

func TestValidate(t *testing.T) {
	assert.Error(t, Policy{Mode: config.RetryBackoffLinear, Max: time.Second, MaxRetries: 1}.Validate())
	assert.Error(t, Policy{Mode: config.RetryBackoffLinear, Initial: time.Second, MaxRetries: 1}.Validate())
	assert.Error(t, Policy{Mode: config.RetryBackoffLinear, Initial: time.Second, Max: 2 * time.Second, MaxRetries: -1}.Validate())
	assert.NoError(t, Policy{Mode: config.RetryBackoffLinear, Initial: time.Second, Max: 2 * time.Second}.Validate())
}

func TestUnknownModeFallsBack(t *testing.T) {
	p := NewPolicy("weird", 250*time.Millisecond, 500*time.Millisecond, 1)
	assert.Equal(t, config.RetryBackoffLinear, p.Mode)
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{Sink: config.SinkConfig{Retry: config.RetryConfig{
		Mode: config.RetryBackoffExponential, Initial: "10ms", Max: "1s", MaxRetries: 4,
	}}}
	p := FromConfig(cfg)
	assert.Equal(t, NewPolicy(config.RetryBackoffExponential, 10*time.Millisecond, time.Second, 4), p)
}

var errTransient = errors.New("transient")

func always(error) bool { return true }

func TestDo_RetriesUntilSuccess(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)
	var attempts []int
	err := p.Do(context.Background(), always, func(attempt int) error {
		attempts = append(attempts, attempt)
		if attempt < 2 {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, attempts)
}

func TestDo_StopsOnExhaustionAndPermanentErrors(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)
	calls := 0
	err := p.Do(context.Background(), always, func(int) error { calls++; return errTransient })
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)

	calls = 0
	err = p.Do(context.Background(), func(error) bool { return false }, func(int) error { calls++; return errTransient })
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 5)
	ctx, cancel := context.WithCancel(context.Background())
	err := p.Do(ctx, always, func(int) error { cancel(); return errTransient })
	assert.ErrorIs(t, err, context.Canceled)
}
