package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRemote = errors.New("remote unavailable")

func failing(ctx context.Context) error { return errRemote }
func succeeding(ctx context.Context) error { return nil }

func tripBreaker(t *testing.T, cb *CircuitBreaker, failures int) {
	t.Helper()
	for i := 0; i < failures; i++ {
		err := cb.Execute(context.Background(), failing)
		require.ErrorIs(t, err, errRemote)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.Equal(t, "OPEN", StateOpen.String())
	assert.Equal(t, "HALF_OPEN", StateHalfOpen.String())
	assert.Equal(t, "UNKNOWN", State(99).String())
}

func TestClosedBreakerPassesThrough(t *testing.T) {
	cb := New("test", 3, time.Minute)

	require.NoError(t, cb.Execute(context.Background(), succeeding))
	assert.Equal(t, StateClosed, cb.GetState())

	stats := cb.GetStats()
	assert.Equal(t, uint32(1), stats.Requests)
	assert.Equal(t, uint32(1), stats.Successes)
}

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := New("test", 3, time.Minute)

	tripBreaker(t, cb, 3)
	assert.Equal(t, StateOpen, cb.GetState())

	// Rejected without invoking fn.
	called := false
	err := cb.Execute(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, IsCircuitBreakerError(err))
	assert.False(t, called)
}

func TestBreakerStaysClosedBelowThreshold(t *testing.T) {
	cb := New("test", 3, time.Minute)

	tripBreaker(t, cb, 2)
	assert.Equal(t, StateClosed, cb.GetState())
	require.NoError(t, cb.Execute(context.Background(), succeeding))
}

func TestBreakerHalfOpensAfterTimeout(t *testing.T) {
	cb := New("test", 3, 20*time.Millisecond)

	tripBreaker(t, cb, 3)
	require.Equal(t, StateOpen, cb.GetState())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.GetState())
}

func TestHalfOpenClosesAfterSuccessfulProbes(t *testing.T) {
	cb := New("test", 3, 20*time.Millisecond)

	tripBreaker(t, cb, 3)
	time.Sleep(30 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, cb.Execute(context.Background(), succeeding))
	}
	assert.Equal(t, StateClosed, cb.GetState())

	// The failure count was reset on close.
	require.ErrorIs(t, cb.Execute(context.Background(), failing), errRemote)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestHalfOpenReopensOnFailure(t *testing.T) {
	cb := New("test", 3, 20*time.Millisecond)

	tripBreaker(t, cb, 3)
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, StateHalfOpen, cb.GetState())

	require.ErrorIs(t, cb.Execute(context.Background(), failing), errRemote)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestHalfOpenLimitsProbeCalls(t *testing.T) {
	cb := New("test", 3, 20*time.Millisecond)

	tripBreaker(t, cb, 3)
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, StateHalfOpen, cb.GetState())

	// Hold the probe slots open with calls that neither succeed nor fail
	// yet: simulate by running the budget down with successes that do not
	// reach the close threshold mid-loop.
	blocked := make(chan struct{})
	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			done <- cb.Execute(context.Background(), func(ctx context.Context) error {
				<-blocked
				return nil
			})
		}()
	}

	// One of the four must be rejected: half-open admits three probes.
	var rejected int
	timeout := time.After(2 * time.Second)
	for i := 0; i < 1; i++ {
		select {
		case err := <-done:
			require.True(t, IsCircuitBreakerError(err))
			rejected++
		case <-timeout:
			t.Fatal("no call was rejected in half-open state")
		}
	}
	assert.Equal(t, 1, rejected)

	close(blocked)
	for i := 0; i < 3; i++ {
		require.NoError(t, <-done)
	}
}

func TestCircuitBreakerError(t *testing.T) {
	err := &CircuitBreakerError{Name: "directory-api", State: StateOpen}
	assert.Equal(t, "circuit breaker 'directory-api' is OPEN", err.Error())
	assert.True(t, IsCircuitBreakerError(err))
	assert.False(t, IsCircuitBreakerError(errors.New("other")))
	assert.False(t, IsCircuitBreakerError(nil))
}

func TestGetStats(t *testing.T) {
	cb := New("directory-api", 2, time.Minute)

	require.NoError(t, cb.Execute(context.Background(), succeeding))
	require.ErrorIs(t, cb.Execute(context.Background(), failing), errRemote)

	stats := cb.GetStats()
	assert.Equal(t, "directory-api", stats.Name)
	assert.Equal(t, uint32(2), stats.Requests)
	assert.Equal(t, uint32(1), stats.Successes)
	assert.Equal(t, uint32(1), stats.Failures)
	assert.False(t, stats.LastFailureTime.IsZero())
}
