package megamart

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func TestBreaker_CicloCompleto(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	b := NewBreaker(BreakerConfig{FailureThreshold: 2, SuccessThreshold: 2, OpenTimeout: 10 * time.Second}, nil)
	b.now = func() time.Time { return now }

	var transitions []string
	b.OnTransition(func(from, to BreakerState) { transitions = append(transitions, from.String()+"→"+to.String()) })

	fail := func() error { return errBoom }
	ok := func() error { return nil }

	assert.ErrorIs(t, b.Execute(fail), errBoom)
	assert.Equal(t, BreakerClosed, b.State())
	assert.ErrorIs(t, b.Execute(fail), errBoom)
	assert.Equal(t, BreakerOpen, b.State())

	called := false
	err := b.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(10 * time.Second)
	assert.Equal(t, BreakerHalfOpen, b.State())
	assert.NoError(t, b.Execute(ok))
	assert.Equal(t, BreakerHalfOpen, b.State())
	assert.NoError(t, b.Execute(ok))
	assert.Equal(t, BreakerClosed, b.State())

	assert.Equal(t, []string{"closed→open", "open→half-open", "half-open→closed"}, transitions)
}

func TestBreaker_FalloEnHalfOpenReabre(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second}, nil)
	b.now = func() time.Time { return now }

	_ = b.Execute(func() error { return errBoom })
	now = now.Add(time.Second)
	assert.Equal(t, BreakerHalfOpen, b.State())

	_ = b.Execute(func() error { return errBoom })
	assert.Equal(t, BreakerOpen, b.State())
}

func TestBreaker_HalfOpenAdmiteUnaSolaPrueba(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, OpenTimeout: time.Second}, nil)
	b.now = func() time.Time { return now }

	_ = b.Execute(func() error { return errBoom })
	now = now.Add(time.Second)
	assert.Equal(t, BreakerHalfOpen, b.State())

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Execute(func() error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	called := false
	err := b.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	close(release)
	assert.NoError(t, <-done)
	assert.Equal(t, BreakerClosed, b.State())
	assert.NoError(t, b.Execute(func() error { return nil }))
}

func TestBreaker_PruebaFallidaLiberaElTurno(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second}, nil)
	b.now = func() time.Time { return now }

	_ = b.Execute(func() error { return errBoom })
	now = now.Add(time.Second)
	assert.ErrorIs(t, b.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, BreakerOpen, b.State())

	now = now.Add(time.Second)
	called := false
	assert.NoError(t, b.Execute(func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
}

func TestBreaker_ErroresIgnorados(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 1}, func(err error) bool { return !errors.Is(err, errBoom) })

	assert.ErrorIs(t, b.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, BreakerClosed, b.State())
}
