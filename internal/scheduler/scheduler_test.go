package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweeperStub struct {
	calls atomic.Int32
}

func (s *sweeperStub) SweepExpired(context.Context) (int, error) {
	s.calls.Add(1)
	return 1, nil
}

func TestScheduler_RunsSweep(t *testing.T) {
	t.Parallel()

	sweeper := &sweeperStub{}
	sched, err := New(sweeper, 10*time.Millisecond)
	require.NoError(t, err)

	sched.Start()
	defer func() {
		assert.NoError(t, sched.Shutdown())
	}()

	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_DisabledInterval(t *testing.T) {
	t.Parallel()

	sweeper := &sweeperStub{}
	sched, err := New(sweeper, 0)
	require.NoError(t, err)

	sched.Start()
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, sched.Shutdown())

	assert.Zero(t, sweeper.calls.Load())
}
