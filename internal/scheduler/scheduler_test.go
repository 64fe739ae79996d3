package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-intern-harvester/internal/logger"
)

func TestStart_InvalidSpec(t *testing.T) {
	s := New("not a schedule", 0, func(context.Context) error { return nil }, logger.NewNop())
	assert.Error(t, s.Start(context.Background()))
}

func TestFire_AppliesTimeout(t *testing.T) {
	var deadline bool
	s := New("@every 1h", time.Minute, func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return nil
	}, logger.NewNop())

	s.fire(context.Background())

	assert.True(t, deadline)
}

func TestFire_SurvivesPanicAndErrors(t *testing.T) {
	var calls atomic.Int32
	s := New("@every 1h", 0, func(context.Context) error {
		switch calls.Add(1) {
		case 1:
			panic("boom")
		case 2:
			return ErrSkipped
		default:
			return errors.New("failed")
		}
	}, logger.NewNop())

	for i := 0; i < 3; i++ {
		assert.NotPanics(t, func() { s.fire(context.Background()) })
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := New("@every 1s", 0, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}, logger.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled run did not fire")
	}
}
