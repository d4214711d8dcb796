package benchmark

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRunTrials_KeepsCallOrder(t *testing.T) {
	calls := 0
	trial := func(context.Context) Outcome {
		calls++
		return succeeded(KindUpload, testEpoch, testEpoch, strconv.Itoa(calls), "")
	}
	progress := &countingProgress{}

	set := RunTrials(context.Background(), 4, trial, TrialOptions{Progress: progress})

	require.Len(t, set.Outcomes, 4)
	for i, o := range set.Outcomes {
		assert.Equal(t, strconv.Itoa(i+1), o.Source)
	}
	assert.Equal(t, 4, calls)
	assert.Equal(t, 4, progress.steps)
}

func TestRunTrials_NoTrials(t *testing.T) {
	for _, count := range []int{0, -3} {
		called := false
		set := RunTrials(context.Background(), count, func(context.Context) Outcome {
			called = true
			return Outcome{}
		}, TrialOptions{})

		assert.False(t, called)
		assert.Empty(t, set.Outcomes)
		assert.Nil(t, set.AverageMillis())
	}
}

func TestRunTrials_CancelledLimiterRecordsFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	set := RunTrials(ctx, 3, func(context.Context) Outcome {
		called = true
		return Outcome{}
	}, TrialOptions{Limiter: rate.NewLimiter(1, 1), Kind: KindDownload})

	assert.False(t, called)
	require.Len(t, set.Outcomes, 3)
	for _, o := range set.Outcomes {
		assert.False(t, o.Succeeded())
		assert.ErrorIs(t, o.Err, context.Canceled)
		assert.Equal(t, KindDownload, o.Kind)
	}
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0))
	assert.Nil(t, NewLimiter(-1))

	l := NewLimiter(5)
	require.NotNil(t, l)
	assert.Equal(t, rate.Limit(5), l.Limit())
	assert.Equal(t, 1, l.Burst())
}
