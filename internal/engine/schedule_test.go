package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/spotlcd/helpers"
	"github.com/temoto/spotlcd/log2"
)

func TestNextDelay(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(Config{}, nil, nil, nil)
	require.NoError(t, err)
	cases := []struct {
		now    string
		expect time.Duration
	}{
		{"10:00:00", 60 * time.Minute},
		{"10:00:59", 60 * time.Minute},
		{"10:17:30", 43 * time.Minute},
		{"10:59:00", 1 * time.Minute},
		{"10:59:59", 1 * time.Minute},
		{"23:30:10", 30 * time.Minute},
	}
	for _, c := range cases {
		tm, err := time.Parse("2006-01-02 15:04:05", "2024-02-25 "+c.now)
		require.NoError(t, err)
		assert.Equal(t, c.expect, s.NextDelay(tm), c.now)
	}
}

func TestNewSchedulerBadCron(t *testing.T) {
	t.Parallel()

	_, err := NewScheduler(Config{Cron: "every hour"}, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every hour")
}

func TestStep(t *testing.T) {
	t.Parallel()

	clock := helpers.NewMockClock(time.Date(2024, 2, 25, 10, 17, 30, 0, time.UTC))
	var jobErr error
	s, err := NewScheduler(Config{}, func(context.Context) error { return jobErr }, clock, log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)

	// 503 scenario: retry in one minute
	jobErr = fmt.Errorf("price: fetch status=503")
	d, err := s.Step(context.Background())
	assert.Error(t, err)
	assert.Equal(t, time.Minute, d)
	assert.Equal(t, 1, s.Failures())
	clock.Add(d)
	_, _ = s.Step(context.Background())
	assert.Equal(t, 2, s.Failures())
	clock.Add(time.Minute)

	jobErr = nil
	d, err = s.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 41*time.Minute, d)
	st := s.Stat()
	assert.Equal(t, uint32(3), st.Runs)
	assert.Equal(t, int32(0), st.Failures)
	assert.Equal(t, "10:19:30", st.LastSuccess.UTC().Format("15:04:05"))
	assert.Equal(t, "10:18:30", st.LastFailure.UTC().Format("15:04:05"))
}

func TestStepPanic(t *testing.T) {
	t.Parallel()

	clock := helpers.NewMockClock(time.Date(2024, 2, 25, 10, 0, 0, 0, time.UTC))
	s, err := NewScheduler(Config{RetrySec: 5}, func(context.Context) error { panic("bus gone") }, clock, log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)
	d, err := s.Step(context.Background())
	require.Error(t, err)
	assert.Contains(t, errors.Cause(err).Error(), "bus gone")
	assert.Equal(t, 5*time.Second, d)
}

func TestRun(t *testing.T) {
	t.Parallel()

	clock := helpers.NewMockClock(time.Date(2024, 2, 25, 10, 17, 30, 0, time.UTC))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := []time.Time{}
	results := []error{fmt.Errorf("fail"), nil, nil, fmt.Errorf("fail"), nil}
	job := func(context.Context) error {
		calls = append(calls, clock.Now())
		err := results[len(calls)-1]
		if len(calls) == len(results) {
			cancel()
		}
		return err
	}
	s, err := NewScheduler(Config{}, job, clock, log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)
	require.NoError(t, s.Run(ctx))

	require.Len(t, calls, len(results))
	expect := []string{"10:17:30", "10:18:30", "11:00:30", "12:00:30", "12:01:30"}
	for i, c := range calls {
		assert.Equal(t, expect[i], c.Format("15:04:05"), "call=%d", i)
	}
	// last step armed timer before cancel was noticed
	waits := clock.Waits()
	assert.Equal(t, []time.Duration{time.Minute, 42 * time.Minute, 60 * time.Minute, time.Minute}, waits[:4])
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	s, err := NewScheduler(Config{}, func(context.Context) error { calls++; return nil }, helpers.NewMockClock(time.Now()), nil)
	require.NoError(t, err)
	require.NoError(t, s.Run(ctx))
	assert.Equal(t, 0, calls)
}
