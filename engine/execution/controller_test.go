package execution

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/compozy/foodtour/engine/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConnReset = errors.New("connection reset by peer")

type step struct {
	status remote.ExecutionStatus
	output string
	detail string
	err    error
}

// scriptedFetcher replays steps in order and repeats the last one when the
// script runs out.
type scriptedFetcher struct {
	mu    sync.Mutex
	steps []step
	calls int
}

func (f *scriptedFetcher) GetExecution(_ context.Context, id remote.ExecutionID) (*remote.ExecutionResult, error) {
	f.mu.Lock()
	f.calls++
	s := f.steps[min(f.calls-1, len(f.steps)-1)]
	f.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	result := &remote.ExecutionResult{ID: id, Status: s.status, Error: s.detail}
	if s.output != "" {
		result.Output = json.RawMessage(s.output)
	}
	return result, nil
}

func (f *scriptedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// timedFetcher records when each query was made.
type timedFetcher struct {
	scriptedFetcher
	at []time.Time
}

func (f *timedFetcher) GetExecution(ctx context.Context, id remote.ExecutionID) (*remote.ExecutionResult, error) {
	f.mu.Lock()
	f.at = append(f.at, time.Now())
	f.mu.Unlock()
	return f.scriptedFetcher.GetExecution(ctx, id)
}

func (f *timedFetcher) gaps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, 0, len(f.at))
	for i := 1; i < len(f.at); i++ {
		out = append(out, f.at[i].Sub(f.at[i-1]))
	}
	return out
}

type recordingReporter struct {
	attempts []PollAttempt
	finished []*Outcome
}

func (r *recordingReporter) Progress(a PollAttempt) { r.attempts = append(r.attempts, a) }
func (r *recordingReporter) Finished(o *Outcome)    { r.finished = append(r.finished, o) }

func (r *recordingReporter) ordinals() []int {
	out := make([]int, 0, len(r.attempts))
	for _, a := range r.attempts {
		out = append(out, a.Ordinal)
	}
	return out
}

func repeat(s step, n int) []step {
	out := make([]step, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func testPolicy(maxAttempts int) Policy {
	return Policy{MaxAttempts: maxAttempts, Interval: 2 * time.Millisecond}
}

func newTestController(t *testing.T, f StatusFetcher, p Policy) (*Controller, *recordingReporter) {
	t.Helper()
	rep := &recordingReporter{}
	c, err := NewController(f, p, WithReporter(rep))
	require.NoError(t, err)
	return c, rep
}

func TestNewController(t *testing.T) {
	t.Run("Should reject a nil fetcher", func(t *testing.T) {
		_, err := NewController(nil, DefaultPolicy())
		assert.Error(t, err)
	})

	t.Run("Should reject an invalid policy", func(t *testing.T) {
		f := &scriptedFetcher{steps: []step{{status: remote.StatusSucceeded}}}
		_, err := NewController(f, Policy{MaxAttempts: 0, Interval: time.Second})
		assert.Error(t, err)
		_, err = NewController(f, Policy{MaxAttempts: 3})
		assert.Error(t, err)
	})

	t.Run("Should default to a no-op reporter", func(t *testing.T) {
		f := &scriptedFetcher{steps: []step{{status: remote.StatusSucceeded}}}
		c, err := NewController(f, testPolicy(3), WithReporter(nil))
		require.NoError(t, err)
		assert.IsType(t, NopReporter{}, c.reporter)
		assert.Equal(t, 3, c.Policy().MaxAttempts)
	})
}

func TestController_Await(t *testing.T) {
	t.Run("Should succeed after a few non-terminal polls", func(t *testing.T) {
		f := &scriptedFetcher{steps: []step{
			{status: remote.StatusQueued},
			{status: remote.StatusQueued},
			{status: remote.StatusRunning},
			{status: remote.StatusSucceeded, output: `{"complete_foodie_guide":"Day 1"}`},
		}}
		c, rep := newTestController(t, f, testPolicy(20))

		outcome, err := c.Await(t.Context(), "exec-1")

		require.NoError(t, err)
		assert.Equal(t, StateSucceeded, outcome.State)
		assert.Equal(t, 4, outcome.Attempts)
		assert.Equal(t, 4, f.Calls())
		assert.Equal(t, remote.ExecutionID("exec-1"), outcome.ExecutionID)
		assert.Equal(t, remote.StatusSucceeded, outcome.LastStatus())
		assert.JSONEq(t, `{"complete_foodie_guide":"Day 1"}`, string(outcome.Result.Output))
		assert.Equal(t, []int{1, 2, 3}, rep.ordinals())
		require.Len(t, rep.finished, 1)
		assert.Same(t, outcome, rep.finished[0])
	})

	t.Run("Should stop at the first terminal status within the budget", func(t *testing.T) {
		const maxAttempts = 6
		for n := range maxAttempts {
			steps := append(repeat(step{status: remote.StatusRunning}, n), step{status: remote.StatusSucceeded})
			f := &scriptedFetcher{steps: steps}
			c, _ := newTestController(t, f, testPolicy(maxAttempts))

			outcome, err := c.Await(t.Context(), "exec-1")

			require.NoError(t, err)
			assert.Equal(t, StateSucceeded, outcome.State, "n=%d", n)
			assert.Equal(t, n+1, outcome.Attempts)
			assert.Equal(t, n+1, f.Calls())
		}
	})

	t.Run("Should report failure with the service detail", func(t *testing.T) {
		f := &scriptedFetcher{steps: []step{
			{status: remote.StatusRunning},
			{status: remote.StatusFailed, detail: "prompt step crashed"},
			{status: remote.StatusSucceeded},
		}}
		c, _ := newTestController(t, f, testPolicy(20))

		outcome, err := c.Await(t.Context(), "exec-1")

		require.NoError(t, err)
		assert.Equal(t, StateFailed, outcome.State)
		assert.Equal(t, 2, outcome.Attempts)
		assert.Equal(t, 2, f.Calls())
		assert.Equal(t, "prompt step crashed", outcome.ErrorDetail())
	})

	t.Run("Should time out after the budget and make one final query", func(t *testing.T) {
		f := &scriptedFetcher{steps: repeat(step{status: remote.StatusRunning}, 21)}
		c, rep := newTestController(t, f, Policy{MaxAttempts: 20, Interval: time.Millisecond})

		outcome, err := c.Await(t.Context(), "exec-1")

		require.NoError(t, err)
		assert.Equal(t, StateTimedOut, outcome.State)
		assert.Equal(t, 20, outcome.Attempts)
		assert.Equal(t, 21, f.Calls())
		require.NotNil(t, outcome.Result)
		assert.Equal(t, remote.StatusRunning, outcome.LastStatus())
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 9, 12, 15, 18}, rep.ordinals())
	})

	t.Run("Should keep the fresh final observation after a timeout", func(t *testing.T) {
		steps := append(repeat(step{status: remote.StatusRunning}, 3), step{status: remote.StatusSucceeded, output: `{"x":1}`})
		f := &scriptedFetcher{steps: steps}
		c, _ := newTestController(t, f, testPolicy(3))

		outcome, err := c.Await(t.Context(), "exec-1")

		require.NoError(t, err)
		assert.Equal(t, StateTimedOut, outcome.State)
		assert.Equal(t, remote.StatusSucceeded, outcome.LastStatus())
		assert.Equal(t, 4, f.Calls())
	})

	t.Run("Should be unreachable when the final query also fails", func(t *testing.T) {
		steps := append(repeat(step{status: remote.StatusRunning}, 3), step{err: errConnReset})
		f := &scriptedFetcher{steps: steps}
		c, _ := newTestController(t, f, testPolicy(3))

		outcome, err := c.Await(t.Context(), "exec-1")

		require.NoError(t, err)
		assert.Equal(t, StateUnreachable, outcome.State)
		assert.Nil(t, outcome.Result)
		assert.ErrorIs(t, outcome.Err, errConnReset)
	})

	t.Run("Should never abort when every query fails", func(t *testing.T) {
		f := &scriptedFetcher{steps: []step{{err: errConnReset}}}
		c, rep := newTestController(t, f, testPolicy(5))

		outcome, err := c.Await(t.Context(), "exec-1")

		require.NoError(t, err)
		assert.Equal(t, StateUnreachable, outcome.State)
		assert.Equal(t, 5, outcome.Attempts)
		assert.Equal(t, 6, f.Calls())
		assert.Nil(t, outcome.Result)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, rep.ordinals())
		assert.Equal(t, "", outcome.ErrorDetail())
	})

	t.Run("Should shorten the wait after a failed query", func(t *testing.T) {
		p := Policy{MaxAttempts: 20, Interval: 4 * time.Millisecond}
		f := &scriptedFetcher{steps: []step{
			{status: remote.StatusQueued},
			{status: remote.StatusQueued},
			{err: errConnReset},
			{status: remote.StatusRunning},
			{status: remote.StatusSucceeded},
		}}
		c, rep := newTestController(t, f, p)

		outcome, err := c.Await(t.Context(), "exec-1")

		require.NoError(t, err)
		assert.Equal(t, StateSucceeded, outcome.State)
		assert.Equal(t, 5, outcome.Attempts)
		require.Len(t, rep.attempts, 4)
		waits := []time.Duration{}
		for _, a := range rep.attempts {
			waits = append(waits, a.Wait)
		}
		assert.Equal(t, []time.Duration{p.Interval, p.Interval, p.DegradedInterval(), p.Interval}, waits)
		assert.ErrorIs(t, rep.attempts[2].Err, errConnReset)
		assert.Empty(t, rep.attempts[2].Status)
		assert.ErrorIs(t, outcome.Err, errConnReset)
	})

	t.Run("Should wait the full interval before the final query", func(t *testing.T) {
		p := Policy{MaxAttempts: 3, Interval: 40 * time.Millisecond}
		f := &timedFetcher{scriptedFetcher: scriptedFetcher{steps: []step{{status: remote.StatusRunning}}}}
		c, rep := newTestController(t, f, p)

		outcome, err := c.Await(t.Context(), "exec-1")

		require.NoError(t, err)
		assert.Equal(t, StateTimedOut, outcome.State)
		gaps := f.gaps()
		require.Len(t, gaps, 3)
		for i, gap := range gaps {
			assert.GreaterOrEqual(t, gap, p.Interval, "gap before query %d", i+2)
		}
		assert.Equal(t, p.Interval, rep.attempts[len(rep.attempts)-1].Wait)
	})

	t.Run("Should wait the degraded interval before the final query after a failed poll", func(t *testing.T) {
		p := Policy{MaxAttempts: 3, Interval: 40 * time.Millisecond}
		f := &timedFetcher{scriptedFetcher: scriptedFetcher{steps: []step{
			{status: remote.StatusRunning},
			{status: remote.StatusRunning},
			{err: errConnReset},
			{status: remote.StatusRunning},
		}}}
		c, _ := newTestController(t, f, p)

		outcome, err := c.Await(t.Context(), "exec-1")

		require.NoError(t, err)
		assert.Equal(t, StateTimedOut, outcome.State)
		gaps := f.gaps()
		require.Len(t, gaps, 3)
		assert.GreaterOrEqual(t, gaps[2], p.DegradedInterval())
	})

	t.Run("Should skip the final query when cancelled during its wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()
		f := &scriptedFetcher{steps: []step{{status: remote.StatusRunning}}}
		c, rep := newTestController(t, f, Policy{MaxAttempts: 1, Interval: time.Hour})
		go func() {
			for f.Calls() < 1 {
				time.Sleep(time.Millisecond)
			}
			cancel()
		}()

		outcome, err := c.Await(ctx, "exec-1")

		assert.Nil(t, outcome)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, f.Calls())
		assert.Empty(t, rep.finished)
	})

	t.Run("Should return the context error when cancelled before polling", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		f := &scriptedFetcher{steps: []step{{status: remote.StatusRunning}}}
		c, rep := newTestController(t, f, testPolicy(5))

		outcome, err := c.Await(ctx, "exec-1")

		assert.Nil(t, outcome)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, f.Calls())
		assert.Empty(t, rep.finished)
	})

	t.Run("Should interrupt the wait when cancelled mid-loop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()
		f := &scriptedFetcher{steps: []step{{status: remote.StatusRunning}}}
		c, _ := newTestController(t, f, Policy{MaxAttempts: 20, Interval: time.Hour})
		go func() {
			for f.Calls() < 1 {
				time.Sleep(time.Millisecond)
			}
			cancel()
		}()

		outcome, err := c.Await(ctx, "exec-1")

		assert.Nil(t, outcome)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, f.Calls())
	})
}
