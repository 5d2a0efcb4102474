package execution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicy(t *testing.T) {
	t.Run("Should default to 20 attempts every 10 seconds", func(t *testing.T) {
		p := DefaultPolicy()
		assert.Equal(t, 20, p.MaxAttempts)
		assert.Equal(t, 10*time.Second, p.Interval)
		assert.NoError(t, p.Validate())
	})

	t.Run("Should halve the interval after a failed query", func(t *testing.T) {
		p := DefaultPolicy()
		assert.Equal(t, 5*time.Second, p.DegradedInterval())
		assert.Equal(t, 5*time.Second, p.WaitAfter(true))
		assert.Equal(t, 10*time.Second, p.WaitAfter(false))
	})

	t.Run("Should reject budgets that cannot make progress", func(t *testing.T) {
		assert.Error(t, Policy{MaxAttempts: 0, Interval: time.Second}.Validate())
		assert.Error(t, Policy{MaxAttempts: 1, Interval: 0}.Validate())
		assert.Error(t, Policy{MaxAttempts: 1, Interval: -time.Second}.Validate())
	})
}

func TestShouldReport(t *testing.T) {
	t.Run("Should report the first five attempts then every third", func(t *testing.T) {
		var got []int
		for i := 1; i <= 20; i++ {
			if ShouldReport(i) {
				got = append(got, i)
			}
		}
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 9, 12, 15, 18}, got)
	})

	t.Run("Should ignore non-positive ordinals", func(t *testing.T) {
		assert.False(t, ShouldReport(0))
		assert.False(t, ShouldReport(-3))
	})
}
