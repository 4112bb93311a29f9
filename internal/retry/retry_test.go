package retry

import (
	"context"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	rec := &sleepRecorder{}
	attempts := 0
	err := Do(context.Background(), func(context.Context, int) error {
		attempts++
		return nil
	}, WithSleep(rec.sleep))

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, rec.delays)
}

func TestDo_Attempts(t *testing.T) {
	tests := []struct {
		name          string
		failUntil     int
		maxAttempts   int
		wantAttempts  int
		wantSleeps    int
		shouldSucceed bool
	}{
		{name: "success on second attempt", failUntil: 1, maxAttempts: 3, wantAttempts: 2, wantSleeps: 1, shouldSucceed: true},
		{name: "success on last attempt", failUntil: 2, maxAttempts: 3, wantAttempts: 3, wantSleeps: 2, shouldSucceed: true},
		{name: "fail all attempts", failUntil: 10, maxAttempts: 3, wantAttempts: 3, wantSleeps: 2},
		{name: "single attempt", failUntil: 10, maxAttempts: 1, wantAttempts: 1, wantSleeps: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &sleepRecorder{}
			attempts := 0
			err := Do(context.Background(), func(_ context.Context, attempt int) error {
				assert.Equal(t, attempts, attempt)
				attempts++
				if attempt < tt.failUntil {
					return errors.New("temporary failure")
				}
				return nil
			}, WithMaxAttempts(tt.maxAttempts), WithSleep(rec.sleep))

			if tt.shouldSucceed {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "temporary failure")
			}
			assert.Equal(t, tt.wantAttempts, attempts)
			assert.Len(t, rec.delays, tt.wantSleeps)
		})
	}
}

func TestDo_AfterOverridesDelay(t *testing.T) {
	rec := &sleepRecorder{}
	err := Do(context.Background(), func(_ context.Context, attempt int) error {
		if attempt == 0 {
			return After(errors.New("rate limited"), Backoff(10*time.Second, attempt))
		}
		return errors.New("server error")
	}, WithDelay(2*time.Second), WithSleep(rec.sleep))

	require.Error(t, err)
	assert.Equal(t, []time.Duration{10 * time.Second, 2 * time.Second}, rec.delays)
}

func TestDo_StopEndsImmediately(t *testing.T) {
	sentinel := errors.New("bad payload")
	attempts := 0
	err := Do(context.Background(), func(context.Context, int) error {
		attempts++
		return Stop(sentinel)
	}, WithSleep((&sleepRecorder{}).sleep))

	assert.Equal(t, 1, attempts)
	assert.True(t, errors.Is(err, sentinel))
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Do(ctx, func(context.Context, int) error {
		attempts++
		cancel()
		return errors.New("always fails")
	}, WithDelay(time.Hour))

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, attempts)
}

func TestDo_NilFunction(t *testing.T) {
	assert.Error(t, Do(context.Background(), nil))
}

func TestBackoff(t *testing.T) {
	base := 10 * time.Second
	assert.Equal(t, 10*time.Second, Backoff(base, 0))
	assert.Equal(t, 20*time.Second, Backoff(base, 1))
	assert.Equal(t, 40*time.Second, Backoff(base, 2))
	assert.Equal(t, 10*time.Second, Backoff(base, -1))
}

func TestSleep_ZeroReturnsImmediately(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), 0))
}
