package fn

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Result ---

func TestOkAndErr(t *testing.T) {
	r := Ok(42)
	assert.True(t, r.IsOk())
	v, err := r.Unwrap()
	assert.Equal(t, 42, v)
	assert.NoError(t, err)

	e := Err[int](errors.New("fail"))
	assert.True(t, e.IsErr())
}

func TestFromPair(t *testing.T) {
	assert.True(t, FromPair(1, nil).IsOk())
	assert.True(t, FromPair(0, errors.New("x")).IsErr())
}

// --- Pipeline ---

func TestThen(t *testing.T) {
	parse := TryStage(strconv.Atoi)
	double := MapStage(func(n int) int { return n * 2 })

	v, err := Run(context.Background(), Then(parse, double), "21")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = Run(context.Background(), Then(parse, double), "x")
	assert.Error(t, err)
}

func TestPipelineShortCircuits(t *testing.T) {
	calls := 0
	inc := MapStage(func(n int) int { calls++; return n + 1 })
	fail := Stage[int, int](func(context.Context, int) Result[int] { return Err[int](errors.New("stop")) })

	_, err := Run(context.Background(), Pipeline(inc, fail, inc), 0)
	assert.EqualError(t, err, "stop")
	assert.Equal(t, 1, calls)
}

func TestTracedStagePassesThrough(t *testing.T) {
	s := TracedStage("double", MapStage(func(n int) int { return n * 2 }))
	v, err := Run(context.Background(), s, 4)
	require.NoError(t, err)
	assert.Equal(t, 8, v)

	failing := TracedStage("fail", TryStage(func(int) (int, error) { return 0, errors.New("boom") }))
	_, err = Run(context.Background(), failing, 1)
	assert.EqualError(t, err, "boom")
}

// --- Retry ---

func TestRetryEventuallySucceeds(t *testing.T) {
	attempts := 0
	r := Retry(context.Background(), RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond}, func(context.Context) Result[string] {
		attempts++
		if attempts < 3 {
			return Err[string](errors.New("transient"))
		}
		return Ok("done")
	})
	v, err := r.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, "done", v)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("not found")
	attempts := 0
	opts := RetryOpts{
		MaxAttempts: 5,
		InitialWait: time.Millisecond,
		Retryable:   func(err error) bool { return !errors.Is(err, permanent) },
	}
	r := Retry(context.Background(), opts, func(context.Context) Result[int] {
		attempts++
		return Err[int](permanent)
	})
	assert.True(t, r.IsErr())
	assert.Equal(t, 1, attempts)
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := Retry(ctx, RetryOpts{MaxAttempts: 3, InitialWait: time.Hour}, func(context.Context) Result[int] {
		return Err[int](errors.New("transient"))
	})
	_, err := r.Unwrap()
	assert.ErrorIs(t, err, context.Canceled)
}

// --- Slices ---

func TestMap(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, Map([]int{1, 2}, strconv.Itoa))
}

func TestFilterMap(t *testing.T) {
	got := FilterMap([]string{"1", "x", "3"}, func(s string) (int, bool) {
		n, err := strconv.Atoi(s)
		return n, err == nil
	})
	assert.Equal(t, []int{1, 3}, got)
}

func TestUniqueBy(t *testing.T) {
	got := UniqueBy([]string{"b", "a", "b", "c", "a"}, func(s string) string { return s })
	assert.Equal(t, []string{"b", "a", "c"}, got)
}

func TestCountBy(t *testing.T) {
	got := CountBy([]string{"BMW", "Audi", "BMW", "BMW"}, func(s string) string { return s })
	assert.Equal(t, []Counted[string]{{Key: "BMW", Count: 3}, {Key: "Audi", Count: 1}}, got)
	assert.Empty(t, CountBy([]string{}, func(s string) string { return s }))
}
