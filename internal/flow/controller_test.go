package flow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type countingPrompter struct {
	calls int
	err   error
}

func (p *countingPrompter) WaitForContinue(context.Context) error {
	p.calls++
	return p.err
}

func TestShouldPause(t *testing.T) {
	tests := []struct {
		name      string
		mode      OutputMode
		dedupe    bool
		page      int
		newChunks int
		want      bool
	}{
		{"interactive with new chunks", Interactive, false, 0, 3, true},
		{"interactive nothing new", Interactive, false, 0, 0, false},
		{"interactive last page", Interactive, false, 2, 5, false},
		{"interactive second to last", Interactive, false, 1, 1, true},
		{"piped", Piped, false, 0, 3, false},
		{"interactive dedupe", Interactive, true, 0, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Options{Mode: tt.mode, Dedupe: tt.dedupe, MaxPages: 3, Prompter: &countingPrompter{}})
			require.Equal(t, tt.want, c.ShouldPause(tt.page, tt.newChunks))
		})
	}
}

func TestShouldPause_NoPrompter(t *testing.T) {
	c := New(Options{Mode: Interactive, MaxPages: 3})
	require.False(t, c.ShouldPause(0, 1))
}

func TestAfterPage(t *testing.T) {
	p := &countingPrompter{}
	c := New(Options{Mode: Interactive, MaxPages: 3, Prompter: p})
	ctx := context.Background()

	require.NoError(t, c.AfterPage(ctx, 0, 1))
	require.NoError(t, c.AfterPage(ctx, 1, 0))
	require.NoError(t, c.AfterPage(ctx, 2, 1))
	require.Equal(t, 1, p.calls)

	p.err = ErrInterrupted
	require.ErrorIs(t, c.AfterPage(ctx, 1, 1), ErrInterrupted)
}

func TestBeforeFetch_RateLimit(t *testing.T) {
	c := New(Options{Mode: Piped, MaxPages: 3})
	ctx := context.Background()

	start := time.Now()
	for page := 0; page < 3; page++ {
		require.NoError(t, c.BeforeFetch(ctx, page))
	}
	// burst of one: the 2nd and 3rd request each wait 1/20 s
	require.GreaterOrEqual(t, time.Since(start), 95*time.Millisecond)
}

func TestNew_RateCapped(t *testing.T) {
	tests := []struct {
		name string
		rps  float64
		want rate.Limit
	}{
		{"unset", 0, DefaultRequestsPerSecond},
		{"slower", 5, 5},
		{"at cap", 20, 20},
		{"above cap", 1000, DefaultRequestsPerSecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Options{Mode: Piped, RequestsPerSecond: tt.rps})
			lim, ok := c.pacer.(*rate.Limiter)
			require.True(t, ok)
			require.Equal(t, tt.want, lim.Limit())
			require.Equal(t, 1, lim.Burst())
		})
	}
}

func TestBeforeFetch_Cancelled(t *testing.T) {
	c := New(Options{Mode: Piped, MaxPages: 3, RequestsPerSecond: 0.001})
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, c.BeforeFetch(ctx, 0))
	cancel()
	require.ErrorIs(t, c.BeforeFetch(ctx, 1), context.Canceled)
}

func TestOutputModeString(t *testing.T) {
	require.Equal(t, "interactive", Interactive.String())
	require.Equal(t, "piped", Piped.String())
}
