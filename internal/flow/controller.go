// Package flow paces the paging phase: a rate limit for every page request and,
// on a terminal, a pause for the reader between pages.
package flow

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/mattn/go-isatty"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond caps page requests sent to the service.
const DefaultRequestsPerSecond = 20

// ErrInterrupted is returned when the reader aborts at the pause prompt.
var ErrInterrupted = errors.New("interrupted")

// OutputMode says whether results go to a person or to a file/pipe.
type OutputMode int

const (
	Piped OutputMode = iota
	Interactive
)

func (m OutputMode) String() string {
	if m == Interactive {
		return "interactive"
	}
	return "piped"
}

// DetectOutputMode inspects the file descriptor results are written to.
func DetectOutputMode(fd uintptr) OutputMode {
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return Interactive
	}
	return Piped
}

// Prompter blocks until the reader asks for the next page.
type Prompter interface {
	WaitForContinue(ctx context.Context) error
}

// Pacer delays page requests. *rate.Limiter satisfies it.
type Pacer interface {
	Wait(ctx context.Context) error
}

type Options struct {
	Mode              OutputMode
	Dedupe            bool
	MaxPages          int
	RequestsPerSecond float64
	Prompter          Prompter
	Pacer             Pacer
}

type Controller struct {
	mode     OutputMode
	dedupe   bool
	maxPages int
	prompter Prompter
	pacer    Pacer
}

func New(opt Options) *Controller {
	c := &Controller{
		mode:     opt.Mode,
		dedupe:   opt.Dedupe,
		maxPages: opt.MaxPages,
		prompter: opt.Prompter,
		pacer:    opt.Pacer,
	}
	if c.pacer == nil {
		rps := opt.RequestsPerSecond
		if rps <= 0 || rps > DefaultRequestsPerSecond {
			rps = DefaultRequestsPerSecond
		}
		c.pacer = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return c
}

func (c *Controller) Mode() OutputMode { return c.mode }

// BeforeFetch blocks until page may be requested.
func (c *Controller) BeforeFetch(ctx context.Context, page int) error {
	if err := c.pacer.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrapf(err, "wait for page %d", page)
	}
	return nil
}

// ShouldPause reports whether the reader is asked to confirm after page.
func (c *Controller) ShouldPause(page, newChunks int) bool {
	return c.mode == Interactive &&
		!c.dedupe &&
		c.prompter != nil &&
		newChunks > 0 &&
		page < c.maxPages-1
}

// AfterPage pauses for the reader when ShouldPause says so.
func (c *Controller) AfterPage(ctx context.Context, page, newChunks int) error {
	if !c.ShouldPause(page, newChunks) {
		return nil
	}
	return c.prompter.WaitForContinue(ctx)
}
