// Package query drives one search from the first streamed match to the last page.
package query

import (
	"context"
	"fmt"
	"io"

	"github.com/Laisky/errors/v2"
	"go.uber.org/zap"

	"github.com/gopak/dcs-cli/internal/dcs"
	"github.com/gopak/dcs-cli/internal/dedupe"
	"github.com/gopak/dcs-cli/internal/flow"
	"github.com/gopak/dcs-cli/internal/logging"
	"github.com/gopak/dcs-cli/internal/render"
)

// Options shape a single run.
type Options struct {
	MaxPages int
	Dedupe   bool
	Exclude  []string
}

// Stats counts what happened to the matches of one run.
type Stats struct {
	FilesTotal int
	// Reported is the number of matches the service says it found.
	Reported int
	// Printed counts distinct matches written or buffered for output.
	Printed int
	// Excluded counts distinct matches dropped by the exclusion filter.
	Excluded int
	// Duplicates counts matches skipped because their identity was printed already.
	Duplicates int
	Pages      int
}

// Discrepancy reports whether the printed and excluded matches do not add up
// to what the service reported.
func (s Stats) Discrepancy() bool { return s.Reported != s.Printed+s.Excluded }

// Runner executes searches against one client.
type Runner struct {
	client    *dcs.Client
	flow      *flow.Controller
	formatter render.Formatter
	excluder  Excluder
	out       io.Writer
	opts      Options
}

// NewRunner writes results to out.
func NewRunner(client *dcs.Client, fc *flow.Controller, f render.Formatter, out io.Writer, opts Options) *Runner {
	return &Runner{
		client:    client,
		flow:      fc,
		formatter: f,
		excluder:  Excluder(opts.Exclude),
		out:       out,
		opts:      opts,
	}
}

// session is the state of one Run. Nothing outlives it.
type session struct {
	seen     map[Identity]struct{}
	excluded map[Identity]struct{}
	buffer   *dedupe.Buffer
	stats    Stats
}

func (r *Runner) newSession() *session {
	s := &session{
		seen:     map[Identity]struct{}{},
		excluded: map[Identity]struct{}{},
	}
	if r.opts.Dedupe {
		s.buffer = dedupe.NewBuffer(r.formatter)
	}
	return s
}

// Run executes search to exhaustion. Stats are valid even when an error is returned.
func (r *Runner) Run(ctx context.Context, search string) (Stats, error) {
	s := r.newSession()

	last, err := r.streamPhase(ctx, s, search)
	if err != nil {
		return s.stats, err
	}
	s.stats.FilesTotal = last.FilesTotal
	s.stats.Reported = last.Results

	if err := r.pagePhase(ctx, s, last.QueryID); err != nil {
		return s.stats, err
	}

	if s.buffer != nil {
		logging.Debug("rendering groups", zap.Int("chunks", s.buffer.Len()))
		if err := s.buffer.Render(r.out); err != nil {
			return s.stats, err
		}
	}
	return s.stats, nil
}

// streamPhase consumes the websocket until the final progress update and
// returns that update.
func (r *Runner) streamPhase(ctx context.Context, s *session, search string) (dcs.Progress, error) {
	stream, err := r.client.OpenStream(ctx)
	if err != nil {
		return dcs.Progress{}, err
	}
	defer func() { _ = stream.Close() }()

	logging.Say("Sending query...")
	if err := stream.Send(search); err != nil {
		return dcs.Progress{}, err
	}

	for {
		msg, err := stream.Next(ctx)
		if err != nil {
			return dcs.Progress{}, err
		}
		switch msg.Kind {
		case dcs.KindProgress:
			logging.Debug("progress",
				zap.String("query_id", msg.Progress.QueryID),
				zap.Int("files_processed", msg.Progress.FilesProcessed),
				zap.Int("files_total", msg.Progress.FilesTotal))
			if msg.Progress.Done() {
				return msg.Progress, nil
			}
		case dcs.KindChunk:
			if _, err := r.accept(s, msg.Chunk); err != nil {
				return dcs.Progress{}, err
			}
		case dcs.KindError:
			return dcs.Progress{}, msg.Err
		default:
			logging.Debug("ignoring stream message")
		}
	}
}

// pagePhase fetches pages until one is missing, a fetch fails or MaxPages is reached.
func (r *Runner) pagePhase(ctx context.Context, s *session, queryID string) error {
	for page := 0; page < r.opts.MaxPages; page++ {
		if err := r.flow.BeforeFetch(ctx, page); err != nil {
			return err
		}
		chunks, err := r.client.FetchPage(ctx, queryID, page)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.reportFetchFailure(err)
			logging.Debug("paging stopped", zap.Int("page", page), zap.Error(err))
			return nil
		}
		s.stats.Pages++

		fresh := 0
		for _, c := range chunks {
			ok, err := r.accept(s, c)
			if err != nil {
				return err
			}
			if ok {
				fresh++
			}
		}
		logging.Debug("page fetched", zap.Int("page", page), zap.Int("chunks", len(chunks)), zap.Int("new", fresh))

		if err := r.flow.AfterPage(ctx, page, fresh); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) reportFetchFailure(err error) {
	if errors.Is(err, dcs.ErrNoMorePages) {
		return
	}
	reason := err.Error()
	var fe *dcs.FetchError
	if errors.As(err, &fe) {
		reason = fe.Reason
	}
	logging.Warn(fmt.Sprintf("Fetch failure: %s", reason))
}

// accept filters c, records its identity and prints or buffers it. It reports
// whether c was new.
func (r *Runner) accept(s *session, c dcs.Chunk) (bool, error) {
	id := IdentityOf(c)
	if r.excluder.Excluded(c) {
		if _, ok := s.excluded[id]; !ok {
			s.excluded[id] = struct{}{}
			s.stats.Excluded++
		}
		return false, nil
	}
	if _, ok := s.seen[id]; ok {
		s.stats.Duplicates++
		return false, nil
	}
	s.seen[id] = struct{}{}
	s.stats.Printed++

	if s.buffer != nil {
		s.buffer.Add(c)
		return true, nil
	}
	if _, err := io.WriteString(r.out, r.formatter.Render(c)); err != nil {
		return false, errors.Wrap(err, "write result")
	}
	return true, nil
}
