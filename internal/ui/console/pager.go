package console

import (
	"context"

	survey "github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/Laisky/errors/v2"

	"github.com/gopak/dcs-cli/internal/flow"
)

const messageContinue = "----- Press Enter to continue or Ctrl-C to exit -----"

// Pager asks the reader for the next page on the terminal.
type Pager struct {
	opts []survey.AskOpt
}

func NewPager(opts ...survey.AskOpt) *Pager { return &Pager{opts: opts} }

func (p *Pager) WaitForContinue(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var answer string
	err := survey.AskOne(&survey.Input{Message: messageContinue}, &answer, p.opts...)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, terminal.InterruptErr):
		return flow.ErrInterrupted
	default:
		return errors.Wrap(err, "prompt")
	}
}

var _ flow.Prompter = (*Pager)(nil)
