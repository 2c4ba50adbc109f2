package message

import (
	"context"
	"io"
	"log"

	"github.com/opst/crqboard/cmd/crqctl/subcommands/common"
	"github.com/opst/crqboard/pkg/domain/crqboard"
	kmsg "github.com/opst/crqboard/pkg/message"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Print the consolidated status message.",
		struct{}{},
		flarc.Args{},
		common.NewTask(Task()),
		flarc.WithDescription(`
Print the consolidated status message, to be pasted to the chat group.
`),
	)
}

func Task() common.Task[struct{}] {
	return func(
		ctx context.Context,
		_ *log.Logger,
		board crqboard.CRQBoard,
		cl flarc.Commandline[struct{}],
		_ []any,
	) error {
		iactivity := board.Activity()
		acts, err := iactivity.Activities(ctx)
		if err != nil {
			return err
		}
		now := iactivity.Now().In(iactivity.Location())
		_, err = io.WriteString(cl.Stdout(), kmsg.Build(acts, iactivity.Catalogue(), now))
		return err
	}
}
