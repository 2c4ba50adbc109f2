package schema

import (
	"context"
	"fmt"
	"log"

	"github.com/opst/crqboard/cmd/crqctl/subcommands/common"
	"github.com/opst/crqboard/pkg/domain/crqboard"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	upgrade, err := NewUpgrade()
	if err != nil {
		return nil, err
	}
	version, err := NewVersion()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manage the schema of the store.",
		struct{}{},
		flarc.WithSubcommand("upgrade", upgrade),
		flarc.WithSubcommand("version", version),
	)
}

func NewUpgrade() (flarc.Command, error) {
	return flarc.NewCommand(
		"Apply schema versions newer than the store has.",
		struct{}{},
		flarc.Args{},
		common.NewTask(Upgrade()),
		flarc.WithDescription(`
Apply schema versions newer than the store has.

For postgres, versions are read from "database.schemaRepository" in the config.
Without the repository, nothing is applied.
sqlite stores are always upgraded with built-in schema when opened.
`),
	)
}

func Upgrade() common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		board crqboard.CRQBoard,
		cl flarc.Commandline[struct{}],
		_ []any,
	) error {
		s := board.Schema().Database()
		before, err := s.Version(ctx)
		if err != nil {
			return err
		}
		if err := s.Upgrade(ctx); err != nil {
			return err
		}
		after, err := s.Version(ctx)
		if err != nil {
			return err
		}

		if before == after {
			logger.Printf("schema is up to date (version %d)", after)
		} else {
			logger.Printf("schema is upgraded: version %d -> %d", before, after)
		}
		_, err = fmt.Fprintln(cl.Stdout(), after)
		return err
	}
}

func NewVersion() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show the schema version of the store.",
		struct{}{},
		flarc.Args{},
		common.NewTask(Version()),
	)
}

func Version() common.Task[struct{}] {
	return func(
		ctx context.Context,
		_ *log.Logger,
		board crqboard.CRQBoard,
		cl flarc.Commandline[struct{}],
		_ []any,
	) error {
		v, err := board.Schema().Database().Version(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cl.Stdout(), v)
		return err
	}
}
