package clear

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/opst/crqboard/cmd/crqctl/subcommands/common"
	bindstore "github.com/opst/crqboard/pkg/api-types-binding/store"
	"github.com/opst/crqboard/pkg/domain/crqboard"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Yes bool `flag:"yes" alias:"y" help:"confirm removing everything"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Remove every sheet row and control row.",
		Flags{},
		flarc.Args{},
		common.NewTask(Task()),
		flarc.WithDescription(`
Remove every sheet row and control row.

This can not be undone. Take a backup with "export" first.
--yes is required.
`),
	)
}

func Task() common.Task[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		board crqboard.CRQBoard,
		cl flarc.Commandline[Flags],
		_ []any,
	) error {
		if !cl.Flags().Yes {
			return fmt.Errorf("%w: pass --yes to remove everything", flarc.ErrUsage)
		}

		result, err := board.Activity().Database().ClearAll(ctx)
		if err != nil {
			return err
		}
		logger.Printf(
			"removed %d sheet rows and %d control rows",
			result.ExcelDeleted, result.ControlDeleted,
		)
		if !result.Success {
			logger.Printf("warning: the store is not empty after clearing")
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(bindstore.ComposeCleared(result))
	}
}
