package backup

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"

	"github.com/opst/crqboard/cmd/crqctl/subcommands/common"
	"github.com/opst/crqboard/pkg/domain/crqboard"
	xe "github.com/opst/crqboard/pkg/errors"
	"github.com/youta-t/flarc"
)

const ARG_FILE = "FILE"

func NewExport() (flarc.Command, error) {
	return flarc.NewCommand(
		"Write a backup of the store.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_FILE, Required: false,
				Help: "file to write the backup to. When omitted, it is written to stdout.",
			},
		},
		common.NewTask(Export()),
	)
}

func Export() common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		board crqboard.CRQBoard,
		cl flarc.Commandline[struct{}],
		_ []any,
	) error {
		backup, err := board.Activity().Export(ctx)
		if err != nil {
			return err
		}

		var out io.Writer = cl.Stdout()
		if dest := cl.Args()[ARG_FILE]; len(dest) != 0 {
			f, err := os.OpenFile(dest[0], os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(0o644))
			if err != nil {
				return xe.Wrap(err)
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(backup); err != nil {
			return xe.Wrap(err)
		}
		logger.Printf(
			"%d sheet rows and %d control rows are exported",
			backup.Metadata.ExcelCount, backup.Metadata.ControlCount,
		)
		return nil
	}
}
