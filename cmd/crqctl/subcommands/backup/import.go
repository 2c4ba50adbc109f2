package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/opst/crqboard/cmd/crqctl/subcommands/common"
	bindstore "github.com/opst/crqboard/pkg/api-types-binding/store"
	"github.com/opst/crqboard/pkg/domain"
	"github.com/opst/crqboard/pkg/domain/crqboard"
	xe "github.com/opst/crqboard/pkg/errors"
	"github.com/youta-t/flarc"
)

func NewImport() (flarc.Command, error) {
	return flarc.NewCommand(
		"Replace the store with a backup.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_FILE, Required: true,
				Help: "backup file written by export, or downloaded from the dashboard.",
			},
		},
		common.NewTask(Import()),
		flarc.WithDescription(`
Replace the store with a backup.

Every sheet row and control row in the store is removed before restoring.
Entries which can not be read are skipped and reported.
`),
	)
}

func Import() common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		board crqboard.CRQBoard,
		cl flarc.Commandline[struct{}],
		_ []any,
	) error {
		path := cl.Args()[ARG_FILE][0]
		f, err := os.Open(path)
		if err != nil {
			return xe.Wrap(err)
		}
		defer f.Close()

		backup := domain.Backup{}
		if err := json.NewDecoder(f).Decode(&backup); err != nil {
			return fmt.Errorf("%w: %s is not a backup", err, path)
		}

		result, errs, err := board.Activity().Restore(ctx, backup)
		if err != nil {
			return err
		}
		for _, e := range errs {
			logger.Printf("skipped: %s", e)
		}
		logger.Printf(
			"restored %d sheet rows and %d control rows (skipped %d)",
			result.ExcelImported, result.ControlImported, result.Skipped,
		)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(bindstore.ComposeRestore(result, errs))
	}
}
