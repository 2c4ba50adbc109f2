package load

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/opst/crqboard/cmd/crqctl/subcommands/common"
	bindstore "github.com/opst/crqboard/pkg/api-types-binding/store"
	"github.com/opst/crqboard/pkg/domain/crqboard"
	"github.com/opst/crqboard/pkg/sheet"
	"github.com/youta-t/flarc"
)

const ARG_FILE = "FILE"

var ErrNoSheets = errors.New("no sheets are for known CRQs")

type Flags struct {
	DryRun bool `flag:"dry-run" alias:"n" help:"read the spreadsheet and report it, without saving"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Import the planning spreadsheet.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_FILE, Required: true,
				Help: "spreadsheet (.xlsx). Each sheet named after a CRQ is imported.",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Import the planning spreadsheet.

The sheet table is replaced with rows found in the spreadsheet.
Activities which are not tracked yet get a control row in "Planejado".
Progress already recorded is kept.

The result is written to stdout as json.
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
		path := cl.Args()[ARG_FILE][0]
		iactivity := board.Activity()

		wb, err := sheet.LoadFile(path, iactivity.Catalogue())
		if err != nil {
			return fmt.Errorf("%w: %s", err, path)
		}
		for _, w := range wb.Warnings {
			logger.Printf("warning: %s", w)
		}
		if len(wb.Sheets) == 0 {
			return fmt.Errorf("%w: %s", ErrNoSheets, path)
		}
		for _, s := range wb.Sheets {
			logger.Printf("sheet %s -> %s: %d rows", s.Name, s.CRQ, s.Records)
		}

		if cl.Flags().DryRun {
			logger.Printf("dry run. %d records are not saved", len(wb.Records))
			return nil
		}

		result, err := iactivity.ImportSheet(ctx, wb.Records)
		if err != nil {
			return err
		}
		for _, issue := range result.Issues {
			logger.Printf("issue: %s", issue)
		}
		logger.Printf(
			"saved %d, skipped %d, initialized %d",
			result.Saved, result.Skipped, result.Initialized,
		)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(bindstore.ComposeSheetImport(wb, result))
	}
}
