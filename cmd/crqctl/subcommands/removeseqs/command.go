package removeseqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/opst/crqboard/cmd/crqctl/subcommands/common"
	bindstore "github.com/opst/crqboard/pkg/api-types-binding/store"
	"github.com/opst/crqboard/pkg/domain/crqboard"
	"github.com/youta-t/flarc"
)

const ARG_SEQ = "SEQ"

type Flags struct {
	CRQ string `flag:"crq" metavar:"NAME" help:"CRQ which the activities belong to"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Remove activities of a CRQ by seq.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_SEQ, Required: true, Repeatable: true,
				Help: "seq of activities to be removed. Comma separated list is also accepted.",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Remove activities of a CRQ by seq.

Both sheet rows and control rows of the activities are removed.

Example:

    {{ .Command }} --crq SI 51 52 53
`),
	)
}

// ParseSeqs reads seq arguments. Each argument can be a comma separated list.
func ParseSeqs(args []string) ([]int, error) {
	seqs := []int{}
	for _, arg := range args {
		for _, s := range strings.Split(arg, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("%w: seq %q is not a number", flarc.ErrUsage, s)
			}
			seqs = append(seqs, n)
		}
	}
	if len(seqs) == 0 {
		return nil, fmt.Errorf("%w: %s is required", flarc.ErrUsage, ARG_SEQ)
	}
	return seqs, nil
}

func Task() common.Task[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		board crqboard.CRQBoard,
		cl flarc.Commandline[Flags],
		_ []any,
	) error {
		name := cl.Flags().CRQ
		if name == "" {
			return fmt.Errorf("%w: --crq is required", flarc.ErrUsage)
		}
		iactivity := board.Activity()
		crq, ok := iactivity.Catalogue().Lookup(name)
		if !ok {
			return errors.Join(flarc.ErrUsage, fmt.Errorf(
				"unknown CRQ: %s (known: %s)", name, strings.Join(iactivity.Catalogue().Names(), ", "),
			))
		}

		seqs, err := ParseSeqs(cl.Args()[ARG_SEQ])
		if err != nil {
			return err
		}

		result, err := iactivity.Database().RemoveSeqs(ctx, crq.Name, seqs)
		if err != nil {
			return err
		}
		logger.Printf(
			"%s seqs %v: removed %d sheet rows and %d control rows",
			crq.Name, seqs, result.ExcelDeleted, result.ControlDeleted,
		)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(bindstore.ComposeRemoved(result))
	}
}
