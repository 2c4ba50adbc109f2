package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	subbackup "github.com/opst/crqboard/cmd/crqctl/subcommands/backup"
	subclear "github.com/opst/crqboard/cmd/crqctl/subcommands/clear"
	"github.com/opst/crqboard/cmd/crqctl/subcommands/common"
	subload "github.com/opst/crqboard/cmd/crqctl/subcommands/load"
	submsg "github.com/opst/crqboard/cmd/crqctl/subcommands/message"
	subrm "github.com/opst/crqboard/cmd/crqctl/subcommands/removeseqs"
	subschema "github.com/opst/crqboard/cmd/crqctl/subcommands/schema"
	substatus "github.com/opst/crqboard/cmd/crqctl/subcommands/status"
	"github.com/opst/crqboard/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	logger := log.New(os.Stderr, "[crqctl] ", log.LstdFlags)

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	cf := common.CommonFlags{Config: os.Getenv("CRQBOARD_CONFIG")}
	schema := try.To(subschema.New()).OrFatal(logger)
	load := try.To(subload.New()).OrFatal(logger)
	export := try.To(subbackup.NewExport()).OrFatal(logger)
	restore := try.To(subbackup.NewImport()).OrFatal(logger)
	clearAll := try.To(subclear.New()).OrFatal(logger)
	rm := try.To(subrm.New()).OrFatal(logger)
	status := try.To(substatus.New()).OrFatal(logger)
	message := try.To(submsg.New()).OrFatal(logger)

	crqctl := try.To(
		flarc.NewCommandGroup(
			"crqboard administration",
			cf,
			flarc.WithSubcommand("schema", schema),
			flarc.WithSubcommand("load", load),
			flarc.WithSubcommand("export", export),
			flarc.WithSubcommand("import", restore),
			flarc.WithSubcommand("clear", clearAll),
			flarc.WithSubcommand("remove-seqs", rm),
			flarc.WithSubcommand("status", status),
			flarc.WithSubcommand("message", message),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, crqctl, flarc.WithHelp(true)))
}
