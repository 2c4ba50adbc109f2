package message_test

import (
	"context"
	"strings"
	"testing"

	"github.com/opst/crqboard/cmd/crqctl/subcommands/internal/commandline"
	"github.com/opst/crqboard/cmd/crqctl/subcommands/internal/testenv"
	"github.com/opst/crqboard/cmd/crqctl/subcommands/message"
	"github.com/opst/crqboard/pkg/domain"
	kmsg "github.com/opst/crqboard/pkg/message"
	"github.com/opst/crqboard/pkg/utils/try"
)

func TestTask(t *testing.T) {
	ctx := context.Background()
	board := testenv.Board(t)
	testenv.Seed(t, board)

	stdout := new(strings.Builder)
	err := message.Task()(
		ctx, testenv.Logger(), board,
		commandline.MockCommandline[struct{}]{
			Fullname_: "crqctl message",
			Stdout_:   stdout,
			Stderr_:   new(strings.Builder),
		},
		[]any{},
	)
	if err != nil {
		t.Fatal(err)
	}

	iactivity := board.Activity()
	acts := try.To(iactivity.Activities(ctx)).OrFatal(t)
	expected := kmsg.Build(acts, domain.DefaultCatalogue(), testenv.Now.In(domain.Zone(-3)))
	if stdout.String() != expected {
		t.Errorf("message:\n%s\n--- expected ---\n%s", stdout.String(), expected)
	}
	if !strings.HasSuffix(stdout.String(), "✅ Atualizado em: 10/11/2025 22:00:00\n") {
		t.Errorf("footer:\n%s", stdout.String())
	}
}
