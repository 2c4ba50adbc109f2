package schema_test

import (
	"context"
	"strings"
	"testing"

	"github.com/opst/crqboard/cmd/crqctl/subcommands/internal/commandline"
	"github.com/opst/crqboard/cmd/crqctl/subcommands/internal/testenv"
	"github.com/opst/crqboard/cmd/crqctl/subcommands/schema"
)

func TestUpgrade(t *testing.T) {
	board := testenv.Board(t)

	for _, nth := range []string{"first", "second"} {
		t.Run(nth+" upgrade reports the latest version", func(t *testing.T) {
			stdout := new(strings.Builder)
			err := schema.Upgrade()(
				context.Background(), testenv.Logger(), board,
				commandline.MockCommandline[struct{}]{
					Fullname_: "crqctl schema upgrade",
					Stdout_:   stdout,
					Stderr_:   new(strings.Builder),
				},
				[]any{},
			)
			if err != nil {
				t.Fatal(err)
			}
			if stdout.String() != "1\n" {
				t.Errorf("stdout: %q", stdout.String())
			}
		})
	}
}

func TestVersion(t *testing.T) {
	board := testenv.Board(t)

	stdout := new(strings.Builder)
	err := schema.Version()(
		context.Background(), testenv.Logger(), board,
		commandline.MockCommandline[struct{}]{
			Fullname_: "crqctl schema version",
			Stdout_:   stdout,
			Stderr_:   new(strings.Builder),
		},
		[]any{},
	)
	if err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "1\n" {
		t.Errorf("stdout: %q", stdout.String())
	}
}
