package removeseqs_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/opst/crqboard/cmd/crqctl/subcommands/internal/commandline"
	"github.com/opst/crqboard/cmd/crqctl/subcommands/internal/testenv"
	"github.com/opst/crqboard/cmd/crqctl/subcommands/removeseqs"
	apistore "github.com/opst/crqboard/pkg/api/types/store"
	"github.com/opst/crqboard/pkg/domain"
	"github.com/opst/crqboard/pkg/utils"
	"github.com/opst/crqboard/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func TestParseSeqs(t *testing.T) {
	for name, testcase := range map[string]struct {
		when []string
		then []int
	}{
		"separated args": {when: []string{"51", "52"}, then: []int{51, 52}},
		"comma list":     {when: []string{"51,52", " 53 "}, then: []int{51, 52, 53}},
		"empty items":    {when: []string{"51,,52,"}, then: []int{51, 52}},
	} {
		t.Run(name, func(t *testing.T) {
			actual := try.To(removeseqs.ParseSeqs(testcase.when)).OrFatal(t)
			if diff := cmp.Diff(testcase.then, actual); diff != "" {
				t.Errorf("(-expected, +actual)\n%s", diff)
			}
		})
	}

	for name, when := range map[string][]string{
		"not a number": {"51", "x"},
		"nothing":      {" , "},
	} {
		t.Run("it rejects: "+name, func(t *testing.T) {
			if _, err := removeseqs.ParseSeqs(when); !errors.Is(err, flarc.ErrUsage) {
				t.Errorf("expected ErrUsage, but %v", err)
			}
		})
	}
}

func TestTask(t *testing.T) {
	ctx := context.Background()

	t.Run("it removes activities of the CRQ", func(t *testing.T) {
		board := testenv.Board(t)
		testenv.Seed(t, board)

		stdout := new(strings.Builder)
		err := removeseqs.Task()(
			ctx, testenv.Logger(), board,
			commandline.MockCommandline[removeseqs.Flags]{
				Fullname_: "crqctl remove-seqs",
				Stdout_:   stdout,
				Stderr_:   new(strings.Builder),
				Flags_:    removeseqs.Flags{CRQ: "rede"},
				Args_:     map[string][]string{removeseqs.ARG_SEQ: {"1,2"}},
			},
			[]any{},
		)
		if err != nil {
			t.Fatal(err)
		}

		actual := apistore.Removed{}
		if err := json.Unmarshal([]byte(stdout.String()), &actual); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(apistore.Removed{ExcelDeleted: 2, ControlDeleted: 2}, actual); diff != "" {
			t.Errorf("(-expected, +actual)\n%s", diff)
		}

		acts := try.To(board.Activity().Activities(ctx)).OrFatal(t)
		keys := utils.Map(acts, func(a domain.Activity) string { return a.Key.String() })
		if diff := cmp.Diff([]string{"3_REDE_0", "1_NFS_0"}, keys); diff != "" {
			t.Errorf("left activities: (-expected, +actual)\n%s", diff)
		}
	})

	for name, testcase := range map[string]struct {
		crq  string
		seqs []string
	}{
		"without crq": {crq: "", seqs: []string{"1"}},
		"unknown crq": {crq: "DNS", seqs: []string{"1"}},
		"broken seq":  {crq: "REDE", seqs: []string{"um"}},
	} {
		t.Run("it rejects: "+name, func(t *testing.T) {
			board := testenv.Board(t)
			testenv.Seed(t, board)

			err := removeseqs.Task()(
				ctx, testenv.Logger(), board,
				commandline.MockCommandline[removeseqs.Flags]{
					Fullname_: "crqctl remove-seqs",
					Stdout_:   new(strings.Builder),
					Stderr_:   new(strings.Builder),
					Flags_:    removeseqs.Flags{CRQ: testcase.crq},
					Args_:     map[string][]string{removeseqs.ARG_SEQ: testcase.seqs},
				},
				[]any{},
			)
			if !errors.Is(err, flarc.ErrUsage) {
				t.Errorf("expected ErrUsage, but %v", err)
			}
			if acts := try.To(board.Activity().Activities(ctx)).OrFatal(t); len(acts) != 4 {
				t.Errorf("activities are removed: %d left", len(acts))
			}
		})
	}
}
