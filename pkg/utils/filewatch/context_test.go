package filewatch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/opst/crqboard/pkg/utils/filewatch"
)

func write(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), os.FileMode(0o644)); err != nil {
		t.Fatal(err)
	}
}

// canceled waits ctx to be done, up to timeout.
func canceled(ctx context.Context, timeout time.Duration) bool {
	select {
	case <-ctx.Done():
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestUntilModifyContext(t *testing.T) {
	for name, modify := range map[string]func(t *testing.T, config string){
		"written": func(t *testing.T, config string) {
			write(t, config, "port: 8081\n")
		},
		"removed": func(t *testing.T, config string) {
			if err := os.Remove(config); err != nil {
				t.Fatal(err)
			}
		},
		"replaced by rename": func(t *testing.T, config string) {
			tmp := filepath.Join(filepath.Dir(config), ".crqboard.yaml.swp")
			write(t, tmp, "port: 8082\n")
			if err := os.Rename(tmp, config); err != nil {
				t.Fatal(err)
			}
		},
	} {
		t.Run("when the file is "+name+", it cancels the context", func(t *testing.T) {
			config := filepath.Join(t.TempDir(), "crqboard.yaml")
			write(t, config, "port: 8080\n")

			ctx, stop, err := filewatch.UntilModifyContext(context.Background(), config)
			if err != nil {
				t.Fatal(err)
			}
			defer stop()
			if ctx.Err() != nil {
				t.Fatalf("canceled too early: %v", context.Cause(ctx))
			}

			modify(t, config)

			if !canceled(ctx, 5*time.Second) {
				t.Fatal("context is not canceled")
			}
			if cause := context.Cause(ctx); !strings.Contains(cause.Error(), "crqboard.yaml") {
				t.Errorf("cause: %v", cause)
			}
		})
	}

	t.Run("other files in the directory are ignored", func(t *testing.T) {
		dir := t.TempDir()
		config := filepath.Join(dir, "crqboard.yaml")
		write(t, config, "port: 8080\n")

		ctx, stop, err := filewatch.UntilModifyContext(context.Background(), config)
		if err != nil {
			t.Fatal(err)
		}
		defer stop()

		write(t, filepath.Join(dir, "crqboard.db"), "data")

		if canceled(ctx, 500*time.Millisecond) {
			t.Errorf("canceled by other file: %v", context.Cause(ctx))
		}
	})

	t.Run("stop cancels the context without cause", func(t *testing.T) {
		config := filepath.Join(t.TempDir(), "crqboard.yaml")
		write(t, config, "port: 8080\n")

		ctx, stop, err := filewatch.UntilModifyContext(context.Background(), config)
		if err != nil {
			t.Fatal(err)
		}
		stop()

		if !canceled(ctx, time.Second) {
			t.Fatal("context is not canceled")
		}
		if cause := context.Cause(ctx); !errors.Is(cause, context.Canceled) {
			t.Errorf("cause: %v", cause)
		}
	})

	t.Run("when the directory does not exist, it fails", func(t *testing.T) {
		config := filepath.Join(t.TempDir(), "nothing", "crqboard.yaml")
		if _, _, err := filewatch.UntilModifyContext(context.Background(), config); err == nil {
			t.Error("expected error")
		}
	})
}
