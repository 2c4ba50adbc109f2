package filewatch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// UntilModifyContext returns a context which is canceled when one of files is
// written, created, removed or renamed.
//
// Directories holding the files are watched, not the files themselves,
// so replacing a file by rename (as editors and configmap mounts do) is also noticed.
// Other files in those directories are ignored.
//
// # Returns
//
// - context.Context: canceled with the cause naming the modified file.
//
// - func(): stops watching.
//
// - error: when watching can not be started. Then the context and the func are nil.
func UntilModifyContext(ctx context.Context, files ...string) (context.Context, func(), error) {
	targets := map[string]struct{}{}
	dirs := map[string]struct{}{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, nil, err
		}
		targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			w.Close()
			return nil, nil, err
		}
	}

	cctx, cancel := context.WithCancelCause(ctx)
	go func() {
		defer w.Close()
		for {
			select {
			case <-cctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				cancel(fmt.Errorf("watching files: %w", err))
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op == fsnotify.Chmod {
					continue
				}
				name, err := filepath.Abs(event.Name)
				if err != nil {
					continue
				}
				if _, ok := targets[name]; ok {
					cancel(fmt.Errorf("%s is updated (%s)", event.Name, event.Op))
				}
			}
		}
	}()

	return cctx, func() { cancel(nil) }, nil
}
