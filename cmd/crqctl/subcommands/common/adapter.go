package common

import (
	"context"
	"errors"
	"fmt"
	"log"

	sconf "github.com/opst/crqboard/pkg/configs/server"
	"github.com/opst/crqboard/pkg/domain/crqboard"
	"github.com/youta-t/flarc"
)

type CommonFlags struct {
	Config string `flag:"config" help:"path to crqboard config file. Default is envvar CRQBOARD_CONFIG"`
}

type TaskWithCommonFlag[T any] func(
	ctx context.Context,
	logger *log.Logger,
	commonFlag CommonFlags,
	cl flarc.Commandline[T],
	params []any,
) error

func NewTaskWithCommonFlag[T any](task TaskWithCommonFlag[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var commonFlag CommonFlags
		found := false
		newpos := make([]any, 0, len(pos))
		for _, p := range pos {
			switch v := p.(type) {
			case CommonFlags:
				found = true
				commonFlag = v
			default:
				newpos = append(newpos, p)
			}
		}
		if !found {
			return errors.New("programming error: common flags not found")
		}

		logger := log.New(cl.Stderr(), "", log.LstdFlags)
		logger.SetPrefix(fmt.Sprintf("[%s] ", cl.Fullname()))

		return task(ctx, logger, commonFlag, cl, newpos)
	}
}

// Task is a subcommand working on the store.
//
// The store is opened before the task starts, and closed after it ends.
type Task[T any] func(
	ctx context.Context,
	logger *log.Logger,
	board crqboard.CRQBoard,
	cl flarc.Commandline[T],
	params []any,
) error

func NewTask[T any](task Task[T]) flarc.Task[T] {
	return NewTaskWithCommonFlag(func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag CommonFlags,
		cl flarc.Commandline[T],
		params []any,
	) error {
		if commonFlag.Config == "" {
			return fmt.Errorf("%w: --config (or envvar CRQBOARD_CONFIG) is required", flarc.ErrUsage)
		}
		conf, err := sconf.LoadServerConfig(commonFlag.Config)
		if err != nil {
			return fmt.Errorf("%w: failed to load config (%s)", err, commonFlag.Config)
		}

		board, err := crqboard.New(ctx, conf)
		if err != nil {
			return fmt.Errorf("%w: can not open the store (%s)", err, conf.Database().Driver())
		}
		defer board.Close()

		return task(ctx, logger, board, cl, params)
	})
}
