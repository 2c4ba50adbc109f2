package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	sconf "github.com/opst/crqboard/pkg/configs/server"
	"github.com/opst/crqboard/pkg/domain/crqboard"
	"github.com/opst/crqboard/pkg/utils/filewatch"
	"golang.org/x/sync/errgroup"
)

func main() {
	pconfig := flag.String(
		"config", os.Getenv("CRQBOARD_CONFIG"), "path to config file",
	)
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	flag.Parse()

	logger := log.New(os.Stderr, "[crqboard] ", log.LstdFlags)
	if *pconfig == "" {
		logger.Fatal("config file is required. pass --config or set CRQBOARD_CONFIG")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conf, err := sconf.LoadServerConfig(*pconfig)
	if err != nil {
		logger.Fatalf("can not read configration: %s", err)
	}

	board, err := crqboard.New(ctx, conf)
	if err != nil {
		logger.Fatalf("can not connect to the store: %s", err)
	}
	defer board.Close()

	{
		ctx_, ccan := board.Schema().Database().Context(ctx)
		defer ccan()
		ctx = ctx_
	}

	{
		ctx_, wcan, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			logger.Fatalf("can not watch configration: %s", err)
		}
		defer wcan()
		ctx = ctx_
	}

	server := BuildServer(board, *loglevel)
	for _, r := range server.Routes() {
		server.Logger.Debugf("- mount handler: %s %s", strings.ToUpper(r.Method), r.Path)
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		server.Logger.Infof("listening on :%d (store: %s)", conf.Port(), conf.Database().Driver())
		if err := server.Start(fmt.Sprintf(":%d", conf.Port())); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-gctx.Done()
		server.Logger.Infof("shutting down... (cause: %s)", context.Cause(gctx))

		qctx, qcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer qcancel()
		return server.Shutdown(qctx)
	})

	exit := 0
	if err := eg.Wait(); err != nil {
		server.Logger.Error("server stops with error:", err)
		exit = 1
	}
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		// config updates and outdated schema stop the server to be restarted.
		server.Logger.Warnf("stopped: %s", cause)
		exit = 1
	}
	board.Close()
	os.Exit(exit)
}
