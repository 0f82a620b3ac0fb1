package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"keygrid/internal/config"
	"keygrid/internal/logging"
	"keygrid/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// watchCmd regenerates the layout whenever the config changes
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate the LAYOUT matrix whenever the config file changes",
	Long: `Prints (or writes) the layout once, then again after every change to the
config file. A change that fails to load or validate is logged and the
previous output is left alone. Stops on SIGINT/SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	return watchLayout(ctx, sigCh, configPath, outputPath, cmd.OutOrStdout())
}

// watchLayout renders once, then on every settled change until ctx ends or
// a signal arrives.
func watchLayout(ctx context.Context, signals <-chan os.Signal, path, output string, stdout io.Writer) error {
	log := logging.Get(logging.CategoryWatch)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	render := func(ctx context.Context) error {
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid layout config: %w", err)
		}
		if output == "" {
			return generate(c, stdout)
		}
		return generateFile(c, output)
	}

	if err := render(ctx); err != nil {
		log.Warn("initial render failed, waiting for a fix", zap.Error(err))
	}

	w, err := watch.New(path, render)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer w.Stop()
		select {
		case <-gctx.Done():
			return nil
		case <-w.Done():
			if ctx.Err() != nil {
				return nil
			}
			return errors.New("watcher stopped unexpectedly")
		}
	})
	g.Go(func() error {
		select {
		case sig := <-signals:
			log.Info("shutting down watcher", zap.Stringer("signal", sig))
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	err = g.Wait()
	stats := w.Stats()
	log.Info("watch finished",
		zap.Int("reloads", stats.Reloads),
		zap.Int("reload_errors", stats.ReloadErrors))
	return err
}
