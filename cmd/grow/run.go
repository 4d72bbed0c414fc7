package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/nathoo/grow/cli"
	"github.com/nathoo/grow/config"
	"github.com/nathoo/grow/engine"
	"github.com/nathoo/grow/engine/save"
	"github.com/nathoo/grow/engine/scene"
	"github.com/nathoo/grow/loader"
	"github.com/nathoo/grow/logging"
	"github.com/nathoo/grow/metrics"
	"github.com/nathoo/grow/tui"
)

func runGame(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	backend, closeBackend, err := openBackend(cfg, log)
	if err != nil {
		return err
	}
	defer closeBackend()

	mgrOpts := []save.ManagerOption{
		save.WithLogger(log),
		save.WithScriptLoader(func(path string) (*scene.World, error) {
			return loader.Load(path, loader.WithLogger(log))
		}),
	}

	// An adventure named on the command line is imported and opened.
	if len(args) > 0 {
		importer := save.NewManager(backend, mgrOpts...)
		w, err := importer.Import(args[0])
		if err != nil {
			return fmt.Errorf("importing %s: %w", args[0], err)
		}
		if err := importer.Save(context.Background(), w); err != nil {
			return err
		}
		cfg.Adventure = w.Name()
	}
	mgr := save.NewManager(backend, append(mgrOpts, save.WithDefault(cfg.Adventure))...)

	reg := prometheus.NewRegistry()
	opts := []engine.Option{
		engine.WithLogger(log),
		engine.WithMetrics(metrics.New(reg)),
	}
	if cfg.Seed != 0 {
		opts = append(opts, engine.WithSeed(cfg.Seed))
	}
	newEngine := func(in io.Reader, out io.Writer) *engine.Engine {
		return engine.New(in, out, mgr, opts...)
	}

	err = play(cmd, newEngine, log)
	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		if werr := metrics.Write(os.Stderr, reg); werr != nil {
			log.Error("writing stats", "err", werr)
		}
	}
	return err
}

func play(cmd *cobra.Command, newEngine tui.EngineFactory, log *slog.Logger) error {
	plain, _ := cmd.Flags().GetBool("plain")
	scriptFile, _ := cmd.Flags().GetString("script")

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c := cli.New(newEngine(f, os.Stdout))
		c.EchoInput = true
		return c.Run()
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		return cli.New(newEngine(os.Stdin, os.Stdout)).Run()
	}

	log.Debug("starting full screen interface")
	return tui.Run(newEngine)
}

// applyFlags lets explicitly set flags override the environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("root") {
		cfg.Root, _ = f.GetString("root")
	}
	if f.Changed("adventure") {
		cfg.Adventure, _ = f.GetString("adventure")
	}
	if f.Changed("store") {
		cfg.Store, _ = f.GetString("store")
	}
	if f.Changed("redis") {
		cfg.RedisAddr, _ = f.GetString("redis")
	}
	if f.Changed("seed") {
		cfg.Seed, _ = f.GetInt64("seed")
	}
	return cfg.Validate()
}

func openBackend(cfg *config.Config, log *slog.Logger) (save.Backend, func(), error) {
	switch cfg.Store {
	case config.StoreRedis:
		log.Debug("adventure store", "store", cfg.Store, "addr", cfg.RedisAddr)
		b := save.NewRedisBackend(cfg.RedisAddr)
		return b, func() { _ = b.Close() }, nil
	case config.StoreFile:
		b := save.NewFileBackend(cfg.Root)
		log.Debug("adventure store", "store", cfg.Store, "root", b.Root())
		return b, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
