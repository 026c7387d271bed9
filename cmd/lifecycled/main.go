package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/lifecycle/internal/config"
	"github.com/zeusync/lifecycle/internal/core/observability/log"
	"github.com/zeusync/lifecycle/internal/demo"
	"github.com/zeusync/lifecycle/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a .yaml or .toml config file")
	spawnEvery := flag.Uint64("spawn-every", 10, "spawn a monster every N frames (0 disables)")
	monsterHP := flag.Int("monster-hp", 25, "hit points of spawned monsters")
	flag.Parse()

	if err := run(*configPath, demo.Options{SpawnEvery: *spawnEvery, MonsterHP: *monsterHP}); err != nil {
		fmt.Fprintln(os.Stderr, "lifecycled:", err)
		os.Exit(1)
	}
}

func run(configPath string, opts demo.Options) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	rt, err := injector.InitializeRuntime(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Logger.Sync() }()

	world := demo.NewWorld(rt.Manager, rt.Logger, opts)
	if err = world.Register(); err != nil {
		return err
	}
	if _, err = world.AddPlayer("player-1"); err != nil {
		return err
	}
	rt.Logger.Info("lifecycle index", log.String("types", rt.Manager.Describe()))
	rt.Loop.OnFrame(world.OnFrame)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// a frame limit ends the loop, which takes the diagnostics server down with it
		defer cancel()
		frames, err := rt.Loop.Run(ctx)
		rt.Logger.Info("loop finished",
			log.Uint64("frames", frames),
			log.Int("spawned", world.Spawned()),
			log.Int("despawned", world.Despawned()),
		)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if rt.Diagnostics != nil {
		g.Go(func() error {
			return rt.Diagnostics.Run(ctx)
		})
	}
	return g.Wait()
}
