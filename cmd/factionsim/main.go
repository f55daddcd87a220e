// Command factionsim runs the STARFALL autonomous faction simulation.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kvern/starfall/internal/api"
	"github.com/kvern/starfall/internal/config"
	"github.com/kvern/starfall/internal/engine"
	"github.com/kvern/starfall/internal/persistence"
	"github.com/kvern/starfall/internal/player"
	"github.com/kvern/starfall/internal/rng"
	"github.com/kvern/starfall/internal/sector"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("STARFALL — Autonomous Faction Simulation")

	seed := cfg.Seed
	if seed == 0 {
		seed, err = rng.NewSeed()
		if err != nil {
			slog.Error("failed to generate seed", "error", err)
			os.Exit(1)
		}
	}
	slog.Info("run seed", "seed", seed)

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Orchestrator ──────────────────────────────────────────────────
	sectors := sector.NewService(seed)
	registry := player.NewMemoryRegistry()

	orch := engine.New(engine.Options{
		Sectors:  sectors,
		Registry: registry,
		Store:    db,
		Seed:     seed,
		Interval: cfg.TickInterval,
	})
	if err := orch.Initialize(); err != nil {
		slog.Error("initialization failed", "error", err)
		os.Exit(1)
	}

	loop := engine.NewLoop()
	loop.Interval = cfg.TickInterval
	loop.Speed = cfg.Speed
	loop.OnTick = orch.Tick
	loop.OnSave = orch.Save

	// ── HTTP API ──────────────────────────────────────────────────────
	apiServer := &api.Server{Orch: orch, Port: cfg.APIPort}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		loop.Stop()
	}()

	loop.Run()

	slog.Info("final save...")
	orch.Save()
	slog.Info("simulation stopped, world state saved")
}
