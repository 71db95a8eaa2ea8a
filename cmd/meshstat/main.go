// Command meshstat meshes a whole world without a window and logs the
// geometry totals.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"cubecraft/internal/atlas"
	"cubecraft/internal/config"
	"cubecraft/internal/logger"
	"cubecraft/internal/meshing"
	"cubecraft/internal/world"

	"go.uber.org/zap"
)

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	load := flag.Bool("load", false, "Read the world from the save path instead of generating it")
	write := flag.Bool("write", false, "Write the world to the save path afterwards")
	flag.Parse()

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, *load, *write); err != nil {
		logger.Error("meshstat failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, load, write bool) error {
	log := logger.Named("meshstat")

	tbl := atlas.Default()
	if cfg.Atlas.Path != "" {
		var err error
		if tbl, err = atlas.LoadFile(cfg.Atlas.Path); err != nil {
			return err
		}
	}

	var w *world.World
	var err error
	if load {
		w, err = world.Load(cfg.World.SavePath, cfg.World.SeaLevel, logger.Named("world"))
	} else {
		w, err = world.New(world.Options{
			Seed:     cfg.World.Seed,
			SizeX:    cfg.World.SizeX,
			SizeY:    cfg.World.SizeY,
			SizeZ:    cfg.World.SizeZ,
			SeaLevel: cfg.World.SeaLevel,
		}, logger.Named("world"))
		if err == nil {
			w.Generate()
		}
	}
	if err != nil {
		return err
	}

	stats, took, err := meshWorld(ctx, w, tbl, cfg)
	if err != nil {
		return err
	}
	log.Info("world meshed", append(stats.Fields(), zap.Duration("took", took), zap.Int("workers", cfg.MeshWorkers()))...)

	if write {
		return w.Save(cfg.World.SavePath)
	}
	return nil
}

func meshWorld(ctx context.Context, w *world.World, tbl *atlas.Table, cfg *config.Config) (*meshing.Stats, time.Duration, error) {
	pool := meshing.NewWorkerPool(meshing.NewBatcher(tbl), cfg.MeshWorkers(), cfg.Meshing.QueueSize, logger.Named("meshing"))
	defer pool.Shutdown()

	chunks := w.Chunks()
	results := make(chan meshing.MeshResult, len(chunks))
	start := time.Now()

	go func() {
		for _, c := range chunks {
			grid, version := c.Snapshot()
			err := pool.SubmitJobBlocking(ctx, meshing.MeshJob{
				Coord:      c.Coord,
				Version:    version,
				Grid:       grid,
				Neighbors:  w.ChunkNeighbors(c.Coord),
				ResultChan: results,
			})
			if err != nil {
				return
			}
			c.SetClean(version)
		}
	}()

	stats := &meshing.Stats{}
	for range chunks {
		select {
		case r := <-results:
			stats.Add(r)
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}
	return stats, time.Since(start), nil
}
