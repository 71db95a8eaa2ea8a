package world

import (
	"fmt"

	"cubecraft/internal/persistence/snapshot"
	"cubecraft/internal/voxel"

	"go.uber.org/zap"
)

// Save writes every chunk to a snapshot file.
func (w *World) Save(path string) error {
	chunks := w.store.All()
	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Seed: w.opts.Seed,
			Size: [3]int{w.opts.SizeX, w.opts.SizeY, w.opts.SizeZ},
		},
		Chunks: make([]snapshot.ChunkV1, 0, len(chunks)),
	}
	for _, c := range chunks {
		g, _ := c.Snapshot()
		snap.Chunks = append(snap.Chunks, snapshot.ChunkV1{X: c.Coord.X, Y: c.Coord.Y, Z: c.Coord.Z, Voxels: g.Bytes()})
	}
	if err := snapshot.Write(path, snap); err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	w.log.Info("world saved", zap.String("path", path), zap.Int("chunks", len(chunks)))
	return nil
}

// Load restores a world written by Save. seaLevel only affects later
// generation. Every chunk comes back dirty.
func Load(path string, seaLevel int, log *zap.Logger) (*World, error) {
	snap, err := snapshot.Read(path)
	if err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}
	h := snap.Header
	w, err := New(Options{Seed: h.Seed, SizeX: h.Size[0], SizeY: h.Size[1], SizeZ: h.Size[2], SeaLevel: seaLevel}, log)
	if err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}
	for _, ch := range snap.Chunks {
		c := voxel.Coord{X: ch.X, Y: ch.Y, Z: ch.Z}
		chunk := w.Chunk(c)
		if chunk == nil {
			return nil, fmt.Errorf("load world: chunk %v outside %v", c, h.Size)
		}
		g, err := voxel.GridFromBytes(ch.Voxels)
		if err != nil {
			return nil, fmt.Errorf("load world: chunk %v: %w", c, err)
		}
		chunk.Load(g)
	}
	w.log.Info("world loaded", zap.String("path", path), zap.Int("chunks", len(snap.Chunks)))
	return w, nil
}
