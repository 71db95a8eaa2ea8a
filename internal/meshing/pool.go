package meshing

import (
	"context"
	"sync"

	"cubecraft/internal/voxel"

	"go.uber.org/zap"
)

// MeshJob represents a meshing job request
type MeshJob struct {
	Coord   voxel.Coord
	Version uint64
	// Grid is a private snapshot; the pool never sees the live chunk.
	Grid      *voxel.Grid
	Neighbors Neighbors
	// Result channel - will be sent the result when done
	ResultChan chan<- MeshResult
}

// MeshResult contains the result of a meshing operation
type MeshResult struct {
	Coord   voxel.Coord
	Version uint64
	Meshes  ChunkMeshes
	Err     error
}

// WorkerPool manages goroutines for mesh generation. Every worker owns its
// scratch buffers and indexer; only the batcher's atlas table is shared.
type WorkerPool struct {
	jobQueue chan MeshJob
	workers  int
	batcher  *Batcher
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

// NewWorkerPool creates a new mesh worker pool
func NewWorkerPool(b *Batcher, workers, queueSize int, log *zap.Logger) *WorkerPool {
	if log == nil {
		log = zap.NewNop()
	}
	workers = max(workers, 1)
	ctx, cancel := context.WithCancel(context.Background())

	pool := &WorkerPool{
		jobQueue: make(chan MeshJob, max(queueSize, 1)),
		workers:  workers,
		batcher:  b,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := range workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// SubmitJob submits a mesh generation job to the pool
// Returns true if job was submitted successfully, false if queue is full
func (p *WorkerPool) SubmitJob(job MeshJob) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// SubmitJobBlocking waits until the job is queued, ctx ends or the pool stops.
func (p *WorkerPool) SubmitJobBlocking(ctx context.Context, job MeshJob) error {
	if p.ctx.Err() != nil {
		return context.Canceled
	}
	select {
	case p.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return context.Canceled
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	scratch := NewScratch(CubeCapacity)
	indexer := NewIndexer()
	log := p.log.With(zap.Int("worker", id))

	for {
		select {
		case job := <-p.jobQueue:
			meshes, err := BuildChunkMeshes(p.batcher, job.Grid, job.Neighbors, scratch, indexer)
			if err != nil {
				log.Error("chunk meshing failed",
					zap.Int("x", job.Coord.X), zap.Int("y", job.Coord.Y), zap.Int("z", job.Coord.Z),
					zap.Error(err))
			}

			result := MeshResult{
				Coord:   job.Coord,
				Version: job.Version,
				Meshes:  meshes,
				Err:     err,
			}

			select {
			case job.ResultChan <- result:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// Shutdown stops the workers and waits for them. Queued jobs are dropped.
func (p *WorkerPool) Shutdown() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
}

// GetQueueLength returns the current number of jobs in the queue
func (p *WorkerPool) GetQueueLength() int {
	return len(p.jobQueue)
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}
