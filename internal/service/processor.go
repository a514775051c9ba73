package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"datamorph/internal/model"
	"datamorph/internal/repository"
	"datamorph/internal/storage"
)

const (
	// progressStep is the granularity of processing_progress updates.
	progressStep = 25
	readChunk    = 64 << 10
)

// ProcessorConfig tunes the background processing job.
type ProcessorConfig struct {
	Workers   int
	QueueSize int
	// StepDelay is slept after every progress update.
	StepDelay time.Duration
}

// Processor reads each uploaded blob back from storage and walks its record
// from pending through processing to done (or failed).
type Processor struct {
	files repository.FileRepository
	store storage.Storage
	cfg   ProcessorConfig
	log   zerolog.Logger

	queue chan string
	wg    sync.WaitGroup
}

func NewProcessor(files repository.FileRepository, store storage.Storage, cfg ProcessorConfig, log zerolog.Logger) *Processor {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	return &Processor{
		files: files,
		store: store,
		cfg:   cfg,
		log:   log.With().Str("component", "processor").Logger(),
		queue: make(chan string, cfg.QueueSize),
	}
}

// Start launches the workers. They exit when ctx is cancelled; Wait blocks until they have.
func (p *Processor) Start(ctx context.Context) {
	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case id := <-p.queue:
					p.process(ctx, id)
				}
			}
		}()
	}
}

func (p *Processor) Wait() { p.wg.Wait() }

// Enqueue never blocks. When the queue is full the file stays pending.
func (p *Processor) Enqueue(fileID string) {
	select {
	case p.queue <- fileID:
	default:
		p.log.Warn().Str("file_id", fileID).Msg("processing queue full")
	}
}

func (p *Processor) process(ctx context.Context, id string) {
	start := time.Now()
	log := p.log.With().Str("file_id", id).Logger()

	err := p.run(ctx, id)
	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("processing failed")
		upd := repository.ProcessingUpdate{Status: model.StatusFailed, ErrorMessage: err.Error()}
		if uerr := p.files.UpdateProcessing(context.WithoutCancel(ctx), id, upd); uerr != nil {
			log.Error().Err(uerr).Msg("mark failed")
		}
		return
	}
	log.Info().Int64("duration_ms", time.Since(start).Milliseconds()).Msg("processing complete")
}

func (p *Processor) run(ctx context.Context, id string) error {
	f, err := p.files.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load file: %w", err)
	}
	if err := p.update(ctx, id, model.StatusProcessing, 0); err != nil {
		return err
	}

	rc, info, err := p.store.Get(ctx, f.StoragePath)
	if err != nil {
		return fmt.Errorf("open blob: %w", err)
	}
	defer rc.Close()

	total := info.Size
	if total <= 0 {
		total = f.Size
	}

	buf := make([]byte, readChunk)
	var read int64
	reported := 0
	for {
		n, rerr := rc.Read(buf)
		read += int64(n)
		if pct := stepPercent(read, total); pct > reported && pct < 100 {
			reported = pct
			if err := p.update(ctx, id, model.StatusProcessing, pct); err != nil {
				return err
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("read blob: %w", rerr)
		}
	}
	if total > 0 && read != total {
		return fmt.Errorf("read blob: got %d of %d bytes", read, total)
	}
	return p.update(ctx, id, model.StatusDone, 100)
}

func (p *Processor) update(ctx context.Context, id, status string, progress int) error {
	if err := p.files.UpdateProcessing(ctx, id, repository.ProcessingUpdate{Status: status, Progress: progress}); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	if p.cfg.StepDelay <= 0 || status == model.StatusDone {
		return nil
	}
	t := time.NewTimer(p.cfg.StepDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// stepPercent rounds read/total down to a multiple of progressStep.
func stepPercent(read, total int64) int {
	if total <= 0 {
		return 0
	}
	pct := int(read * 100 / total)
	if pct > 100 {
		pct = 100
	}
	return pct / progressStep * progressStep
}
