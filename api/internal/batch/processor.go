// Package batch runs vehicle identification over a list of images in small
// concurrent groups.
//
// Items inside a group are sent at the same time; groups run one after the
// other with a fixed pause between them. A throttled item is retried exactly
// once after a longer pause. Every item yields exactly one report.Record, and
// no single failure stops its siblings or later groups.
package batch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"carinfo/api/internal/catalog"
	"carinfo/api/internal/report"
	"carinfo/api/internal/util"
	"carinfo/api/internal/vision"
)

const (
	BatchSize     = 3
	GroupDelay    = 2 * time.Second
	ThrottleDelay = 10 * time.Second

	previewLen = 100
)

// Sleeper pauses for d. Implementations should return early when ctx is done.
type Sleeper func(ctx context.Context, d time.Duration)

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

type Processor struct {
	engine vision.Engine
	log    *zap.Logger
	sleep  Sleeper
}

type Option func(*Processor)

func WithLogger(l *zap.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.log = l
		}
	}
}

func WithSleeper(s Sleeper) Option {
	return func(p *Processor) {
		if s != nil {
			p.sleep = s
		}
	}
}

func New(engine vision.Engine, opts ...Option) *Processor {
	p := &Processor{
		engine: engine,
		log:    zap.NewNop(),
		sleep:  Sleep,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run processes items in groups of BatchSize and returns one record per item,
// in input order.
func (p *Processor) Run(ctx context.Context, items []catalog.Item) []report.Record {
	total := len(items)
	groups := (total + BatchSize - 1) / BatchSize
	records := make([]report.Record, 0, total)

	p.log.Info("processing images", zap.Int("images", total), zap.Int("batches", groups))

	for start := 0; start < total; start += BatchSize {
		end := min(start+BatchSize, total)
		group := items[start:end]
		p.log.Info("processing batch",
			zap.Int("batch", start/BatchSize+1),
			zap.Int("batches", groups),
			zap.Int("size", len(group)),
		)

		// each goroutine owns one slot, so out needs no lock
		out := make([]report.Record, len(group))
		var g errgroup.Group
		for i, it := range group {
			pos := start + i + 1
			g.Go(func() error {
				out[i] = p.processOne(ctx, it, pos, total)
				return nil
			})
		}
		_ = g.Wait()
		records = append(records, out...)

		if end < total {
			p.log.Info("waiting before next batch", zap.Duration("delay", GroupDelay))
			p.sleep(ctx, GroupDelay)
		}
	}
	return records
}

// processOne makes at most two attempts: the second only after a throttled
// first one, and its outcome is final whatever it is.
func (p *Processor) processOne(ctx context.Context, it catalog.Item, pos, total int) report.Record {
	log := p.log.With(
		zap.String("file", it.Filename),
		zap.String("progress", fmt.Sprintf("%d/%d", pos, total)),
	)
	log.Info("processing image")

	rec, err := p.attempt(ctx, it, log)
	if err == nil {
		return rec
	}
	if !vision.IsRateLimited(err) {
		log.Error("image failed", zap.Error(err))
		return failed(it, err)
	}

	log.Warn("rate limited, retrying once", zap.Duration("delay", ThrottleDelay), zap.Error(err))
	p.sleep(ctx, ThrottleDelay)

	rec, err = p.attempt(ctx, it, log)
	if err != nil {
		log.Error("image failed after retry", zap.Error(err))
		return failed(it, err)
	}
	return rec
}

func (p *Processor) attempt(ctx context.Context, it catalog.Item, log *zap.Logger) (report.Record, error) {
	img, err := it.Read()
	if err != nil {
		return report.Record{}, err
	}

	raw, err := p.engine.Complete(ctx, vision.NewVehicleRequest(img, it.MIME))
	if err != nil {
		return report.Record{}, err
	}
	log.Debug("raw response", zap.String("preview", util.Preview(raw, previewLen)))

	info, err := vision.ParseVehicleInfo(util.CleanJSONResponse(raw))
	if err != nil {
		// Recorded as data: null with no error, which looks the same as an
		// empty answer in the report. Whether this should set Error is still
		// undecided, so only the log tells the two apart.
		log.Warn("could not parse JSON", zap.String("raw", raw), zap.Error(err))
		return report.Record{Filename: it.Filename}, nil
	}
	log.Info("parsed image")
	return report.Record{Filename: it.Filename, Data: info}, nil
}

func failed(it catalog.Item, err error) report.Record {
	return report.Record{Filename: it.Filename, Error: err.Error()}
}
