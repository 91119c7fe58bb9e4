package workerpool

import (
	"context"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pitabwire/util"

	"github.com/pitabwire/lingua/config"
)

// Options defines configurable options for the engine's worker pool.
type Options struct {
	PoolCount          int
	SinglePoolCapacity int
	Concurrency        int
	ExpiryDuration     time.Duration
	Nonblocking        bool
	PreAlloc           bool
	PanicHandler       func(any)
	Logger             *util.LogEntry
	DisablePurge       bool
}

// Option defines a function that configures worker pool options.
type Option func(*Options)

// WithPoolCount sets the number of worker pools.
func WithPoolCount(count int) Option {
	return func(opts *Options) {
		opts.PoolCount = count
	}
}

// WithSinglePoolCapacity sets the capacity for a single worker pool.
func WithSinglePoolCapacity(capacity int) Option {
	return func(opts *Options) {
		opts.SinglePoolCapacity = capacity
	}
}

// WithConcurrency sets the concurrency for the worker pool.
func WithConcurrency(concurrency int) Option {
	return func(opts *Options) {
		opts.Concurrency = concurrency
	}
}

// WithPoolExpiryDuration sets the expiry duration for workers.
func WithPoolExpiryDuration(duration time.Duration) Option {
	return func(opts *Options) {
		opts.ExpiryDuration = duration
	}
}

// WithPoolNonblocking sets the non-blocking option for the pool.
func WithPoolNonblocking(nonblocking bool) Option {
	return func(opts *Options) {
		opts.Nonblocking = nonblocking
	}
}

// WithPoolPreAlloc pre-allocates memory for the pool.
func WithPoolPreAlloc(preAlloc bool) Option {
	return func(opts *Options) {
		opts.PreAlloc = preAlloc
	}
}

// WithPoolPanicHandler sets a panic handlers for the pool.
func WithPoolPanicHandler(handler func(any)) Option {
	return func(opts *Options) {
		opts.PanicHandler = handler
	}
}

// WithPoolLogger sets a logger for the pool.
func WithPoolLogger(logger *util.LogEntry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithPoolDisablePurge disables the purge mechanism in the pool.
func WithPoolDisablePurge(disable bool) Option {
	return func(opts *Options) {
		opts.DisablePurge = disable
	}
}

const (
	defaultPoolCapacity = 100
	defaultCPUFactor    = 10
)

func defaultWorkerPoolOpts(cfg config.ConfigurationWorkerPool, log *util.LogEntry) *Options {
	opts := &Options{
		Concurrency:        runtime.NumCPU() * defaultCPUFactor,
		SinglePoolCapacity: defaultPoolCapacity,
		PoolCount:          1,
		ExpiryDuration:     time.Second,
		Nonblocking:        true,
		Logger:             log,
	}
	if cfg == nil {
		return opts
	}

	if cfg.GetCPUFactor() > 0 {
		opts.Concurrency = runtime.NumCPU() * cfg.GetCPUFactor()
	}
	if cfg.GetCapacity() > 0 {
		opts.SinglePoolCapacity = cfg.GetCapacity()
	}
	opts.PoolCount = cfg.GetCount()
	opts.ExpiryDuration = cfg.GetExpiryDuration()
	return opts
}

// New builds a pool from configuration; opts override the configured values.
// A nil cfg uses built in defaults.
func New(ctx context.Context, cfg config.ConfigurationWorkerPool, opts ...Option) (WorkerPool, error) {
	wopts := defaultWorkerPoolOpts(cfg, util.Log(ctx))
	for _, opt := range opts {
		opt(wopts)
	}
	return setupWorkerPool(ctx, wopts)
}

func setupWorkerPool(_ context.Context, wopts *Options) (WorkerPool, error) {
	var antsOpts []ants.Option
	if wopts.ExpiryDuration > 0 {
		antsOpts = append(antsOpts, ants.WithExpiryDuration(wopts.ExpiryDuration))
	}
	antsOpts = append(antsOpts, ants.WithNonblocking(wopts.Nonblocking))
	if wopts.PreAlloc {
		antsOpts = append(antsOpts, ants.WithPreAlloc(wopts.PreAlloc))
	}
	if wopts.Concurrency > 0 {
		antsOpts = append(antsOpts, ants.WithMaxBlockingTasks(wopts.Concurrency))
	}
	if wopts.PanicHandler != nil {
		antsOpts = append(antsOpts, ants.WithPanicHandler(wopts.PanicHandler))
	}

	if wopts.Logger != nil {
		antsOpts = append(antsOpts, ants.WithLogger(wopts.Logger))
	}

	antsOpts = append(antsOpts, ants.WithDisablePurge(wopts.DisablePurge))
	var err error

	if wopts.PoolCount <= 1 {
		var p *ants.Pool
		p, err = ants.NewPool(wopts.SinglePoolCapacity, antsOpts...)
		if err != nil {
			return nil, err
		}
		return &singlePoolWrapper{pool: p}, nil
	}

	var mp *ants.MultiPool
	mp, err = ants.NewMultiPool(wopts.PoolCount, wopts.SinglePoolCapacity, ants.LeastTasks, antsOpts...)
	if err != nil {
		return nil, err
	}
	return &multiPoolWrapper{multiPool: mp}, nil
}

// singlePoolWrapper adapts *ants.Pool to the WorkerPool interface.
type singlePoolWrapper struct {
	pool *ants.Pool
}

func (w *singlePoolWrapper) Submit(ctx context.Context, task func()) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	return w.pool.Submit(task)
}

func (w *singlePoolWrapper) Running() int {
	return w.pool.Running()
}

func (w *singlePoolWrapper) Shutdown() {
	w.pool.Release()
}

// multiPoolWrapper adapts *ants.MultiPool to the WorkerPool interface.
type multiPoolWrapper struct {
	multiPool *ants.MultiPool
}

func (w *multiPoolWrapper) Submit(ctx context.Context, task func()) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	return w.multiPool.Submit(task)
}

func (w *multiPoolWrapper) Running() int {
	return w.multiPool.Running()
}

func (w *multiPoolWrapper) Shutdown() {
	w.multiPool.Free()
}
