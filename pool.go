package html2img

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("studio pool is closed")

// StudioFactory creates a Studio for the pool.
type StudioFactory func() (*Studio, error)

// StudioPool manages a pool of Studio instances for parallel exports.
// Each studio has its own browser and exporter, so workers never hit the
// single-export reject policy of a shared exporter.
// Studios are created lazily on first acquire to avoid startup delay.
type StudioPool struct {
	size    int
	factory StudioFactory
	studios []*Studio
	sem     chan *Studio
	mu      sync.Mutex
	created int
	closed  bool
}

// NewStudioPool creates a pool with capacity for n studios built by factory.
func NewStudioPool(n int, factory StudioFactory) *StudioPool {
	if n < 1 {
		n = 1
	}

	return &StudioPool{
		size:    n,
		factory: factory,
		studios: make([]*Studio, 0, n),
		sem:     make(chan *Studio, n),
	}
}

// Acquire gets a studio from the pool, creating one if capacity allows.
// When every studio is busy it waits for a Release or for ctx to be done.
func (p *StudioPool) Acquire(ctx context.Context) (*Studio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	select {
	case s, ok := <-p.sem:
		return p.handOut(s, ok)
	default:
	}

	if s, made, err := p.grow(); made || err != nil {
		return s, err
	}

	select {
	case s, ok := <-p.sem:
		return p.handOut(s, ok)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// grow creates a studio when the pool is below capacity.
// made is false when the pool is full.
func (p *StudioPool) grow() (s *Studio, made bool, err error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, false, ErrPoolClosed
	}
	if p.created >= p.size {
		p.mu.Unlock()
		return nil, false, nil
	}
	p.created++
	p.mu.Unlock()

	// Browser startup happens outside the lock
	s, err = p.factory()

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.created--
		return nil, false, err
	}
	if p.closed {
		_ = s.Close()
		return nil, false, ErrPoolClosed
	}
	p.studios = append(p.studios, s)
	return s, true, nil
}

func (p *StudioPool) handOut(s *Studio, ok bool) (*Studio, error) {
	if !ok {
		return nil, ErrPoolClosed
	}
	return s, nil
}

// Release returns a studio to the pool.
// The send never blocks: the channel holds every studio the pool can create.
func (p *StudioPool) Release(s *Studio) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- s
}

// Close releases all browser resources.
// Returns an aggregated error if multiple studios fail to close.
func (p *StudioPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	studios := p.studios
	p.mu.Unlock()

	var errs []error
	for _, s := range studios {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *StudioPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the optimal pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
