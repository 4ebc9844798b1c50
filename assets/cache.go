// Package assets loads model files once, keeps a normalized prototype per
// path and hands out independent clones of it.
package assets

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"landscape-engine/scene"
)

const (
	DefaultMaxConcurrentLoads = 3
	DefaultTargetSize         = 1.0
)

// Options configures a Cache. Zero values select the defaults.
type Options struct {
	MaxConcurrentLoads int
	// TargetSize is the largest bounding-box dimension, in metres, every
	// prototype is normalized to.
	TargetSize float32
	Logger     *zap.Logger
	// Releaser frees GPU resources of prototypes on Dispose. Optional.
	Releaser scene.Releaser
}

// Stats is a snapshot of the cache state.
type Stats struct {
	Cached  int // prototypes ready to clone
	Queued  int // loads waiting for a free slot
	Loading int // loads currently running
}

// session holds everything Dispose throws away. Loads compare their session
// against the current one before publishing a result.
type session struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group
	sem    *semaphore.Weighted
}

// Cache maps asset paths to prototypes, de-duplicating concurrent loads
// and bounding how many run at once. It is safe for concurrent use.
type Cache struct {
	loader Loader
	opts   Options
	log    *zap.Logger

	mu         sync.Mutex
	sess       *session
	prototypes map[string]*Prototype
	queued     int
	loading    int
}

// New creates a cache that loads through loader.
func New(loader Loader, opts Options) *Cache {
	if opts.MaxConcurrentLoads <= 0 {
		opts.MaxConcurrentLoads = DefaultMaxConcurrentLoads
	}
	if opts.TargetSize <= 0 {
		opts.TargetSize = DefaultTargetSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	c := &Cache{
		loader:     loader,
		opts:       opts,
		log:        opts.Logger.Named("assets"),
		prototypes: make(map[string]*Prototype),
	}
	c.sess = c.newSession()
	return c
}

func (c *Cache) newSession() *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		ctx:    ctx,
		cancel: cancel,
		sem:    semaphore.NewWeighted(int64(c.opts.MaxConcurrentLoads)),
	}
}

// Request returns a fresh instance of the asset at path. A cached prototype
// is cloned immediately; otherwise the caller joins the load already in
// flight for path or queues a new one. Cancelling ctx abandons only this
// caller's wait.
func (c *Cache) Request(ctx context.Context, path string) (*Instance, error) {
	c.mu.Lock()
	if p, ok := c.prototypes[path]; ok {
		c.mu.Unlock()
		return p.Instantiate(), nil
	}
	s := c.sess
	c.mu.Unlock()

	ch := s.group.DoChan(path, func() (interface{}, error) {
		return c.load(s, path)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.ctx.Done():
		return nil, ErrDisposed
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Prototype).Instantiate(), nil
	}
}

// load runs one shared load for path within session s.
func (c *Cache) load(s *session, path string) (*Prototype, error) {
	c.mu.Lock()
	if s != c.sess {
		c.mu.Unlock()
		return nil, ErrDisposed
	}
	// a load that settled between the cache check and joining the group
	if p, ok := c.prototypes[path]; ok {
		c.mu.Unlock()
		return p, nil
	}
	c.queued++
	c.mu.Unlock()

	err := s.sem.Acquire(s.ctx, 1)

	c.mu.Lock()
	c.queued--
	if err != nil || s != c.sess {
		c.mu.Unlock()
		if err == nil {
			s.sem.Release(1)
		}
		return nil, ErrDisposed
	}
	c.loading++
	c.mu.Unlock()

	defer s.sem.Release(1)

	c.log.Debug("loading asset", zap.String("path", path))
	root, err := c.loader.Load(s.ctx, path)

	var proto *Prototype
	if err == nil {
		var ok bool
		proto, ok = newPrototype(path, root, c.opts.TargetSize)
		if !ok {
			c.log.Warn("asset has degenerate bounds, using unit scale", zap.String("path", path))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading--

	if s != c.sess {
		return nil, ErrDisposed
	}
	if err != nil {
		c.log.Error("asset load failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("load asset %q: %w", path, err)
	}
	c.prototypes[path] = proto
	c.log.Debug("asset cached",
		zap.String("path", path),
		zap.Float32("base_scale", proto.BaseScale))
	return proto, nil
}

// Dispose drops every prototype, releases their GPU resources and rejects
// queued and waiting requests with ErrDisposed. Loads still running are left
// to finish and their results are discarded. The cache can be used again
// afterwards. Calling Dispose repeatedly is safe.
func (c *Cache) Dispose() {
	c.mu.Lock()
	old := c.sess
	protos := c.prototypes
	c.sess = c.newSession()
	c.prototypes = make(map[string]*Prototype)
	c.mu.Unlock()

	old.cancel()

	if len(protos) > 0 {
		c.log.Debug("releasing prototypes", zap.Int("count", len(protos)))
	}
	if c.opts.Releaser == nil {
		return
	}
	for _, p := range protos {
		p.Root.Dispose(c.opts.Releaser)
		for _, t := range p.textures() {
			c.opts.Releaser.ReleaseTexture(t)
		}
	}
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Cached:  len(c.prototypes),
		Queued:  c.queued,
		Loading: c.loading,
	}
}

// Prototype returns the cached prototype for path, if loaded.
func (c *Cache) Prototype(path string) (*Prototype, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.prototypes[path]
	return p, ok
}
