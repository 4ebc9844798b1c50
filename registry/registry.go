// Package registry reconciles the host's list of placed objects against the
// live scene: one owning table keyed by object id, async loads that are
// re-validated before they are attached.
package registry

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"landscape-engine/assets"
	"landscape-engine/core"
	"landscape-engine/materials"
	"landscape-engine/math"
	"landscape-engine/planar"
	"landscape-engine/scene"
)

// Kind is the host's category for an object.
type Kind string

const (
	KindPlant     Kind = "plant"
	KindStructure Kind = "structure"
	KindBarrier   Kind = "barrier"
	KindSurface   Kind = "surface"
)

// Descriptor is one placed object as described by the host.
type Descriptor struct {
	ID              string
	AssetID         string
	Kind            Kind
	Position        planar.Point
	RotationDegrees float32
	Color           *core.Color // optional override
	Scale           *math.Vec3  // optional multiplier, defaults to 1,1,1
}

// ScaleOrDefault returns the descriptor scale multiplier.
func (d Descriptor) ScaleOrDefault() math.Vec3 {
	if d.Scale == nil {
		return math.Vec3One
	}
	return *d.Scale
}

// AssetTable maps asset ids to model paths.
type AssetTable map[string]string

// Requester hands out asset instances. *assets.Cache implements it.
type Requester interface {
	Request(ctx context.Context, path string) (*assets.Instance, error)
}

type Options struct {
	Logger *zap.Logger
	// Releaser frees GPU buffers of removed nodes. Optional.
	Releaser scene.Releaser
}

// Result summarizes one reconciliation pass.
type Result struct {
	Removed   []string // live ids no longer listed
	Replaced  []string // live ids whose asset changed; a new load was requested
	Updated   []string // live ids updated in place
	Requested []string // ids whose asset load was started
	Skipped   []string // ids with an unknown asset id
}

type entry struct {
	desc  Descriptor
	inst  *assets.Instance
	scale math.Vec3 // multiplier currently applied on top of BaseScale
}

type completion struct {
	id   string
	gen  uint64
	path string
	inst *assets.Instance
	err  error
}

// Registry owns every scene node created for a host object. It is not safe
// for concurrent use; loads run on their own goroutines but only touch the
// registry through ApplyLoads and WaitLoads.
type Registry struct {
	scene    *scene.Scene
	cache    Requester
	mapper   planar.Mapper
	table    AssetTable
	log      *zap.Logger
	releaser scene.Releaser

	ctx    context.Context
	cancel context.CancelFunc

	entries     map[string]*entry
	current     map[string]Descriptor
	pending     map[string]uint64 // id → generation of the load in flight
	generations map[string]uint64
	outstanding int
	done        chan completion

	// asset id each pending load was started for
	requestedAsset map[string]string
}

// New creates a registry placing objects in s.
func New(s *scene.Scene, cache Requester, mapper planar.Mapper, table AssetTable, opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		scene:          s,
		cache:          cache,
		mapper:         mapper,
		table:          table,
		log:            opts.Logger.Named("registry"),
		releaser:       opts.Releaser,
		ctx:            ctx,
		cancel:         cancel,
		entries:        make(map[string]*entry),
		current:        make(map[string]Descriptor),
		pending:        make(map[string]uint64),
		generations:    make(map[string]uint64),
		done:           make(chan completion, 64),
		requestedAsset: make(map[string]string),
	}
}

// Reconcile brings the scene in line with descs. Nodes for ids no longer
// listed are removed, live nodes are updated in place and loads are started
// for ids that are neither live nor pending. Load completions are applied by
// ApplyLoads or WaitLoads. ctx bounds the loads started by this pass.
func (r *Registry) Reconcile(ctx context.Context, descs []Descriptor) Result {
	var res Result

	next := make(map[string]Descriptor, len(descs))
	order := make([]string, 0, len(descs))
	for _, d := range descs {
		if _, dup := next[d.ID]; dup {
			r.log.Warn("duplicate object id, last descriptor wins", zap.String("id", d.ID))
		} else {
			order = append(order, d.ID)
		}
		next[d.ID] = d
	}
	r.current = next

	// removals
	for _, id := range r.IDs() {
		if _, ok := next[id]; !ok {
			r.remove(id)
			res.Removed = append(res.Removed, id)
		}
	}
	for id := range r.pending {
		if _, ok := next[id]; !ok {
			delete(r.pending, id)
			delete(r.requestedAsset, id)
		}
	}

	for _, id := range order {
		d := next[id]

		if e, live := r.entries[id]; live {
			if e.desc.AssetID == d.AssetID {
				r.update(e, d)
				res.Updated = append(res.Updated, id)
				continue
			}
			r.remove(id)
			res.Replaced = append(res.Replaced, id)
		}

		if gen, pending := r.pending[id]; pending {
			if r.pendingAsset(id) == d.AssetID {
				continue
			}
			// asset changed while loading: the old result is stale
			r.log.Debug("asset changed while loading", zap.String("id", id), zap.Uint64("generation", gen))
			delete(r.pending, id)
			delete(r.requestedAsset, id)
		}

		path, ok := r.table[d.AssetID]
		if !ok {
			r.log.Warn("unknown asset id, object skipped",
				zap.String("id", id), zap.String("asset", d.AssetID))
			res.Skipped = append(res.Skipped, id)
			continue
		}
		r.request(ctx, d, path)
		res.Requested = append(res.Requested, id)
	}
	return res
}

// pendingAsset is the asset id the in-flight load for id was started for.
func (r *Registry) pendingAsset(id string) string {
	return r.requestedAsset[id]
}

func (r *Registry) request(ctx context.Context, d Descriptor, path string) {
	r.generations[d.ID]++
	gen := r.generations[d.ID]
	r.pending[d.ID] = gen
	r.requestedAsset[d.ID] = d.AssetID
	r.outstanding++

	loadCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(r.ctx, cancel)

	go func() {
		defer cancel()
		defer stop()
		inst, err := r.cache.Request(loadCtx, path)
		c := completion{id: d.ID, gen: gen, path: path, inst: inst, err: err}
		select {
		case r.done <- c:
		case <-r.ctx.Done():
			if inst != nil {
				inst.Node.Dispose(r.releaser)
			}
		}
	}()
}

// ApplyLoads attaches every load that has completed so far without
// blocking and returns the ids attached.
func (r *Registry) ApplyLoads() []string {
	var attached []string
	for {
		select {
		case c := <-r.done:
			if r.apply(c) {
				attached = append(attached, c.id)
			}
		default:
			return attached
		}
	}
}

// WaitLoads blocks until every started load has completed and been applied
// or discarded, or ctx is done.
func (r *Registry) WaitLoads(ctx context.Context) ([]string, error) {
	var attached []string
	for r.outstanding > 0 {
		select {
		case c := <-r.done:
			if r.apply(c) {
				attached = append(attached, c.id)
			}
		case <-ctx.Done():
			return attached, ctx.Err()
		}
	}
	return attached, nil
}

// apply re-validates a completion and attaches its node. It reports
// whether a node was attached.
func (r *Registry) apply(c completion) bool {
	r.outstanding--

	gen, pending := r.pending[c.id]
	if !pending || gen != c.gen {
		r.discard(c, "superseded")
		return false
	}
	delete(r.pending, c.id)
	delete(r.requestedAsset, c.id)

	if c.err != nil {
		r.log.Error("object load failed",
			zap.String("id", c.id), zap.String("path", c.path), zap.Error(c.err))
		return false
	}

	d, listed := r.current[c.id]
	if _, live := r.entries[c.id]; !listed || live {
		r.discard(c, "no longer wanted")
		return false
	}

	e := &entry{desc: d, inst: c.inst, scale: d.ScaleOrDefault()}
	node := c.inst.Node
	node.Name = d.ID
	r.place(node, d)
	node.SetScale(e.scale.Mul(c.inst.BaseScale))
	if d.Color != nil {
		materials.ApplyColor(node, *d.Color)
	} else {
		materials.RestoreOriginal(node, c.inst.Prototype)
	}

	r.entries[c.id] = e
	r.scene.AddNode(node)
	r.log.Debug("object attached", zap.String("id", c.id), zap.String("path", c.path))
	return true
}

func (r *Registry) discard(c completion, reason string) {
	r.log.Debug("discarding stale load",
		zap.String("id", c.id), zap.Uint64("generation", c.gen), zap.String("reason", reason))
	if c.inst != nil {
		c.inst.Node.Dispose(r.releaser)
	}
}

func (r *Registry) update(e *entry, d Descriptor) {
	node := e.inst.Node
	r.place(node, d)

	switch {
	case d.Color != nil:
		materials.ApplyColor(node, *d.Color)
	case e.desc.Color != nil:
		materials.RestoreOriginal(node, e.inst.Prototype)
	}

	if s := d.ScaleOrDefault(); s != e.scale {
		e.scale = s
		node.SetScale(s.Mul(e.inst.BaseScale))
	}
	e.desc = d
}

func (r *Registry) place(node *scene.Node, d Descriptor) {
	g := r.mapper.ToWorld(d.Position)
	node.SetPosition(math.Vec3{X: float32(g.X), Z: float32(g.Z)})
	node.SetRotation(math.QuaternionFromYaw(d.RotationDegrees))
}

func (r *Registry) remove(id string) {
	e, ok := r.entries[id]
	if !ok {
		return
	}
	e.inst.Node.Dispose(r.releaser)
	delete(r.entries, id)
	delete(r.pending, id)
	delete(r.requestedAsset, id)
	r.log.Debug("object removed", zap.String("id", id))
}

// Node returns the live scene node for id.
func (r *Registry) Node(id string) (*scene.Node, bool) {
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.inst.Node, true
}

// IDOf returns the id owning n or one of its ancestors.
func (r *Registry) IDOf(n *scene.Node) (string, bool) {
	for ; n != nil; n = n.Parent {
		if e, ok := r.entries[n.Name]; ok && e.inst.Node == n {
			return n.Name, true
		}
	}
	return "", false
}

// IDs returns the live ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Len() int { return len(r.entries) }

// Pending reports whether a load for id is in flight.
func (r *Registry) Pending(id string) bool {
	_, ok := r.pending[id]
	return ok
}

func (r *Registry) PendingCount() int { return len(r.pending) }

// Descriptor returns the descriptor last applied to a live id.
func (r *Registry) Descriptor(id string) (Descriptor, bool) {
	e, ok := r.entries[id]
	if !ok {
		return Descriptor{}, false
	}
	return e.desc, true
}

// Prototype returns the prototype a live id was cloned from.
func (r *Registry) Prototype(id string) (*assets.Prototype, bool) {
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.inst.Prototype, true
}

// Bounds returns the world-space bounding box of a live id.
func (r *Registry) Bounds(id string) (scene.AABB, bool) {
	e, ok := r.entries[id]
	if !ok {
		return scene.AABB{}, false
	}
	return scene.WorldBounds(e.inst.Node)
}

// Scale returns the scale multiplier applied to a live id.
func (r *Registry) Scale(id string) (math.Vec3, bool) {
	e, ok := r.entries[id]
	if !ok {
		return math.Vec3{}, false
	}
	return e.scale, true
}

// SetPlanarPosition moves a live object, keeping its descriptor in step.
func (r *Registry) SetPlanarPosition(id string, p planar.Point) bool {
	e, ok := r.entries[id]
	if !ok {
		return false
	}
	e.desc.Position = p
	r.place(e.inst.Node, e.desc)
	return true
}

// SetScale sets the scale multiplier of a live object.
func (r *Registry) SetScale(id string, s math.Vec3) bool {
	e, ok := r.entries[id]
	if !ok {
		return false
	}
	e.scale = s
	e.desc.Scale = &s
	e.inst.Node.SetScale(s.Mul(e.inst.BaseScale))
	return true
}

// Each calls fn for every live object in id order.
func (r *Registry) Each(fn func(id string, n *scene.Node)) {
	for _, id := range r.IDs() {
		fn(id, r.entries[id].inst.Node)
	}
}

// Dispose removes every node and abandons loads in flight. The registry
// must not be used afterwards.
func (r *Registry) Dispose() {
	r.cancel()
	for id := range r.entries {
		r.remove(id)
	}
	r.current = make(map[string]Descriptor)
	r.pending = make(map[string]uint64)
	r.requestedAsset = make(map[string]string)
	r.outstanding = 0
}
