package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"landscape-engine/core"
	"landscape-engine/editor"
	lio "landscape-engine/io"
	"landscape-engine/planar"
)

// layoutSync owns the layout file: it reloads it when it changes on disk and
// writes object edits made in the planner back to it. Edits not yet written
// survive a reload and are laid over the fresh file.
type layoutSync struct {
	path    string
	layout  *lio.LayoutFile
	pending map[string]*objectEdit
	log     *zap.Logger

	watcher *fsnotify.Watcher
	changed chan struct{}
}

func newLayoutSync(path string, log *zap.Logger) (*layoutSync, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	ls := &layoutSync{
		path:    abs,
		pending: make(map[string]*objectEdit),
		log:     log.Named("layout"),
		changed: make(chan struct{}, 1),
	}
	if err := ls.read(); err != nil {
		return nil, err
	}
	return ls, nil
}

// objectEdit is the part of an object the planner changed since the last
// save.
type objectEdit struct {
	position *planar.Point
	scale    [3]*float32
}

func (ed *objectEdit) applyTo(obj *lio.ObjectData) {
	if ed.position != nil {
		obj.Position = *ed.position
	}
	if ed.scale == [3]*float32{} {
		return
	}
	s := [3]float32{1, 1, 1}
	if obj.Scale != nil {
		s = *obj.Scale
	}
	for i, v := range ed.scale {
		if v != nil {
			s[i] = *v
		}
	}
	obj.Scale = &s
}

// read loads the file, starting from an empty layout when it does not exist.
// Pending edits are reapplied to objects that are still present.
func (ls *layoutSync) read() error {
	layout, err := lio.LoadLayout(ls.path)
	if errors.Is(err, os.ErrNotExist) {
		ls.log.Info("layout file not found, starting empty", zap.String("path", ls.path))
		layout = lio.NewLayout(filepath.Base(ls.path))
	} else if err != nil {
		return err
	}
	for id, ed := range ls.pending {
		obj, ok := layout.Object(id)
		if !ok {
			ls.log.Debug("dropping edit of removed object", zap.String("id", id))
			delete(ls.pending, id)
			continue
		}
		ed.applyTo(obj)
	}
	ls.layout = layout
	return nil
}

// watch starts notifying on ls.changed whenever the layout file is written,
// created or renamed into place. The directory is watched so that editors
// that save by replacing the file are seen too.
func (ls *layoutSync) watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("layout watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(ls.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch %q: %w", filepath.Dir(ls.path), err)
	}
	ls.watcher = w

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != ls.path {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					select {
					case ls.changed <- struct{}{}:
					default:
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				ls.log.Warn("layout watcher", zap.Error(err))
			}
		}
	}()
	return nil
}

// apply pushes the layout's settings and objects into the engine. Settings
// the layout leaves empty fall back to base.
func (ls *layoutSync) apply(ctx context.Context, e *editor.Engine, base editor.Settings) error {
	settings := base
	sd := ls.layout.Settings
	if sd.Background != "" {
		c, err := core.ParseHexColor(sd.Background)
		if err != nil {
			return fmt.Errorf("layout background: %w", err)
		}
		settings.Background = c
	}
	if sd.Ground != "" {
		settings.Ground = editor.GroundType(sd.Ground)
	}
	if sd.ShowGrid != nil {
		settings.ShowGrid = *sd.ShowGrid
	}
	if err := e.SetSettings(settings); err != nil {
		return err
	}

	descs, err := ls.layout.Descriptors()
	if err != nil {
		return err
	}
	res := e.SetObjects(ctx, descs)
	ls.log.Info("layout applied",
		zap.String("name", ls.layout.Name),
		zap.Int("objects", len(descs)),
		zap.Strings("skipped", res.Skipped))
	return nil
}

// record folds an edit event into the in-memory layout.
func (ls *layoutSync) record(ev editor.Event) {
	up, ok := ev.(editor.ObjectUpdated)
	if !ok {
		return
	}
	obj, ok := ls.layout.Object(up.ID)
	if !ok {
		return
	}
	ed, ok := ls.pending[up.ID]
	if !ok {
		ed = &objectEdit{}
		ls.pending[up.ID] = ed
	}
	if p := up.Changes.Position; p != nil {
		pos := *p
		ed.position = &pos
	}
	for i, v := range []*float32{up.Changes.ScaleX, up.Changes.ScaleY, up.Changes.ScaleZ} {
		if v != nil {
			c := *v
			ed.scale[i] = &c
		}
	}
	ed.applyTo(obj)
}

// dirty reports whether edits are waiting to be written.
func (ls *layoutSync) dirty() bool { return len(ls.pending) > 0 }

// flush writes pending edits to disk.
func (ls *layoutSync) flush() error {
	if !ls.dirty() {
		return nil
	}
	if err := lio.SaveLayout(ls.path, ls.layout); err != nil {
		return err
	}
	clear(ls.pending)
	ls.log.Debug("layout saved", zap.String("path", ls.path))
	return nil
}

func (ls *layoutSync) close() {
	if ls.watcher != nil {
		ls.watcher.Close()
	}
}
