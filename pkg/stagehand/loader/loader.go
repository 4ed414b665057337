// Package loader is a reference resource loader that reads view templates
// from TOML blueprint files.
//
// A blueprint describes a node tree:
//
//	name = "shop"
//	bounds = { x = 0, y = 0, w = 640, h = 480 }
//
//	[[children]]
//	name = "title"
//	bounds = { x = 20, y = 20, w = 600, h = 40 }
//	props = { text = "Shop" }
//
// Each Load takes one reference on the path; Release gives it back. When the
// last reference goes away the parsed blueprint is dropped.
package loader

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/BurntSushi/toml"
	"golang.org/x/sync/singleflight"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/internal"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/scene"
)

// Bounds is a blueprint rect.
type Bounds struct {
	X int32 `toml:"x"`
	Y int32 `toml:"y"`
	W int32 `toml:"w"`
	H int32 `toml:"h"`
}

// Blueprint is one node of a template file.
type Blueprint struct {
	Name     string         `toml:"name"`
	Bounds   Bounds         `toml:"bounds"`
	Props    map[string]any `toml:"props"`
	Children []Blueprint    `toml:"children"`
}

// Template is a parsed blueprint file.
type Template struct {
	Path string
	Root Blueprint
}

// Instantiate builds a fresh node tree from the blueprint. Props are stored
// as the node payload.
func (t *Template) Instantiate() (*scene.Node, error) {
	return build(t.Root), nil
}

func build(bp Blueprint) *scene.Node {
	n := scene.New(bp.Name)
	n.Bounds = scene.Rect{X: bp.Bounds.X, Y: bp.Bounds.Y, W: bp.Bounds.W, H: bp.Bounds.H}
	if len(bp.Props) > 0 {
		props := make(map[string]any, len(bp.Props))
		for k, v := range bp.Props {
			props[k] = v
		}
		n.Payload = props
	}
	for _, c := range bp.Children {
		n.AddChild(build(c))
	}
	return n
}

// FileLoader loads blueprints from a file system. It is safe for concurrent
// use; concurrent loads of one path parse the file once.
type FileLoader struct {
	fsys   fs.FS
	logger *slog.Logger

	mu        sync.Mutex
	templates map[string]*Template
	refs      map[string]int
	parses    singleflight.Group
}

// New creates a FileLoader reading from fsys.
func New(fsys fs.FS) *FileLoader {
	return &FileLoader{
		fsys:      fsys,
		logger:    internal.GetLogger(),
		templates: make(map[string]*Template),
		refs:      make(map[string]int),
	}
}

// WithLogger sets the logger used for warnings.
func (l *FileLoader) WithLogger(logger *slog.Logger) *FileLoader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

var _ stagehand.Loader = (*FileLoader)(nil)

// Load returns the template at path and takes a reference on it.
func (l *FileLoader) Load(ctx context.Context, path string) (stagehand.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	t, ok := l.templates[path]
	if ok {
		l.refs[path]++
		l.mu.Unlock()
		return t, nil
	}
	l.mu.Unlock()

	v, err, _ := l.parses.Do(path, func() (any, error) {
		return l.parse(path)
	})
	if err != nil {
		return nil, err
	}
	parsed := v.(*Template)

	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.templates[path]; ok {
		l.refs[path]++
		return t, nil
	}
	l.templates[path] = parsed
	l.refs[path] = 1
	return parsed, nil
}

func (l *FileLoader) parse(path string) (*Template, error) {
	data, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}

	var bp Blueprint
	if _, err := toml.Decode(string(data), &bp); err != nil {
		return nil, fmt.Errorf("loader: parse %s: %w", path, err)
	}
	if bp.Name == "" {
		bp.Name = path
	}
	return &Template{Path: path, Root: bp}, nil
}

// Release gives back one reference, or all of them when force is set.
// Releasing a path with no references is logged and ignored.
func (l *FileLoader) Release(path string, force bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.refs[path]
	if n == 0 {
		l.logger.Warn("Release of a template with no references", "path", path)
		return
	}
	if force {
		n = 0
	} else {
		n--
	}

	if n > 0 {
		l.refs[path] = n
		return
	}
	delete(l.refs, path)
	delete(l.templates, path)
	l.logger.Debug("Template unloaded", "path", path)
}

// Refs returns the number of outstanding references on path.
func (l *FileLoader) Refs(path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refs[path]
}
