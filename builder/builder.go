package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jt05610/cpn/petrifile"
)

var (
	ErrNoService       = errors.New("no petrifile service for file")
	ErrUnknownVersion  = errors.New("unknown petrifile version")
	ErrIncludeCycle    = errors.New("include cycle")
	ErrFileNotInSearch = errors.New("file not found in search dirs")
)

// Builder loads petrifiles from a list of search directories and resolves
// their includes.
type Builder struct {
	SearchDirs []string
	seen       map[string]*petrifile.Definition
	services   map[string]map[petrifile.Version]petrifile.Service
}

func NewBuilder(services map[string]map[petrifile.Version]petrifile.Service, dirs ...string) *Builder {
	if dirs == nil {
		dirs = []string{"."}
	}
	if services == nil {
		services = make(map[string]map[petrifile.Version]petrifile.Service)
	}
	return &Builder{
		SearchDirs: dirs,
		seen:       make(map[string]*petrifile.Definition),
		services:   services,
	}
}

// WithService registers srv for files with extension ext, given without the
// leading dot.
func (b *Builder) WithService(ext string, srv petrifile.Service) *Builder {
	if b.services == nil {
		b.services = make(map[string]map[petrifile.Version]petrifile.Service)
	}
	if _, ok := b.services[ext]; !ok {
		b.services[ext] = make(map[petrifile.Version]petrifile.Service)
	}
	b.services[ext][srv.Version()] = srv
	return b
}

func (b *Builder) WithSearchDirs(dirs ...string) *Builder {
	b.SearchDirs = append(b.SearchDirs, dirs...)
	return b
}

func (b *Builder) find(f string) (string, error) {
	if filepath.IsAbs(f) {
		if _, err := os.Stat(f); err != nil {
			return "", err
		}
		return f, nil
	}
	for _, dir := range b.SearchDirs {
		path := filepath.Join(dir, f)
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", err
		}
		if !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrFileNotInSearch, f)
}

func (b *Builder) service(path string) (petrifile.Service, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" || ext == "yml" {
		ext = "yaml"
	}
	versions, ok := b.services[ext]
	if !ok || len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoService, path)
	}
	ver := petrifile.Unknown
	for _, srv := range versions {
		v, err := srv.FileVersion(path)
		if err != nil {
			return nil, err
		}
		if v != petrifile.Unknown {
			ver = v
			break
		}
	}
	srv, ok := versions[ver]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrUnknownVersion, ver, path)
	}
	return srv, nil
}

func (b *Builder) load(ctx context.Context, f string, stack map[string]bool) (*petrifile.Definition, error) {
	path, err := b.find(f)
	if err != nil {
		return nil, err
	}
	if d, ok := b.seen[path]; ok {
		return d, nil
	}
	if stack[path] {
		return nil, fmt.Errorf("%w: %s", ErrIncludeCycle, path)
	}
	stack[path] = true
	defer delete(stack, path)

	srv, err := b.service(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()
	d, err := srv.Load(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defs := []*petrifile.Definition{d}
	for _, inc := range d.Includes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sub, err := b.load(ctx, inc, stack)
		if err != nil {
			return nil, fmt.Errorf("%s includes %s: %w", path, inc, err)
		}
		defs = append(defs, sub)
	}
	merged, err := petrifile.Merge(defs...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	b.seen[path] = merged
	return merged, nil
}

// Build loads f and everything it includes into a single definition. Files
// are loaded once per Builder.
func (b *Builder) Build(ctx context.Context, f string) (*petrifile.Definition, error) {
	return b.load(ctx, f, make(map[string]bool))
}
