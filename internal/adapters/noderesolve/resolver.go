// Package noderesolve resolves module requests with the CommonJS lookup
// rules, rooted at an arbitrary directory.
package noderesolve

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/corejs-upgrade/internal/core/domain"
	"go.trai.ch/corejs-upgrade/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultCacheSize is the number of resolutions kept in memory.
const DefaultCacheSize = 4096

// Extensions are tried in order when a request does not name a file exactly.
var Extensions = []string{".js", ".json", ".cjs", ".mjs"}

// Resolver implements the node_modules lookup algorithm.
type Resolver struct {
	fs    FileSystem
	cache *lru.Cache[uint64, string]
}

// NewResolver creates a Resolver reading from fsys and caching up to size results.
func NewResolver(fsys FileSystem, size int) (*Resolver, error) {
	cache, err := lru.New[uint64, string](size)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create resolution cache")
	}
	return &Resolver{fs: fsys, cache: cache}, nil
}

// ResolveFrom resolves request as if it were required from a file inside dir.
func (r *Resolver) ResolveFrom(dir, request string) (string, error) {
	key := cacheKey(dir, request)
	if p, ok := r.cache.Get(key); ok {
		return p, nil
	}

	p, err := r.resolve(dir, request)
	if err != nil {
		return "", err
	}
	r.cache.Add(key, p)
	return p, nil
}

// At returns a ModuleResolver that resolves every request from dir.
func (r *Resolver) At(dir string) ports.ModuleResolver {
	return &rooted{resolver: r, dir: dir}
}

// Len reports the number of cached resolutions.
func (r *Resolver) Len() int {
	return r.cache.Len()
}

func cacheKey(dir, request string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(dir)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(request)
	return d.Sum64()
}

func (r *Resolver) resolve(dir, request string) (string, error) {
	if request == "" {
		return "", notFound(dir, request)
	}

	if isPathRequest(request) {
		target := request
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, request)
		}
		p, err := r.loadFileOrDir(target)
		if err != nil {
			return "", err
		}
		if p != "" {
			return p, nil
		}
		return "", notFound(dir, request)
	}

	for _, modules := range nodeModulesPaths(dir) {
		p, err := r.loadFileOrDir(filepath.Join(modules, filepath.FromSlash(request)))
		if err != nil {
			return "", err
		}
		if p != "" {
			return p, nil
		}
	}
	return "", notFound(dir, request)
}

func notFound(dir, request string) error {
	return zerr.With(zerr.With(domain.ErrModuleNotFound, "request", request), "from", dir)
}

func isPathRequest(request string) bool {
	return request == "." || request == ".." ||
		strings.HasPrefix(request, "./") ||
		strings.HasPrefix(request, "../") ||
		strings.HasPrefix(request, "/")
}

// nodeModulesPaths lists the node_modules directories searched from dir,
// nearest first.
func nodeModulesPaths(dir string) []string {
	dir = filepath.Clean(dir)
	var paths []string
	for {
		if filepath.Base(dir) != "node_modules" {
			paths = append(paths, filepath.Join(dir, "node_modules"))
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return paths
		}
		dir = parent
	}
}

func (r *Resolver) loadFileOrDir(p string) (string, error) {
	if f := r.loadFile(p); f != "" {
		return f, nil
	}
	return r.loadDir(p)
}

func (r *Resolver) loadFile(p string) string {
	if r.isFile(p) {
		return p
	}
	for _, ext := range Extensions {
		if r.isFile(p + ext) {
			return p + ext
		}
	}
	return ""
}

func (r *Resolver) loadIndex(dir string) string {
	for _, ext := range Extensions {
		if p := filepath.Join(dir, "index"+ext); r.isFile(p) {
			return p
		}
	}
	return ""
}

type packageJSON struct {
	Main string `json:"main"`
}

func (r *Resolver) loadDir(dir string) (string, error) {
	manifest := filepath.Join(dir, "package.json")
	if r.isFile(manifest) {
		data, err := r.fs.ReadFile(manifest)
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, domain.ErrInvalidPackageJSON.Error()), "path", manifest)
		}
		var pkg packageJSON
		if err := json.Unmarshal(data, &pkg); err != nil {
			return "", zerr.With(zerr.Wrap(err, domain.ErrInvalidPackageJSON.Error()), "path", manifest)
		}
		if pkg.Main != "" {
			main := filepath.Join(dir, filepath.FromSlash(pkg.Main))
			if f := r.loadFile(main); f != "" {
				return f, nil
			}
			if f := r.loadIndex(main); f != "" {
				return f, nil
			}
		}
	}
	return r.loadIndex(dir), nil
}

func (r *Resolver) isFile(p string) bool {
	info, err := r.fs.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

type rooted struct {
	resolver *Resolver
	dir      string
}

// Resolve ignores the request's own directory and resolves from the root.
func (r *rooted) Resolve(_ context.Context, req domain.ResolveRequest) (string, error) {
	return r.resolver.ResolveFrom(r.dir, req.Path)
}
