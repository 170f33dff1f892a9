// Package discovery locates initializer sources on disk.
package discovery

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/turtacn/hestia/pkg/consts"
	herrors "github.com/turtacn/hestia/pkg/errors"
	"github.com/turtacn/hestia/pkg/protocol"
)

// Input is everything discovery reads. Discover is a pure function of it and the
// filesystem.
type Input struct {
	BuiltinRoot  string
	ProjectPaths []string
	Plugins      map[string]protocol.Plugin
}

// Discover returns the deduplicated, ordered list of loadable source paths: built-in
// sources first, then project paths in the order given, then plugins by name.
func Discover(ctx context.Context, in Input) ([]string, error) {
	var found []string

	roots := make([]string, 0, 1+len(in.ProjectPaths))
	if in.BuiltinRoot != "" {
		roots = append(roots, in.BuiltinRoot)
	}
	roots = append(roots, in.ProjectPaths...)

	for _, root := range roots {
		matches, err := glob(ctx, root)
		if err != nil {
			return nil, err
		}
		found = append(found, matches...)
	}

	names := make([]string, 0, len(in.Plugins))
	for name := range in.Plugins {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := in.Plugins[name]
		if _, err := os.Stat(p.Path); err != nil {
			return nil, herrors.New(herrors.ErrCodePluginPathMissing, "discovery",
				"plugin path does not exist: "+p.Path, err)
		}
		for _, sub := range []string{consts.PluginLegacyDir, consts.PluginDistDir} {
			matches, err := glob(ctx, filepath.Join(p.Path, filepath.FromSlash(sub)))
			if err != nil {
				return nil, err
			}
			found = append(found, matches...)
		}
	}

	return dedupe(found), nil
}

// IsSource reports whether path names a loadable initializer source. Schema files
// only declare the shape of a manifest and are never loaded.
func IsSource(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(base, ".schema.yaml") || strings.HasSuffix(base, ".schema.yml") {
		return false
	}
	ext := filepath.Ext(base)
	return ext == ".yaml" || ext == ".yml"
}

// glob walks root recursively. A missing root contributes nothing.
func glob(ctx context.Context, root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, herrors.New(herrors.ErrCodeDiscoveryFailed, "discovery", "cannot stat "+root, err)
	}

	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !IsSource(path) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, herrors.New(herrors.ErrCodeDiscoveryFailed, "discovery", "cannot walk "+root, err)
	}
	return out, nil
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		key := filepath.Clean(p)
		if abs, err := filepath.Abs(key); err == nil {
			key = abs
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// Personal.AI order the ending
