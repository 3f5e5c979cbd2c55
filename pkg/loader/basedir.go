package loader

import (
	"context"
	"path/filepath"
)

type baseDirKey struct{}

// WithBaseDir records the directory relative factory paths resolve against.
func WithBaseDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, baseDirKey{}, dir)
}

// BaseDir returns the directory set by WithBaseDir, if any.
func BaseDir(ctx context.Context) string {
	dir, _ := ctx.Value(baseDirKey{}).(string)
	return dir
}

// ResolvePath joins a relative path onto the context base directory. Empty
// and absolute paths are returned unchanged.
func ResolvePath(ctx context.Context, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	dir := BaseDir(ctx)
	if dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
