package config

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// PackageResolver maps logical package paths such as
// "@scope/pkg/client.js" to URLs a browser can import.
type PackageResolver struct {
	base    string
	aliases []alias
}

type alias struct {
	prefix string
	target string
}

// NewPackageResolver builds a resolver from the packages section.
func NewPackageResolver(pkgs Packages) *PackageResolver {
	base := strings.TrimSpace(pkgs.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	aliases := make([]alias, 0, len(pkgs.Aliases))
	for prefix, target := range pkgs.Aliases {
		aliases = append(aliases, alias{
			prefix: strings.TrimSuffix(strings.TrimSpace(prefix), "/"),
			target: strings.TrimSuffix(strings.TrimSpace(target), "/"),
		})
	}
	// longest prefix first
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i].prefix) != len(aliases[j].prefix) {
			return len(aliases[i].prefix) > len(aliases[j].prefix)
		}
		return aliases[i].prefix < aliases[j].prefix
	})

	return &PackageResolver{base: base, aliases: aliases}
}

// ResolvePackageURL passes absolute and root-relative URLs through, rewrites
// aliased prefixes, and serves everything else from the base URL.
func (r *PackageResolver) ResolvePackageURL(ctx context.Context, logicalPath string) (string, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
	path := strings.TrimSpace(logicalPath)
	if path == "" {
		return "", errors.New("config: package path is required")
	}
	if isAbsolute(path) {
		return path, nil
	}
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") {
		return "", fmt.Errorf("config: relative package path %q cannot be resolved", logicalPath)
	}

	for _, a := range r.aliases {
		if path == a.prefix || strings.HasPrefix(path, a.prefix+"/") {
			path = a.target + strings.TrimPrefix(path, a.prefix)
			break
		}
	}
	if isAbsolute(path) {
		return path, nil
	}
	return r.base + path, nil
}

func isAbsolute(path string) bool {
	return strings.HasPrefix(path, "/") || strings.Contains(path, "://")
}
