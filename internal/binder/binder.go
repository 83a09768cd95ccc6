// Package binder resolves the destination collection for each (site, record
// kind) pair. Bindings are declared as JSON descriptors in a configuration
// directory, scanned once at startup into a registry; a pair without a
// descriptor is unavailable, not an error, so a site configured with only a
// subset of kinds is processed partially.
package binder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/gestmag"
)

// Binding is the resolved destination for one (site, kind) pair.
type Binding struct {
	Site       string
	Kind       gestmag.Kind
	Collection string
}

// descriptor is the on-disk JSON shape, e.g. AVB_article.json:
//
//	{"collection": "avb_articles"}
type descriptor struct {
	Collection string `json:"collection"`
}

// Registry holds every binding found at startup.
type Registry struct {
	bindings map[string]Binding
	sites    []string
}

// WarnFunc receives non-fatal scan problems (malformed descriptors). The
// affected pair is treated as unbound.
type WarnFunc func(format string, args ...any)

// Load scans dir once for descriptors named <SITE>_<kind>.json. Files that
// do not match the convention, do not parse, or name an unknown kind are
// reported through warn and skipped. Only a missing or unreadable directory
// is an error.
func Load(dir string, warn WarnFunc) (*Registry, error) {
	if warn == nil {
		warn = func(string, ...any) {}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("binder: read bindings dir %s: %w", dir, err)
	}

	reg := &Registry{bindings: make(map[string]Binding)}
	seen := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		base := strings.TrimSuffix(entry.Name(), ".json")
		site, kindName, ok := strings.Cut(base, "_")
		if !ok || site == "" {
			warn("binding %s: name does not match <SITE>_<kind>.json", entry.Name())
			continue
		}
		kind := gestmag.Kind(kindName)
		if !kind.Valid() {
			warn("binding %s: unknown record kind %q", entry.Name(), kindName)
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			warn("binding %s: %v", entry.Name(), err)
			continue
		}
		var desc descriptor
		if err := json.Unmarshal(data, &desc); err != nil {
			warn("binding %s: %v", entry.Name(), err)
			continue
		}
		if desc.Collection == "" {
			warn("binding %s: missing collection name", entry.Name())
			continue
		}

		reg.bindings[key(site, kind)] = Binding{Site: site, Kind: kind, Collection: desc.Collection}
		if _, dup := seen[site]; !dup {
			seen[site] = struct{}{}
			reg.sites = append(reg.sites, site)
		}
	}

	sort.Strings(reg.sites)
	return reg, nil
}

// Resolve returns the binding for (site, kind). ok is false when the pair
// has no descriptor.
func (r *Registry) Resolve(site string, kind gestmag.Kind) (Binding, bool) {
	b, ok := r.bindings[key(site, kind)]
	return b, ok
}

// Sites returns every site with at least one binding, sorted. This is the
// fixed site order of a run.
func (r *Registry) Sites() []string {
	out := make([]string, len(r.sites))
	copy(out, r.sites)
	return out
}

// Len returns the number of bindings in the registry.
func (r *Registry) Len() int { return len(r.bindings) }

func key(site string, kind gestmag.Kind) string {
	return site + "\x00" + string(kind)
}
