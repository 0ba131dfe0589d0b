// Package sources defines the pluggable fetch abstraction for discovery and
// the concrete feed adapter. Adapters expose exactly two operations; the
// orchestrator never depends on adapter internals.
package sources

import (
	"context"
	"fmt"
	"sort"
)

// Source type identifiers. The scorer uses these to weight reliability.
const (
	TypeFeed      = "rss_feed"
	TypeGrantsAPI = "grants_gov_api"
	TypeWebScrape = "web_scrape"
)

// RawItem is one unprocessed listing as fetched from a source.
type RawItem struct {
	Title       string
	Link        string
	GUID        string
	Description string
	Published   string
	RawEntry    string
}

// Adapter fetches raw listings from one kind of external source. A fetch
// failure must not abort a run; the orchestrator records it and moves on.
type Adapter interface {
	FetchGrants(ctx context.Context) ([]RawItem, error)
	SourceType() string
}

// Registry holds the adapters available to the orchestrator, keyed by
// source type. It is built once at startup.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds a registry from the given adapters. A duplicate source
// type is a configuration error.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	reg := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, adapter := range adapters {
		key := adapter.SourceType()
		if _, exists := reg.adapters[key]; exists {
			return nil, fmt.Errorf("duplicate source adapter: %s", key)
		}
		reg.adapters[key] = adapter
	}
	return reg, nil
}

// Resolve returns the adapters for the requested source types, or every
// registered adapter when the request is empty. Unknown types are reported
// back so the caller can record them without failing the run, unless no
// adapter resolves at all.
func (r *Registry) Resolve(requested []string) (adapters []Adapter, unknown []string) {
	if len(requested) == 0 {
		for _, adapter := range r.adapters {
			adapters = append(adapters, adapter)
		}
		sort.Slice(adapters, func(i, j int) bool {
			return adapters[i].SourceType() < adapters[j].SourceType()
		})
		return adapters, nil
	}

	for _, name := range requested {
		adapter, ok := r.adapters[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		adapters = append(adapters, adapter)
	}
	return adapters, unknown
}

// Types lists the registered source types in stable order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.adapters))
	for key := range r.adapters {
		types = append(types, key)
	}
	sort.Strings(types)
	return types
}
