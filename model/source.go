package model

import (
	"fmt"

	dap "github.com/google/go-dap"
)

// SourceKey is a Source's identity for caching purposes. DAP identifies a
// source either by filesystem path or, for sources the adapter synthesizes
// (disassembly, decompiled output), by the pair (adapter-assigned name,
// sourceReference) — a sourceReference is only meaningful in the context of
// the adapter session that minted it, never as a standalone handle.
type SourceKey struct {
	Path      string
	Name      string
	Reference int
}

// KeyFor derives a SourceKey from a dap.Source, per spec.md §3.4's source
// identity rule: prefer Path; fall back to (Name, SourceReference) when
// Path is empty.
func KeyFor(src dap.Source) (SourceKey, error) {
	if src.Path != "" {
		return SourceKey{Path: src.Path}, nil
	}
	if src.SourceReference != 0 {
		return SourceKey{Name: src.Name, Reference: src.SourceReference}, nil
	}
	return SourceKey{}, fmt.Errorf("model: source has neither path nor sourceReference")
}

// Sources caches the Source objects and fetched SourceContent the session
// has seen, keyed by SourceKey.
type Sources struct {
	sources map[SourceKey]dap.Source
	content map[SourceKey]SourceContent
}

// SourceContent is the body and optional mime type returned by a source
// request, cached so a later reference to the same source doesn't require
// re-fetching from the adapter.
type SourceContent struct {
	Content  string
	MimeType string
}

// NewSources returns an empty source cache.
func NewSources() *Sources {
	return &Sources{
		sources: make(map[SourceKey]dap.Source),
		content: make(map[SourceKey]SourceContent),
	}
}

// Observe records src under its derived key, overwriting any prior entry
// with the same identity (an adapter may resend a Source with more fields
// populated than before).
func (s *Sources) Observe(src dap.Source) (SourceKey, error) {
	key, err := KeyFor(src)
	if err != nil {
		return SourceKey{}, err
	}
	s.sources[key] = src
	return key, nil
}

// Get returns the cached Source for key.
func (s *Sources) Get(key SourceKey) (dap.Source, bool) {
	src, ok := s.sources[key]
	return src, ok
}

// SetContent caches fetched content for key.
func (s *Sources) SetContent(key SourceKey, content SourceContent) {
	s.content[key] = content
}

// Content returns previously cached content for key, if any.
func (s *Sources) Content(key SourceKey) (SourceContent, bool) {
	c, ok := s.content[key]
	return c, ok
}
