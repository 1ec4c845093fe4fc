package statechart

import (
	"path"
	"strings"
)

// Separator is used by String() to join a qualified name's path segments.
// It is a package-level variable, not a per-model option, matching the
// single global the teacher repository exposes for diagram/log rendering;
// hosts that need several separators concurrently should call
// strings.ReplaceAll on the raw qualifiedName themselves.
var Separator = "."

// element is the common base embedded by every model node. Ancestry is
// encoded directly in qualifiedName (a "/"-joined path from the root),
// the same arena-by-path technique the teacher repository uses instead of
// parent pointers — see SPEC_FULL.md §9.
type element struct {
	kind          uint64
	qualifiedName string
	id            string
	metadata      map[string]any
}

func (e *element) Kind() uint64 {
	if e == nil {
		return 0
	}
	return e.kind
}

func (e *element) Id() string {
	if e == nil {
		return ""
	}
	return e.id
}

// Owner returns the qualified name of the element's parent in the tree.
func (e *element) Owner() string {
	if e == nil {
		return ""
	}
	return path.Dir(e.qualifiedName)
}

func (e *element) Name() string {
	if e == nil {
		return ""
	}
	return path.Base(e.qualifiedName)
}

func (e *element) QualifiedName() string {
	if e == nil {
		return ""
	}
	return e.qualifiedName
}

func (e *element) Metadata() map[string]any {
	if e == nil {
		return nil
	}
	return e.metadata
}

// String renders the qualified name with ancestor segments joined by
// Separator, per spec §6.
func (e *element) String() string {
	if e == nil {
		return ""
	}
	trimmed := strings.TrimPrefix(e.qualifiedName, "/")
	if trimmed == "" {
		return "/"
	}
	return strings.ReplaceAll(trimmed, "/", Separator)
}
