package statechart

import (
	"path"

	"github.com/ziqian9206/statechart/kind"
)

// ancestors returns qualifiedName's ancestor chain from the root down to
// (and including) qualifiedName itself, alternating State/Region/State/
// Region/.../Vertex per spec §4.2.
func ancestors(qualifiedName string) []string {
	var chain []string
	cur := qualifiedName
	for {
		chain = append(chain, cur)
		if cur == "/" {
			break
		}
		cur = path.Dir(cur)
	}
	out := make([]string, len(chain))
	for i, v := range chain {
		out[len(chain)-1-i] = v
	}
	return out
}

// isAncestor reports whether a is a proper ancestor of b.
func isAncestor(a, b string) bool {
	a, b = path.Clean(a), path.Clean(b)
	if a == b {
		return false
	}
	if a == "/" {
		return true
	}
	cur := path.Dir(b)
	for {
		if cur == a {
			return true
		}
		if cur == "/" {
			return false
		}
		cur = path.Dir(cur)
	}
}

// classify implements spec §4.2's derived transition classification. A
// self-transition (source == target) is treated as external, the
// conventional UML reading of "exit and re-enter the same state".
func classify(source, target string) uint64 {
	if target == "" {
		return kind.Internal
	}
	if source == target {
		return kind.External
	}
	if isAncestor(source, target) || isAncestor(target, source) {
		return kind.Local
	}
	return kind.External
}

func (m *Model) isStateKind(qualifiedName string) bool {
	el, ok := m.namespace[qualifiedName]
	return ok && kind.Is(el.Kind(), kind.State)
}

func (m *Model) isRegionKind(qualifiedName string) bool {
	el, ok := m.namespace[qualifiedName]
	return ok && kind.Is(el.Kind(), kind.Region)
}

// parentState climbs from qualifiedName to the nearest enclosing State,
// skipping intermediate Region segments.
func (m *Model) parentState(qualifiedName string) string {
	cur := path.Dir(qualifiedName)
	for {
		if m.isStateKind(cur) {
			return cur
		}
		if cur == "/" {
			return ""
		}
		cur = path.Dir(cur)
	}
}

// lowestCommonAncestor returns the deepest element common to both a's and
// b's ancestor chains — a Region when a and b are two vertices of the
// same region, or the enclosing State itself when they sit in different
// regions of one orthogonal state. boundaryChild below finds the actual
// vertex to exit or enter on each side.
func (m *Model) lowestCommonAncestor(a, b string) string {
	ca, cb := ancestors(a), ancestors(b)
	common := "/"
	for i := 0; i < len(ca) && i < len(cb); i++ {
		if ca[i] != cb[i] {
			break
		}
		common = ca[i]
	}
	return common
}

// boundaryChild returns the nearest Vertex-kind descendant of common that
// lies on the path to x (common itself may be a Region, in which case its
// direct child vertex is returned, or a State, in which case its child
// region is skipped over to reach that region's vertex). It is this
// vertex, not common, that external transitions actually exit or enter.
func (m *Model) boundaryChild(common, x string) string {
	chain := ancestors(x)
	idx := -1
	for i, seg := range chain {
		if seg == common {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ""
	}
	for i := idx + 1; i < len(chain); i++ {
		if !m.isRegionKind(chain[i]) {
			return chain[i]
		}
	}
	return ""
}
