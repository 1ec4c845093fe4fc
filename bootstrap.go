package statechart

import (
	"fmt"
	"path"

	"github.com/ziqian9206/statechart/kind"
)

// Bootstrap compiles every transition's entry/exit plan and validates the
// structural invariants construction time couldn't check because they
// depend on the finished tree: every region with at least one vertex has
// exactly one initial/history pseudostate, and no source vertex carries
// more than one Else transition among its ordinary transitions, nor more
// than one among its OnCompletion transitions (the two are selected from
// independently, per spec §4.4/§4.5, so each gets its own fallback). It
// is idempotent — calling it again after a successful run recompiles the
// same plans and returns nil, per spec §8's bootstrap invariant.
func (m *Model) Bootstrap() error {
	elseBySource := map[string]string{}
	for qn, el := range m.namespace {
		switch e := el.(type) {
		case *region:
			if len(e.vertices) > 0 && e.initial == "" {
				return wellFormednessf("region %s has vertices but no Initial/ShallowHistory/DeepHistory pseudostate", qn)
			}
		case *transition:
			if e.elseGuard {
				key := e.source
				if e.completion {
					key = path.Join(e.source, "$completion")
				}
				if prev, ok := elseBySource[key]; ok {
					return wellFormednessf("%s has more than one Else transition (%s and %s)", e.source, prev, qn)
				}
				elseBySource[key] = qn
			}
			if e.target == "" {
				if src := m.namespace[e.source]; src != nil && kind.IsAny(src.Kind(), kind.Choice, kind.Junction) {
					return wellFormednessf("%s is an outbound transition of a Choice/Junction and must have a Target", qn)
				}
				e.compiled = nil
				continue
			}
			p, err := m.compilePlan(e)
			if err != nil {
				return err
			}
			e.compiled = p
		}
	}
	m.dirty = false
	return nil
}

// compilePlan derives a transition's exit/enter plan from the static
// shape of the tree alone, per spec §4.2/§4.3's classification rules:
//
//   - source == target: a self-transition always exits and re-enters the
//     source in full.
//   - source is an ancestor of target (or vice versa): local, the common
//     vertex — whichever of the two it is — is never exited.
//   - otherwise: external, exiting up to (and including) the direct
//     descendant of the lowest common ancestor on source's side, and
//     entering down from that ancestor to target. When source and target
//     sit in different regions of the same orthogonal state, the lowest
//     common ancestor is that state itself, and its other regions are
//     left untouched — they were never part of either side's path.
func (m *Model) compilePlan(t *transition) (*plan, error) {
	switch {
	case t.source == t.target:
		return &plan{
			exitBoundary:  t.source,
			exitInclusive: true,
			enter:         []enterStep{{vertex: t.source}},
		}, nil
	case isAncestor(t.source, t.target):
		return &plan{
			exitBoundary:  t.source,
			exitInclusive: false,
			enter:         m.buildEnterPath(t.source, t.target),
		}, nil
	case isAncestor(t.target, t.source):
		return &plan{
			exitBoundary:  t.target,
			exitInclusive: false,
			enter:         nil,
		}, nil
	default:
		common := m.lowestCommonAncestor(t.source, t.target)
		exitBoundary := m.boundaryChild(common, t.source)
		if exitBoundary == "" {
			return nil, wellFormednessf("transition %s: no exit boundary between %s and %s", t.qualifiedName, t.source, t.target)
		}
		return &plan{
			exitBoundary:  exitBoundary,
			exitInclusive: true,
			enter:         m.buildEnterPath(common, t.target),
		}, nil
	}
}

// buildEnterPath returns the ordered list of vertices to enter walking
// from just below boundary down to target. Region segments in between
// are folded into the preceding enterStep's throughRegion rather than
// becoming steps of their own, since entering a region means entering one
// of its vertices, never the region as a bare unit.
func (m *Model) buildEnterPath(boundary, target string) []enterStep {
	chain := ancestors(target)
	idx := -1
	for i, seg := range chain {
		if seg == boundary {
			idx = i
			break
		}
	}
	if idx == -1 {
		panic(fmt.Errorf("statechart: %s is not on the ancestor path of %s", boundary, target))
	}
	rest := chain[idx+1:]
	var steps []enterStep
	for i := 0; i < len(rest); i++ {
		if m.isRegionKind(rest[i]) {
			continue
		}
		step := enterStep{vertex: rest[i]}
		if i+1 < len(rest) && m.isRegionKind(rest[i+1]) {
			step.throughRegion = rest[i+1]
		}
		steps = append(steps, step)
	}
	return steps
}
