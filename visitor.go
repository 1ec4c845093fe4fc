package statechart

import (
	"sort"

	"github.com/ziqian9206/statechart/embedded"
	"github.com/ziqian9206/statechart/kind"
	"github.com/ziqian9206/statechart/pkg/set"
)

// Visitor is the generic traversal hook tooling (diagram export, model
// validators, static linters) uses to walk a built Model without reaching
// into its concrete types. Because every vertex kind is represented by the
// single tagged-variant vertex struct rather than a class hierarchy, the
// double dispatch spec §4.6 describes collapses to one kind switch inside
// Accept instead of a per-type accept/visit method pair — each Visit*
// method below is still offered its own entry point so a caller only has
// to implement the handful it cares about and can leave the rest as
// no-ops.
type Visitor interface {
	VisitStateMachine(m *Model) error
	VisitState(v embedded.State) error
	VisitFinalState(v embedded.State) error
	VisitPseudoState(v embedded.PseudoState) error
	VisitRegion(r embedded.Region) error
	VisitTransition(t embedded.Transition) error
}

// BaseVisitor is embeddable by callers who only want to override a couple
// of the Visit* methods; every method it provides is a no-op.
type BaseVisitor struct{}

func (BaseVisitor) VisitStateMachine(*Model) error             { return nil }
func (BaseVisitor) VisitState(embedded.State) error            { return nil }
func (BaseVisitor) VisitFinalState(embedded.State) error       { return nil }
func (BaseVisitor) VisitPseudoState(embedded.PseudoState) error { return nil }
func (BaseVisitor) VisitRegion(embedded.Region) error          { return nil }
func (BaseVisitor) VisitTransition(embedded.Transition) error  { return nil }

// Accept dispatches el to the Visit* method matching its kind. It never
// runs during Bootstrap or Evaluate — those operate on the concrete *vertex/
// *region/*transition types directly — and exists purely so external
// tooling can treat the model as a closed hierarchy of five element
// families without type-asserting its way through the namespace.
func Accept(v Visitor, el embedded.NamedElement) error {
	switch e := el.(type) {
	case *Model:
		return v.VisitStateMachine(e)
	case *region:
		return v.VisitRegion(e)
	case *transition:
		return v.VisitTransition(e)
	case *vertex:
		switch {
		case kind.Is(e.kind, kind.FinalState):
			return v.VisitFinalState(e)
		case kind.Is(e.kind, kind.PseudoState):
			return v.VisitPseudoState(e)
		default:
			return v.VisitState(e)
		}
	default:
		return nil
	}
}

// Walk visits model's root state machine first, then every other state,
// pseudostate, and region in sorted qualified-name order, then every
// transition in sorted qualified-name order, so a Visitor that accumulates
// output (a validator collecting errors, say) gets deterministic results
// across runs. Guards and behaviors are not offered to v. A set tracks which qualified
// names have already been offered to v, the same visited-node bookkeeping
// spec §2's ambient wiring calls for, so a model containing shared
// sub-elements (the model root itself, reachable both directly and as the
// owner of every top-level region) is never visited twice.
func Walk(v Visitor, model *Model) error {
	names := make([]string, 0, len(model.namespace))
	for qn := range model.namespace {
		names = append(names, qn)
	}
	sort.Strings(names)

	visited := set.New[string]()
	if err := Accept(v, model); err != nil {
		return err
	}
	visited.Add("/")

	for _, qn := range names {
		if visited.Contains(qn) {
			continue
		}
		el := model.namespace[qn]
		if _, isTransition := el.(*transition); isTransition {
			continue
		}
		if err := Accept(v, el); err != nil {
			return err
		}
		visited.Add(qn)
	}
	for _, qn := range names {
		el := model.namespace[qn]
		t, ok := el.(*transition)
		if !ok {
			continue
		}
		if err := Accept(v, t); err != nil {
			return err
		}
		visited.Add(qn)
	}
	return nil
}
