package statechart

import (
	"fmt"
	"path"

	"github.com/ziqian9206/statechart/embedded"
	"github.com/ziqian9206/statechart/kind"
)

// DefaultRegionName is the name given to the region a State gets for free
// the first time a vertex is attached directly to it, per spec §3's "a
// State with no explicit Region acquires one implicitly the first time a
// child is added".
const DefaultRegionName = "region"

const (
	initialName        = ".initial"
	shallowHistoryName = ".history"
	deepHistoryName    = ".deepHistory"
)

// RedefinableElement is one piece of a model under construction: a closure
// that, given the model and the lexical stack of enclosing elements it was
// declared inside, attaches itself and returns the element it built. Named
// after the equivalent type in the teacher repository this package is
// adapted from (corrected spelling); the two-phase Push/apply split lets a
// builder like Target reference a vertex that is declared later in the
// same Define call.
type RedefinableElement func(model *Model, stack []embedded.NamedElement) embedded.Element

// Model is a state machine definition under construction. Its embedded
// vertex is the implicit root StateMachine: every top-level State, Region,
// and PseudoState passed to Define hangs off it. Model is not safe for
// concurrent use; build it once, then call Bootstrap and share the result
// read-only across goroutines evaluating different Instances.
type Model struct {
	vertex
	namespace map[string]embedded.NamedElement
	deferred  []RedefinableElement
}

// Define starts (or continues) building a Model. The first argument may be
// the machine's name, in which case parts are all builder elements; or it
// may itself be a builder element, in which case the machine is named "/"
// and every argument is applied directly. Model.Push adds further elements
// to an existing Model, mirroring the teacher repository's fluent
// Define/Part split.
func Define(nameOrElement any, parts ...RedefinableElement) *Model {
	m := &Model{
		vertex:    vertex{element: element{kind: kind.StateMachine, qualifiedName: "/"}},
		namespace: map[string]embedded.NamedElement{},
	}
	m.namespace["/"] = m
	switch v := nameOrElement.(type) {
	case string:
		m.id = v
	case RedefinableElement:
		parts = append([]RedefinableElement{v}, parts...)
	default:
		panic(fmt.Errorf("statechart: Define's first argument must be a name or a RedefinableElement, got %T", nameOrElement))
	}
	return m.Push(parts...)
}

// Namespace returns every named element in the model, keyed by qualified
// name. The returned map is the model's own; callers must not mutate it.
func (m *Model) Namespace() map[string]embedded.NamedElement { return m.namespace }

// Push queues parts for application and, once every currently queued part
// (including any Push calls made by earlier parts, such as Target's
// deferred existence check) has run, returns the model. This is the same
// two-phase apply-then-drain-the-backlog technique the teacher repository
// uses so a Transition can name a Target declared later in the same tree.
func (m *Model) Push(parts ...RedefinableElement) *Model {
	m.deferred = append(m.deferred, parts...)
	root := []embedded.NamedElement{m}
	for len(m.deferred) > 0 {
		next := m.deferred[0]
		m.deferred = m.deferred[1:]
		next(m, root)
	}
	m.dirty = true
	return m
}

func apply(model *Model, stack []embedded.NamedElement, parts ...RedefinableElement) {
	for _, part := range parts {
		if part == nil {
			continue
		}
		part(model, stack)
	}
}

// find walks stack from the top (most deeply nested) down and returns the
// first element whose Kind() derives from every kind in kinds, or nil.
func find(stack []embedded.NamedElement, kinds ...uint64) embedded.NamedElement {
	for i := len(stack) - 1; i >= 0; i-- {
		if kind.Is(stack[i].Kind(), kinds...) {
			return stack[i]
		}
	}
	return nil
}

// attachRegionFor resolves the region a new vertex named childName should
// be added to, given the nearest enclosing element on stack: a Region
// attaches directly, a State attaches to (and if necessary creates) its
// default region, anything else is a builder-usage error.
func attachRegionFor(model *Model, stack []embedded.NamedElement, childName string) string {
	if len(stack) == 0 {
		panic(fmt.Errorf("statechart: %q must be declared within a State, Region, or the model root", childName))
	}
	top := stack[len(stack)-1]
	switch {
	case kind.Is(top.Kind(), kind.Region):
		return top.QualifiedName()
	case kind.Is(top.Kind(), kind.State):
		return autoRegion(model, top.QualifiedName())
	default:
		panic(fmt.Errorf("statechart: %q must be declared within a State or Region, not %s", childName, top.QualifiedName()))
	}
}

// asVertex recovers the *vertex behind a NamedElement that may be an
// ordinary model vertex or the model root itself (the root embeds a
// vertex by value, so it cannot be asserted to *vertex directly).
func asVertex(model *Model, el embedded.NamedElement) *vertex {
	if el == nil {
		return nil
	}
	if el.QualifiedName() == "/" {
		return &model.vertex
	}
	v, _ := el.(*vertex)
	return v
}

func autoRegion(model *Model, ownerName string) string {
	owner := asVertex(model, model.namespace[ownerName])
	if owner == nil {
		panic(fmt.Errorf("statechart: %s is not a State", ownerName))
	}
	if kind.Is(owner.kind, kind.FinalState) {
		panic(fmt.Errorf("statechart: %s is a final state and cannot own children", ownerName))
	}
	switch len(owner.regions) {
	case 0:
		qn := path.Join(ownerName, DefaultRegionName)
		r := &region{element: element{kind: kind.Region, qualifiedName: qn}}
		model.namespace[qn] = r
		owner.regions = append(owner.regions, qn)
		return qn
	case 1:
		return owner.regions[0]
	default:
		panic(fmt.Errorf("statechart: %s has more than one region; attach with Region(...) explicitly", ownerName))
	}
}

func appendVertexToRegion(model *Model, regionName, vertexName string) {
	r, ok := model.namespace[regionName].(*region)
	if !ok {
		panic(fmt.Errorf("statechart: %s is not a Region", regionName))
	}
	r.vertices = append(r.vertices, vertexName)
}

func declareVertex(model *Model, regionName, name string, k uint64) *vertex {
	qn := path.Join(regionName, name)
	if _, exists := model.namespace[qn]; exists {
		panic(fmt.Errorf("statechart: %s is already defined", qn))
	}
	v := &vertex{element: element{kind: k, qualifiedName: qn}, region: regionName}
	model.namespace[qn] = v
	return v
}

// State declares a composite or simple state. parts may attach Regions,
// Entry/Exit behaviors, and outbound Transitions; a State with no explicit
// Region gets one implicitly the first time a child vertex is attached.
func State(name string, parts ...RedefinableElement) RedefinableElement {
	return func(model *Model, stack []embedded.NamedElement) embedded.Element {
		regionName := attachRegionFor(model, stack, name)
		v := declareVertex(model, regionName, name, kind.State)
		appendVertexToRegion(model, regionName, v.qualifiedName)
		apply(model, append(stack, v), parts...)
		return v
	}
}

// Region explicitly attaches a named region to the nearest enclosing
// State, for states that need more than one (orthogonal composition).
func Region(name string, parts ...RedefinableElement) RedefinableElement {
	return func(model *Model, stack []embedded.NamedElement) embedded.Element {
		owner := find(stack, kind.State)
		if owner == nil {
			panic(fmt.Errorf("statechart: Region %q must be declared within a State", name))
		}
		ov := asVertex(model, owner)
		if ov == nil {
			panic(fmt.Errorf("statechart: %s is not a State", owner.QualifiedName()))
		}
		if kind.Is(ov.kind, kind.FinalState) {
			panic(fmt.Errorf("statechart: %s is a final state and cannot own regions", ov.qualifiedName))
		}
		qn := path.Join(ov.qualifiedName, name)
		if _, exists := model.namespace[qn]; exists {
			panic(fmt.Errorf("statechart: %s is already defined", qn))
		}
		r := &region{element: element{kind: kind.Region, qualifiedName: qn}}
		model.namespace[qn] = r
		ov.regions = append(ov.regions, qn)
		apply(model, append(stack, r), parts...)
		return r
	}
}

// FinalState declares a region-local final state: it has no outbound
// transitions and no regions of its own, and reaching it marks the
// enclosing region complete (spec §4.5).
func FinalState(name string) RedefinableElement {
	return func(model *Model, stack []embedded.NamedElement) embedded.Element {
		regionName := attachRegionFor(model, stack, name)
		v := declareVertex(model, regionName, name, kind.FinalState)
		appendVertexToRegion(model, regionName, v.qualifiedName)
		return v
	}
}

func initialFamily(k uint64, name, target string, parts ...RedefinableElement) RedefinableElement {
	return func(model *Model, stack []embedded.NamedElement) embedded.Element {
		regionName := attachRegionFor(model, stack, name)
		r, ok := model.namespace[regionName].(*region)
		if !ok {
			panic(fmt.Errorf("statechart: %s is not a Region", regionName))
		}
		if r.initial != "" {
			panic(fmt.Errorf("statechart: region %s already has an initial/history pseudostate (%s)", regionName, r.initial))
		}
		qn := path.Join(regionName, name)
		if _, exists := model.namespace[qn]; exists {
			panic(fmt.Errorf("statechart: %s is already defined", qn))
		}
		p := &vertex{element: element{kind: k, qualifiedName: qn}, region: regionName}
		model.namespace[qn] = p
		r.initial = qn
		if target == "" {
			return p
		}
		built := Transition(append([]RedefinableElement{Target(target)}, parts...)...)(model, append(stack, p))
		t, ok := built.(*transition)
		if !ok {
			return p
		}
		if t.guard != "" {
			panic(fmt.Errorf("statechart: %s cannot have a guard", qn))
		}
		if t.elseGuard {
			panic(fmt.Errorf("statechart: %s cannot be marked Else", qn))
		}
		return p
	}
}

// Initial declares a region's initial pseudostate together with its
// unconditional transition to target. At most one per region; the
// transition may carry Effect but not Guard or Else.
func Initial(target string, parts ...RedefinableElement) RedefinableElement {
	return initialFamily(kind.Initial, initialName, target, parts...)
}

// ShallowHistory declares a region's shallow-history pseudostate. target,
// if non-empty, is the default transition taken the first time the region
// is entered (before any history has been recorded); once history exists,
// entering the region through history restores the last active direct
// child instead, without re-running that child's own nested history.
func ShallowHistory(target string, parts ...RedefinableElement) RedefinableElement {
	return initialFamily(kind.ShallowHistory, shallowHistoryName, target, parts...)
}

// DeepHistory declares a region's deep-history pseudostate. Like
// ShallowHistory, but restoring recurses into every nested region of the
// restored descendant, all the way down.
func DeepHistory(target string, parts ...RedefinableElement) RedefinableElement {
	return initialFamily(kind.DeepHistory, deepHistoryName, target, parts...)
}

func choiceOrJunction(k uint64, name string, parts ...RedefinableElement) RedefinableElement {
	return func(model *Model, stack []embedded.NamedElement) embedded.Element {
		regionName := attachRegionFor(model, stack, name)
		p := declareVertex(model, regionName, name, k)
		appendVertexToRegion(model, regionName, p.qualifiedName)
		apply(model, append(stack, p), parts...)
		if len(p.transitions) == 0 {
			panic(fmt.Errorf("statechart: %s must declare at least one outbound Transition", p.qualifiedName))
		}
		return p
	}
}

// Choice declares a dynamic branch point: its outbound transitions are
// evaluated in declaration order against the current Instance, with the
// first satisfied Guard taken; a trailing Else transition, if present, is
// the fallback. Guards are evaluated at the moment the machine passes
// through the Choice, not when the enclosing transition was first taken.
func Choice(name string, parts ...RedefinableElement) RedefinableElement {
	return choiceOrJunction(kind.Choice, name, parts...)
}

// Junction is a branch point evaluated like Choice, except that more than
// one satisfied guard at once is an IllformedTransitionError instead of
// being resolved by taking the first. Bootstrap does not inspect its
// guards.
func Junction(name string, parts ...RedefinableElement) RedefinableElement {
	return choiceOrJunction(kind.Junction, name, parts...)
}

// Terminate declares a terminate pseudostate: reaching it sets the
// Instance's terminated flag and ends evaluation for that instance. It has
// no outbound transitions.
func Terminate(name string) RedefinableElement {
	return func(model *Model, stack []embedded.NamedElement) embedded.Element {
		regionName := attachRegionFor(model, stack, name)
		p := declareVertex(model, regionName, name, kind.Terminate)
		appendVertexToRegion(model, regionName, p.qualifiedName)
		return p
	}
}

// Transition declares an outbound edge from the nearest enclosing Vertex
// on the builder stack (a State, or a PseudoState such as Choice). Compose
// with Target, Guard, Effect, OnCompletion, and Else.
func Transition(parts ...RedefinableElement) RedefinableElement {
	return func(model *Model, stack []embedded.NamedElement) embedded.Element {
		owner := find(stack, kind.Vertex)
		if owner == nil {
			panic(fmt.Errorf("statechart: Transition must be declared within a State, PseudoState, or the model root"))
		}
		name := fmt.Sprintf("transition_%d", len(model.namespace))
		qn := path.Join(owner.QualifiedName(), name)
		t := &transition{element: element{kind: kind.Transition, qualifiedName: qn}, source: owner.QualifiedName()}
		model.namespace[qn] = t
		apply(model, append(stack, t), parts...)
		src := asVertex(model, model.namespace[t.source])
		if src == nil {
			panic(fmt.Errorf("statechart: transition %s has unknown source %s", qn, t.source))
		}
		if kind.Is(src.kind, kind.FinalState) {
			panic(fmt.Errorf("statechart: %s is a final state and cannot have outbound transitions", t.source))
		}
		src.transitions = append(src.transitions, qn)
		return t
	}
}

// Target names the transition's destination vertex. Relative names are
// resolved against the transition's own source's region, so sibling
// vertices of the source — the ones actually reachable without naming an
// enclosing State — can refer to each other by their bare name; absolute
// names (leading "/") are resolved from the model root. Target's own
// existence is checked once the whole Define call has finished building,
// so it may name a vertex declared later.
func Target(name string) RedefinableElement {
	return func(model *Model, stack []embedded.NamedElement) embedded.Element {
		owner := find(stack, kind.Transition)
		if owner == nil {
			panic(fmt.Errorf("statechart: Target must be used inside a Transition"))
		}
		t := owner.(*transition)
		if t.target != "" {
			panic(fmt.Errorf("statechart: transition %s already has a target", t.qualifiedName))
		}
		qn := name
		if !path.IsAbs(qn) {
			src := asVertex(model, model.namespace[t.source])
			if src == nil {
				panic(fmt.Errorf("statechart: transition %s has unknown source %s", t.qualifiedName, t.source))
			}
			regionQN := src.region
			if regionQN == "" {
				regionQN = "/"
			}
			qn = path.Join(regionQN, qn)
		} else {
			qn = path.Clean(qn)
		}
		t.target = qn
		model.deferred = append(model.deferred, func(model *Model, _ []embedded.NamedElement) embedded.Element {
			if _, ok := model.namespace[qn]; !ok {
				panic(fmt.Errorf("statechart: transition %s targets undefined vertex %s", t.qualifiedName, qn))
			}
			return t
		})
		return t
	}
}

// Guard attaches a predicate to a transition; the transition is only
// eligible for selection when fn returns true for the triggering event
// and instance.
func Guard[T embedded.Instance](fn GuardFunc[T]) RedefinableElement {
	return func(model *Model, stack []embedded.NamedElement) embedded.Element {
		owner := find(stack, kind.Transition)
		if owner == nil {
			panic(fmt.Errorf("statechart: Guard must be used inside a Transition"))
		}
		t := owner.(*transition)
		if t.guard != "" {
			panic(fmt.Errorf("statechart: transition %s already has a guard", t.qualifiedName))
		}
		qn := path.Join(t.qualifiedName, "guard")
		c := &constraint[T]{element: element{kind: kind.Constraint, qualifiedName: qn}, expression: fn}
		model.namespace[qn] = c
		t.guard = qn
		return t
	}
}

// Else marks a transition as the fallback taken when every guarded
// sibling transition of the same source is rejected. A source vertex may
// have at most one ordinary Else transition and at most one OnCompletion
// Else transition; Bootstrap rejects the model otherwise.
func Else() RedefinableElement {
	return func(model *Model, stack []embedded.NamedElement) embedded.Element {
		owner := find(stack, kind.Transition)
		if owner == nil {
			panic(fmt.Errorf("statechart: Else must be used inside a Transition"))
		}
		t := owner.(*transition)
		t.elseGuard = true
		return t
	}
}

// Effect attaches an action run when the transition fires, after every
// exited state's exit actions and before any entered state's entry
// actions. Multiple Effect calls on the same transition accumulate and
// run in declaration order.
func Effect[T embedded.Instance](fn ActionFunc[T]) RedefinableElement {
	return func(model *Model, stack []embedded.NamedElement) embedded.Element {
		owner := find(stack, kind.Transition)
		if owner == nil {
			panic(fmt.Errorf("statechart: Effect must be used inside a Transition"))
		}
		t := owner.(*transition)
		qn := path.Join(t.qualifiedName, fmt.Sprintf("effect_%d", len(t.effects)))
		b := &behavior[T]{element: element{kind: kind.Behavior, qualifiedName: qn}, action: fn}
		model.namespace[qn] = b
		t.effects = append(t.effects, qn)
		return t
	}
}

// OnCompletion marks the enclosing transition as having no message
// trigger (spec §4.5/glossary): it is never offered a dispatched
// message, and fires only from the completion cascade once every region
// of its source becomes complete, with the conventional no-message event
// passed to its guard in place of a real one. A source with several
// OnCompletion transitions is resolved the same way ordinary selection
// is — first satisfied guard wins, Else as fallback.
func OnCompletion() RedefinableElement {
	return func(model *Model, stack []embedded.NamedElement) embedded.Element {
		owner := find(stack, kind.Transition)
		if owner == nil {
			panic(fmt.Errorf("statechart: OnCompletion must be used inside a Transition"))
		}
		t := owner.(*transition)
		t.completion = true
		return t
	}
}

// Entry attaches an action run whenever the enclosing State is entered,
// after the transition's own effects. Multiple Entry calls accumulate and
// run in declaration order.
func Entry[T embedded.Instance](fn ActionFunc[T]) RedefinableElement {
	return func(model *Model, stack []embedded.NamedElement) embedded.Element {
		owner := find(stack, kind.State)
		v := asVertex(model, owner)
		if v == nil {
			panic(fmt.Errorf("statechart: Entry must be used inside a State"))
		}
		qn := path.Join(v.qualifiedName, fmt.Sprintf("entry_%d", len(v.entries)))
		b := &behavior[T]{element: element{kind: kind.Behavior, qualifiedName: qn}, action: fn}
		model.namespace[qn] = b
		v.entries = append(v.entries, qn)
		return v
	}
}

// Exit attaches an action run whenever the enclosing State is exited,
// before the transition's own effects. Multiple Exit calls accumulate and
// run in declaration order.
func Exit[T embedded.Instance](fn ActionFunc[T]) RedefinableElement {
	return func(model *Model, stack []embedded.NamedElement) embedded.Element {
		owner := find(stack, kind.State)
		v := asVertex(model, owner)
		if v == nil {
			panic(fmt.Errorf("statechart: Exit must be used inside a State"))
		}
		qn := path.Join(v.qualifiedName, fmt.Sprintf("exit_%d", len(v.exits)))
		b := &behavior[T]{element: element{kind: kind.Behavior, qualifiedName: qn}, action: fn}
		model.namespace[qn] = b
		v.exits = append(v.exits, qn)
		return v
	}
}

// Event is the message type Evaluate accepts.
type Event = embedded.Event

// NewEvent constructs an Event carrying name and an optional single
// payload value, ready to pass to Engine.Evaluate.
func NewEvent(name string, data ...any) Event {
	var payload any
	if len(data) > 0 {
		payload = data[0]
	}
	return &event{element: element{kind: kind.Event, qualifiedName: name, id: name}, data: payload}
}
