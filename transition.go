package statechart

import (
	"github.com/ziqian9206/statechart/embedded"
)

// enterStep is one entry in a transition's compiled entry path: the vertex
// to enter, and — when it is not the final step — the qualified name of
// the one child region the path continues through. Sibling regions of
// that state are entered via their own default/history semantics (spec
// §4.3's "recursively enter each child region"); the named region is not,
// since the next step already says which vertex inside it to enter.
type enterStep struct {
	vertex        string
	throughRegion string
}

// plan is the bootstrap compiler's output for one transition: how far the
// exit climb goes, and the ordered list of vertices to enter. Internal
// transitions have no plan at all.
//
// exitBoundary is the vertex the runtime exit climb stops at, walking up
// from whatever is currently active beneath it. exitInclusive says
// whether exitBoundary itself is exited too: true for external and
// self-transitions (the source state is always left), false for local
// transitions (the common ancestor of source and target is never exited,
// only re-descended into) — see bootstrap.go's compilePlan.
type plan struct {
	exitBoundary  string
	exitInclusive bool
	enter         []enterStep
}

// transition is an edge between two vertices, or — when target is empty —
// an internal edge that only runs effects. completion marks it as having
// no message trigger: it is never offered a dispatched message, only
// considered by the completion cascade once its source becomes complete
// (spec §4.5), with the conventional no-message event passed to its
// guard in place of a real one.
type transition struct {
	element
	source     string
	target     string
	guard      string
	effects    []string
	elseGuard  bool
	completion bool
	compiled   *plan
}

func (t *transition) Source() string    { return t.source }
func (t *transition) Target() string    { return t.target }
func (t *transition) Guard() string     { return t.guard }
func (t *transition) Effects() []string { return t.effects }
func (t *transition) Else() bool        { return t.elseGuard }
func (t *transition) Completion() bool  { return t.completion }

func (t *transition) classify() uint64 {
	return classify(t.source, t.target)
}

func (t *transition) isCompletion() bool {
	return t.completion
}

// GuardFunc is a user-supplied predicate gating a transition. T is the
// concrete type implementing embedded.Instance the engine was built with,
// so guards receive a strongly typed instance instead of downcasting from
// an interface{} — the same role the teacher repository's Context[T] type
// parameter plays, narrowed here to the shape spec §6 actually specifies:
// (message, instance) -> bool.
type GuardFunc[T embedded.Instance] func(event Event, instance T) bool

// ActionFunc is a user-supplied entry/exit/effect behavior. history is
// true when this entry action is running as part of a history-based
// region restore, per spec §6: (message, instance, historyFlag) -> any.
type ActionFunc[T embedded.Instance] func(event Event, instance T, history bool)

// behavior is a compiled entry/exit/effect action reference.
type behavior[T embedded.Instance] struct {
	element
	action ActionFunc[T]
}

// constraint is a compiled guard reference.
type constraint[T embedded.Instance] struct {
	element
	expression GuardFunc[T]
}

// event is the concrete Event implementation used for user-dispatched
// messages.
type event struct {
	element
	data any
}

func (e *event) Name() string {
	if e == nil {
		return ""
	}
	return e.qualifiedName
}

func (e *event) Data() any {
	if e == nil {
		return nil
	}
	return e.data
}
