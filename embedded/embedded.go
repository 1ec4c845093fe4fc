// Package embedded holds the narrow interfaces shared between the model
// builder, the bootstrap compiler, and the evaluator. Splitting them out
// here is what lets those packages refer to each other's concrete types
// without an import cycle, the same role this package plays in the teacher
// repository this engine is adapted from.
package embedded

// Element is the minimal identity every model node carries.
type Element interface {
	Kind() uint64
	Id() string
}

// NamedElement is an Element reachable from the model's qualified-name
// namespace.
type NamedElement interface {
	Element
	Owner() string
	QualifiedName() string
	Name() string
}

// Model is the root namespace: every named element in the tree, keyed by
// qualified name.
type Model interface {
	NamedElement
	Namespace() map[string]NamedElement
}

// Vertex is anything that can be a transition endpoint: a State or a
// PseudoState.
type Vertex interface {
	NamedElement
	Region() string
	Transitions() []string
}

// Region is a container of vertices, owned by a State (or by the root).
type Region interface {
	NamedElement
	Vertices() []string
	Initial() string
}

// State is a Vertex that owns zero or more child Regions and entry/exit
// behavior.
type State interface {
	Vertex
	Regions() []string
	Entries() []string
	Exits() []string
}

// PseudoState is a Vertex whose Kind() further identifies it as Initial,
// ShallowHistory, DeepHistory, Choice, Junction, or Terminate.
type PseudoState interface {
	Vertex
}

// Transition is an edge between two Vertices, or an internal edge with no
// target.
type Transition interface {
	NamedElement
	Source() string
	Target() string
	Guard() string
	Effects() []string
	Else() bool
	Completion() bool
}

// Event is the single opaque message type Evaluate accepts, or the
// conventional no-message value passed to a completion transition's
// guard during the completion cascade.
type Event interface {
	Kind() uint64
	Name() string
	Data() any
	Id() string
}

// Constraint is a compiled guard reference.
type Constraint interface {
	NamedElement
}

// Behavior is a compiled entry/exit/effect action reference.
type Behavior interface {
	NamedElement
}

// Instance is the host-supplied, per-instance mutable store described in
// spec §6. A default in-memory implementation is provided by this module;
// hosts may back it with a database row, serialized blob, or anything else
// that can answer these three questions.
type Instance interface {
	Id() string
	IsTerminated() bool
	SetTerminated(bool)
	SetCurrent(region string, state string)
	GetCurrent(region string) string
}
