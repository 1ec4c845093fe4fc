package statechart

import "github.com/ziqian9206/statechart/kind"

// vertex is the single tagged-variant representation backing every State,
// FinalState, StateMachine, and PseudoState in the tree (spec §9's "tagged
// variant... a kind discriminator plus optional payload", collapsed here
// to one struct since pseudostates and states differ only in which of
// these fields are meaningful). Dispatch throughout the engine is a switch
// on element.kind, never a type assertion to a narrower Go type.
type vertex struct {
	element
	region      string   // qualified name of the owning Region ("" only for the model root)
	transitions []string // outbound transition qualified names, insertion order
	regions     []string // child Region qualified names; always empty for pseudostates and FinalState
	entries     []string // qualified names of compiled entry behaviors, run in declaration order
	exits       []string // qualified names of compiled exit behaviors, run in declaration order
	dirty       bool     // StateMachine root only: true until Bootstrap clears it
}

func (v *vertex) Region() string        { return v.region }
func (v *vertex) Transitions() []string { return v.transitions }
func (v *vertex) Regions() []string     { return v.regions }
func (v *vertex) Entries() []string     { return v.entries }
func (v *vertex) Exits() []string       { return v.exits }

func (v *vertex) isComposite() bool   { return len(v.regions) > 0 }
func (v *vertex) isOrthogonal() bool  { return len(v.regions) > 1 }
func (v *vertex) isState() bool       { return kind.Is(v.kind, kind.State) }
func (v *vertex) isPseudoState() bool { return kind.Is(v.kind, kind.PseudoState) }

// region is a container of vertices, owned by a state (or by the model's
// root state machine). initial holds the qualified name of the region's
// Initial/ShallowHistory/DeepHistory pseudostate, set the first time one is
// added; declaring a second one in the same region panics during
// construction.
type region struct {
	element
	vertices []string
	initial  string
}

func (r *region) Vertices() []string { return r.vertices }
func (r *region) Initial() string    { return r.initial }
