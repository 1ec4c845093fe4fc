package statechart

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ziqian9206/statechart/embedded"
)

type countingVisitor struct {
	BaseVisitor
	machines     int
	states       int
	finalStates  int
	pseudoStates int
	regions      int
	transitions  int
}

func (c *countingVisitor) VisitStateMachine(*Model) error {
	c.machines++
	return nil
}

func (c *countingVisitor) VisitState(embedded.State) error {
	c.states++
	return nil
}

func (c *countingVisitor) VisitFinalState(embedded.State) error {
	c.finalStates++
	return nil
}

func (c *countingVisitor) VisitPseudoState(embedded.PseudoState) error {
	c.pseudoStates++
	return nil
}

func (c *countingVisitor) VisitRegion(embedded.Region) error {
	c.regions++
	return nil
}

func (c *countingVisitor) VisitTransition(embedded.Transition) error {
	c.transitions++
	return nil
}

func TestAcceptDispatchesByKind(t *testing.T) {
	m := buildOrthogonalModel(t)
	c := &countingVisitor{}

	require.NoError(t, Walk(c, m))

	require.Equal(t, 1, c.machines)
	require.Equal(t, 6, c.states, "Locked, Active, On, Off, Auto, Manual")
	require.Equal(t, 0, c.finalStates)
	require.Equal(t, 3, c.pseudoStates, "root, power, and mode initial pseudostates")
	require.Equal(t, 3, c.regions, "default root region, power, mode")
	require.Equal(t, 8, c.transitions)
}

// visitCountingByName records every qualified name Walk offers to it, so
// TestWalkVisitsEveryElementExactlyOnce can check the whole namespace was
// covered exactly once with no duplicate dispatch.
type visitCountingByName struct {
	BaseVisitor
	seen map[string]int
}

func (v *visitCountingByName) VisitStateMachine(m *Model) error {
	v.seen[m.QualifiedName()]++
	return nil
}
func (v *visitCountingByName) VisitState(s embedded.State) error {
	v.seen[s.QualifiedName()]++
	return nil
}
func (v *visitCountingByName) VisitFinalState(s embedded.State) error {
	v.seen[s.QualifiedName()]++
	return nil
}
func (v *visitCountingByName) VisitPseudoState(s embedded.PseudoState) error {
	v.seen[s.QualifiedName()]++
	return nil
}
func (v *visitCountingByName) VisitRegion(r embedded.Region) error {
	v.seen[r.QualifiedName()]++
	return nil
}
func (v *visitCountingByName) VisitTransition(tr embedded.Transition) error {
	v.seen[tr.QualifiedName()]++
	return nil
}

func TestWalkVisitsEveryElementExactlyOnce(t *testing.T) {
	m := buildOrthogonalModel(t)
	c := &visitCountingByName{seen: map[string]int{}}

	require.NoError(t, Walk(c, m))

	for qn, n := range c.seen {
		require.Equalf(t, 1, n, "element %s visited %d times", qn, n)
	}
	require.Equal(t, len(m.namespace), len(c.seen))
}
