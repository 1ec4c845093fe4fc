package statechart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBootstrapRejectsRegionWithoutInitial(t *testing.T) {
	m := Define("fixture", State("A"))
	err := m.Bootstrap()
	require.Error(t, err)
	var wellFormed *ModelWellFormednessError
	require.ErrorAs(t, err, &wellFormed)
}

func TestBootstrapRejectsChoiceWithoutTarget(t *testing.T) {
	m := Define("fixture",
		Initial("/region/decide"),
		Choice("decide",
			Transition(),
		),
	)
	err := m.Bootstrap()
	require.Error(t, err)
	var wellFormed *ModelWellFormednessError
	require.ErrorAs(t, err, &wellFormed)
}

func TestBootstrapRejectsDuplicateElseOnSameSource(t *testing.T) {
	m := Define("fixture",
		Initial("/region/A"),
		State("A",
			Transition(Target("/region/B"), Else()),
			Transition(Target("/region/C"), Else()),
		),
		State("B"),
		State("C"),
	)
	err := m.Bootstrap()
	require.Error(t, err)
	var wellFormed *ModelWellFormednessError
	require.ErrorAs(t, err, &wellFormed)
}

func TestBootstrapAllowsIndependentElseForOrdinaryAndCompletion(t *testing.T) {
	m := Define("fixture",
		Initial("/region/A"),
		State("A",
			Transition(Target("/region/B"), Else()),
			Transition(Target("/region/C"), OnCompletion(), Else()),
		),
		State("B"),
		State("C"),
	)
	require.NoError(t, m.Bootstrap())
}

func TestCompilePlanSelfTransitionExitsAndReentersSource(t *testing.T) {
	m := Define("fixture",
		Initial("/region/A"),
		State("A", Transition(Target("/region/A"))),
	)
	require.NoError(t, m.Bootstrap())
	av := m.namespace["/region/A"].(*vertex)
	self := m.namespace[av.transitions[0]].(*transition)
	require.Equal(t, "/region/A", self.compiled.exitBoundary)
	require.True(t, self.compiled.exitInclusive)
	require.Equal(t, []enterStep{{vertex: "/region/A"}}, self.compiled.enter)
}

func TestCompilePlanLocalTransitionDoesNotExitCommonAncestor(t *testing.T) {
	m := Define("fixture",
		Initial("/region/Outer"),
		State("Outer",
			Initial("/region/Outer/region/Inner"),
			State("Inner"),
			Transition(Target("/region/Outer/region/Inner")),
		),
	)
	require.NoError(t, m.Bootstrap())
	outer := m.namespace["/region/Outer"].(*vertex)
	local := m.namespace[outer.transitions[0]].(*transition)
	require.Equal(t, "/region/Outer", local.compiled.exitBoundary)
	require.False(t, local.compiled.exitInclusive)
}

func TestCompilePlanExternalTransitionWithinOneOrthogonalRegion(t *testing.T) {
	m := buildOrthogonalModel(t)
	onVertex := m.namespace["/region/Active/power/On"].(*vertex)
	toOff := m.namespace[onVertex.transitions[0]].(*transition)
	require.Equal(t, "/region/Active/power/On", toOff.compiled.exitBoundary)
	require.True(t, toOff.compiled.exitInclusive)
	require.Equal(t, []enterStep{{vertex: "/region/Active/power/Off"}}, toOff.compiled.enter)
}
