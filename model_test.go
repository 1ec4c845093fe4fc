package statechart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefineBuildsImplicitRootRegion(t *testing.T) {
	m := Define("fixture",
		Initial("/region/A"),
		State("A"),
	)
	_, ok := m.namespace["/region"].(*region)
	require.True(t, ok, "the model root should acquire a default region named %q", DefaultRegionName)
	require.NoError(t, m.Bootstrap())
}

func TestDuplicateVertexNamePanics(t *testing.T) {
	require.Panics(t, func() {
		Define("fixture",
			Initial("/region/A"),
			State("A"),
			State("A"),
		)
	})
}

func TestTargetingUndeclaredVertexPanics(t *testing.T) {
	require.Panics(t, func() {
		Define("fixture",
			Initial("/region/A"),
			State("A", Transition(Target("/DoesNotExist"))),
		)
	})
}

func TestStateAcquiresDefaultRegionOnFirstChild(t *testing.T) {
	m := Define("fixture",
		Initial("/region/Outer"),
		State("Outer",
			Initial("/region/Outer/region/Inner"),
			State("Inner"),
		),
	)
	r, ok := m.namespace["/region/Outer/region"].(*region)
	require.True(t, ok)
	require.Equal(t, []string{"/region/Outer/region/Inner"}, r.Vertices())
	require.NoError(t, m.Bootstrap())
}

func TestOrthogonalStateRejectsImplicitVertexAttachment(t *testing.T) {
	// A State with two explicit Regions is orthogonal; a vertex declared
	// directly on it (instead of inside one of those Regions) has no
	// single region to auto-attach to.
	require.Panics(t, func() {
		Define("fixture",
			State("Outer",
				Region("one", State("a")),
				Region("two", State("b")),
				State("ambiguous"),
			),
		)
	})
}

func TestChoiceRequiresAtLeastOneOutboundTransition(t *testing.T) {
	require.Panics(t, func() {
		Define("fixture",
			Initial("/region/decide"),
			Choice("decide"),
		)
	})
}

func TestFinalStateHasNoOutboundTransitions(t *testing.T) {
	m := Define("fixture",
		Initial("/region/done"),
		FinalState("done"),
	)
	v := m.namespace["/region/done"].(*vertex)
	require.Empty(t, v.Transitions())
	require.NoError(t, m.Bootstrap())
}

func TestRegionRejectsSecondInitialFamilyPseudostate(t *testing.T) {
	require.Panics(t, func() {
		Define("fixture",
			Initial("/region/A"),
			ShallowHistory("/region/A"),
			State("A"),
		)
	})
}

func TestElseMarksFallbackTransition(t *testing.T) {
	m := Define("fixture",
		Initial("/region/A"),
		State("A",
			Transition(Target("/region/B"), Guard[*MemoryInstance](func(evt Event, inst *MemoryInstance) bool { return false })),
			Transition(Target("/region/C"), Else()),
		),
		State("B"),
		State("C"),
	)
	require.NoError(t, m.Bootstrap())
	av := m.namespace["/region/A"].(*vertex)
	require.Len(t, av.transitions, 2)
	elseT := m.namespace[av.transitions[1]].(*transition)
	require.True(t, elseT.Else())
}
