package statechart

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ziqian9206/statechart/kind"
)

func TestAncestors(t *testing.T) {
	require.Equal(t, []string{"/"}, ancestors("/"))
	require.Equal(t, []string{"/", "/Active", "/Active/power", "/Active/power/On"}, ancestors("/Active/power/On"))
}

func TestIsAncestor(t *testing.T) {
	require.True(t, isAncestor("/", "/Active/power/On"))
	require.True(t, isAncestor("/Active", "/Active/power/On"))
	require.False(t, isAncestor("/Active/power/On", "/Active"))
	require.False(t, isAncestor("/Active", "/Active"))
	require.False(t, isAncestor("/Active/power", "/Active/mode/Auto"))
}

func TestClassify(t *testing.T) {
	require.True(t, kind.Is(classify("/Active", "/Active"), kind.External))
	require.True(t, kind.Is(classify("/Active", ""), kind.Internal))
	require.True(t, kind.Is(classify("/Active", "/Active/power/On"), kind.Local))
	require.True(t, kind.Is(classify("/Locked", "/Active"), kind.External))
}

// buildOrthogonalModel is shared by the ancestry, visitor, and evaluator
// tests. Every State() call attaches to the model root's own implicit
// default region, so top-level vertices live under "/region/...", not
// directly under "/" — DefaultRegionName applies at every nesting level,
// including the root.
func buildOrthogonalModel(t *testing.T) *Model {
	t.Helper()
	m := Define("ancestryFixture",
		Initial("/region/Locked"),
		State("Locked",
			Transition(Target("/region/Active")),
		),
		State("Active",
			Region("power",
				Initial("/region/Active/power/On"),
				State("On", Transition(Target("/region/Active/power/Off"))),
				State("Off", Transition(Target("/region/Active/power/On"))),
			),
			Region("mode",
				Initial("/region/Active/mode/Auto"),
				State("Auto", Transition(Target("/region/Active/mode/Manual"))),
				State("Manual", Transition(Target("/region/Active/mode/Auto"))),
			),
		),
	)
	require.NoError(t, m.Bootstrap())
	return m
}

func TestLowestCommonAncestorAcrossOrthogonalRegions(t *testing.T) {
	m := buildOrthogonalModel(t)
	require.Equal(t, "/region/Active", m.lowestCommonAncestor("/region/Active/power/On", "/region/Active/mode/Auto"))
	require.Equal(t, "/region/Active/power/On", m.boundaryChild("/region/Active", "/region/Active/power/On"))
	require.Equal(t, "/region/Active/mode/Auto", m.boundaryChild("/region/Active", "/region/Active/mode/Auto"))
}

func TestLowestCommonAncestorWithinOneRegion(t *testing.T) {
	m := buildOrthogonalModel(t)
	require.Equal(t, "/region/Active/power", m.lowestCommonAncestor("/region/Active/power/On", "/region/Active/power/Off"))
}

func TestParentState(t *testing.T) {
	m := buildOrthogonalModel(t)
	require.Equal(t, "/region/Active", m.parentState("/region/Active/power"))
	require.Equal(t, "/region/Active", m.parentState("/region/Active/mode/Auto"))
	require.Equal(t, "/", m.parentState("/region/Locked"))
}
