package statechart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryInstanceIdentity(t *testing.T) {
	a := NewMemoryInstance()
	b := NewMemoryInstance()
	require.NotEmpty(t, a.Id())
	require.NotEqual(t, a.Id(), b.Id())
}

func TestMemoryInstanceTerminated(t *testing.T) {
	mi := NewMemoryInstance()
	require.False(t, mi.IsTerminated())
	mi.SetTerminated(true)
	require.True(t, mi.IsTerminated())
}

func TestMemoryInstanceCurrentIsLastKnown(t *testing.T) {
	mi := NewMemoryInstance()
	require.Equal(t, "", mi.GetCurrent("/Active/power"))
	mi.SetCurrent("/Active/power", "/Active/power/On")
	require.Equal(t, "/Active/power/On", mi.GetCurrent("/Active/power"))

	// A region's recorded current vertex must survive being read again
	// without any write in between -- it is the last-known state used for
	// history restoration, not cleared as a side effect of inspection.
	require.Equal(t, "/Active/power/On", mi.GetCurrent("/Active/power"))
	mi.SetCurrent("/Active/power", "/Active/power/Off")
	require.Equal(t, "/Active/power/Off", mi.GetCurrent("/Active/power"))
}

func TestMemoryInstanceActiveSnapshotIsACopy(t *testing.T) {
	mi := NewMemoryInstance()
	mi.SetCurrent("/region", "/Locked")
	mi.SetCurrent("/Active/power", "/Active/power/On")

	snapshot := mi.Active()
	require.Equal(t, map[string]string{
		"/region":       "/Locked",
		"/Active/power": "/Active/power/On",
	}, snapshot)

	snapshot["/region"] = "/mutated"
	require.Equal(t, "/Locked", mi.GetCurrent("/region"))
}
