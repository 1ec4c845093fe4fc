// Package tests provides a small scenario runner (none of this module's
// own test files import it): a Scenario is a fixed sequence of dispatch steps against
// one already-initialised Engine/Instance pair, each step asserting which
// vertex is current in a set of regions afterward. Grounded on the
// teacher's own pkg/tests.Run stub, given a real body.
package tests

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ziqian9206/statechart"
	"github.com/ziqian9206/statechart/embedded"
)

// Step is one dispatch in a Scenario: Event is sent to the instance via
// Engine.Evaluate, WantFired records whether the send was expected to
// match some transition, and WantCurrent asserts the resulting current
// vertex for a subset of regions (only the regions named are checked).
type Step struct {
	Name        string
	Event       statechart.Event
	WantFired   bool
	WantCurrent map[string]string
}

// Scenario is a named, ordered list of Steps run against one instance.
type Scenario struct {
	Name  string
	Steps []Step
}

// Run drives instance through every step of scenario via engine, failing t
// immediately on the first step whose fired result or resulting current
// vertex does not match what the step expects.
func Run[T embedded.Instance](t *testing.T, engine *statechart.Engine[T], instance T, scenario Scenario) {
	t.Helper()
	for _, step := range scenario.Steps {
		fired, err := engine.Evaluate(instance, step.Event)
		require.NoErrorf(t, err, "%s: step %q", scenario.Name, step.Name)
		require.Equalf(t, step.WantFired, fired, "%s: step %q fired", scenario.Name, step.Name)
		for region, want := range step.WantCurrent {
			require.Equalf(t, want, instance.GetCurrent(region), "%s: step %q region %s", scenario.Name, step.Name, region)
		}
	}
}
