package statechart

import (
	"context"
	"fmt"
	"sync"

	"github.com/ziqian9206/statechart/embedded"
	"github.com/ziqian9206/statechart/kind"
	"github.com/ziqian9206/statechart/pkg/telemetry"
	"github.com/ziqian9206/statechart/queue"

	"go.opentelemetry.io/otel/trace"
)

// Engine runs a compiled Model against Instances of a single concrete
// type T. One Engine may drive any number of Instances concurrently, as
// long as each Instance is only ever touched by one goroutine at a time
// (the teacher repository's HSM[T] makes the same assumption, backing it
// with a per-instance mutex in its Context; this engine's default
// MemoryInstance does the equivalent with its own sync.RWMutex).
type Engine[T embedded.Instance] struct {
	model       *Model
	tracer      trace.Tracer
	initialized sync.Map
}

// NewEngine returns an Engine for model. NewEngine does not call
// Bootstrap; Initialise and Evaluate run it on a dirty model, and a host
// that calls Bootstrap once up front can share the *Model read-only
// across several Engine[T] instantiations for different instance types.
func NewEngine[T embedded.Instance](model *Model) *Engine[T] {
	return &Engine[T]{
		model:  model,
		tracer: telemetry.NewProvider().Tracer("github.com/ziqian9206/statechart"),
	}
}

// evalCtx carries the state threaded through one Initialise or Evaluate
// call: the triggering event (passed to every action invoked along the
// way, including the actions of a completion transition fired by the
// cascade, and to every guard except a completion transition's own) and
// the worklist of regions that just reached a FinalState and need a
// completion check once the triggering transition's own traversal
// settles.
type evalCtx[T embedded.Instance] struct {
	evt     Event
	pending *queue.Queue[string]
}

// zeroEvent is passed to guards and actions run outside any dispatched
// event — Initialise's default entry — and to a completion transition's
// guard during the cascade.
var zeroEvent Event = &event{element: element{kind: kind.Event, qualifiedName: "$none", id: "$none"}}

// Initialise runs the machine's default entry: every top-level region's
// Initial or history pseudostate, recursively, followed by any
// completion transitions that immediately become enabled. A dirty model is
// bootstrapped first. It must be called exactly once per Instance before
// Evaluate will accept it.
func (e *Engine[T]) Initialise(instance T) error {
	if e.model.dirty {
		if err := e.model.Bootstrap(); err != nil {
			return fmt.Errorf("%w: %w", ErrDirty, err)
		}
	}
	_, span := e.tracer.Start(context.Background(), "statechart.Initialise")
	defer span.End()
	ec := &evalCtx[T]{evt: zeroEvent, pending: queue.New[string]()}
	for _, r := range e.model.regions {
		if err := e.enterRegionDefault(instance, r, false, ec); err != nil {
			span.RecordError(err)
			return err
		}
	}
	if err := e.cascadeCompletion(instance, ec); err != nil {
		span.RecordError(err)
		return err
	}
	e.initialized.Store(instance.Id(), struct{}{})
	return nil
}

// Evaluate offers evt to the machine: top-level regions are tried in
// declaration order, and within each the currently active branch gets
// first refusal, bubbling up from the innermost active state to the
// outermost, per spec §4.4. The first region that consumes the event ends
// the search; later orthogonal regions do not see it. A dirty model is
// bootstrapped first. It returns whether a transition fired.
func (e *Engine[T]) Evaluate(instance T, evt Event) (bool, error) {
	if e.model.dirty {
		if err := e.model.Bootstrap(); err != nil {
			return false, fmt.Errorf("%w: %w", ErrDirty, err)
		}
	}
	if _, ok := e.initialized.Load(instance.Id()); !ok {
		return false, ErrNotInitialised
	}
	if instance.IsTerminated() {
		return false, nil
	}
	_, span := e.tracer.Start(context.Background(), "statechart.Evaluate")
	defer span.End()
	ec := &evalCtx[T]{evt: evt, pending: queue.New[string]()}
	fired := false
	for _, r := range e.model.regions {
		ok, err := e.tryRegion(instance, r, ec)
		if err != nil {
			span.RecordError(err)
			return false, err
		}
		if ok {
			fired = true
			break
		}
	}
	if fired {
		if err := e.cascadeCompletion(instance, ec); err != nil {
			span.RecordError(err)
			return false, err
		}
	}
	return fired, nil
}

// tryRegion offers the event to regionQN's currently active vertex.
func (e *Engine[T]) tryRegion(instance T, regionQN string, ctx *evalCtx[T]) (bool, error) {
	current := instance.GetCurrent(regionQN)
	if current == "" {
		return false, nil
	}
	return e.tryVertex(instance, current, ctx)
}

// tryVertex implements the bubble-up rule: vertexQN's own child regions
// (if any) get first refusal, offered in declaration order; the first
// region that consumes the event ends the search, so later sibling
// regions do not see it. Only if none of them consumed the event does
// vertexQN try its own outbound transitions.
func (e *Engine[T]) tryVertex(instance T, vertexQN string, ctx *evalCtx[T]) (bool, error) {
	v, ok := e.model.namespace[vertexQN].(*vertex)
	if !ok {
		return false, fmt.Errorf("statechart: %s is not a vertex", vertexQN)
	}
	for _, r := range v.regions {
		fired, err := e.tryRegion(instance, r, ctx)
		if err != nil {
			return false, err
		}
		if fired {
			return true, nil
		}
	}
	return e.selectAt(instance, vertexQN, ctx)
}

// selectAt implements spec §4.4 step 3's selection rule at an ordinary
// vertex: iterate outbound transitions in declaration order, skipping
// OnCompletion ones (those only ever fire from the cascade, never from a
// dispatched message) and Else; the first whose guard returns true is
// selected, and if none matched, the source's Else transition (if any)
// is taken unconditionally.
func (e *Engine[T]) selectAt(instance T, sourceQN string, ctx *evalCtx[T]) (bool, error) {
	v := e.model.namespace[sourceQN].(*vertex)
	t, err := e.selectTransition(instance, v.transitions, ctx.evt, false)
	if err != nil || t == nil {
		return false, err
	}
	if err := e.fire(instance, t, ctx); err != nil {
		return false, err
	}
	return true, nil
}

// selectTransition is the selection rule shared by ordinary dispatch
// (candidates restricted to non-completion transitions) and the
// completion cascade (candidates restricted to OnCompletion transitions,
// evt the conventional no-message value).
func (e *Engine[T]) selectTransition(instance T, transitionQNs []string, evt Event, completion bool) (*transition, error) {
	var elseT *transition
	for _, tqn := range transitionQNs {
		t := e.model.namespace[tqn].(*transition)
		if t.completion != completion {
			continue
		}
		if t.elseGuard {
			elseT = t
			continue
		}
		ok, err := e.evalGuardOf(t, instance, evt)
		if err != nil {
			return nil, err
		}
		if ok {
			return t, nil
		}
	}
	return elseT, nil
}

func (e *Engine[T]) evalGuardOf(t *transition, instance T, evt Event) (bool, error) {
	if t.guard == "" {
		return true, nil
	}
	c, ok := e.model.namespace[t.guard].(*constraint[T])
	if !ok {
		return false, fmt.Errorf("statechart: guard %s is not compatible with instance type %T", t.guard, instance)
	}
	return c.expression(evt, instance), nil
}

// fire runs one transition to completion: exit climb, effects, then the
// compiled entry path. Internal transitions (compiled == nil) skip both
// the exit and the entry, running only their effects.
func (e *Engine[T]) fire(instance T, t *transition, ctx *evalCtx[T]) error {
	if t.compiled == nil {
		return e.runEffects(instance, t, ctx.evt)
	}
	p := t.compiled
	if err := e.exitChain(instance, t.source, p.exitBoundary, p.exitInclusive, ctx.evt); err != nil {
		return err
	}
	if err := e.runEffects(instance, t, ctx.evt); err != nil {
		return err
	}
	return e.runEnter(instance, p.enter, ctx.evt, false, ctx)
}

// exitActive fully exits vertexQN: every current child across every one
// of its regions (innermost first), then vertexQN's own exit actions.
// getCurrent/setCurrent record the "last-known state" per region for
// history pseudo states (spec §6); exiting never clears it — the next
// entry, default or history-driven, is what overwrites it.
func (e *Engine[T]) exitActive(instance T, vertexQN string, evt Event) error {
	v := e.model.namespace[vertexQN].(*vertex)
	for _, r := range v.regions {
		if child := instance.GetCurrent(r); child != "" {
			if err := e.exitActive(instance, child, evt); err != nil {
				return err
			}
		}
	}
	return e.runExits(instance, v, evt)
}

// exitDescendantsOnly exits vertexQN's current children without touching
// vertexQN itself — used when a local transition's common vertex stays
// active.
func (e *Engine[T]) exitDescendantsOnly(instance T, vertexQN string, evt Event) error {
	v := e.model.namespace[vertexQN].(*vertex)
	for _, r := range v.regions {
		child := instance.GetCurrent(r)
		if child == "" {
			continue
		}
		if err := e.exitActive(instance, child, evt); err != nil {
			return err
		}
	}
	return nil
}

// exitOtherRegions exits the current child of every region of vertexQN
// except skipRegion — the orthogonal siblings of the branch the exit climb
// is already descending through, which exitChain must still tear down in
// full even though it never walks through them directly.
func (e *Engine[T]) exitOtherRegions(instance T, vertexQN, skipRegion string, evt Event) error {
	v := e.model.namespace[vertexQN].(*vertex)
	for _, r := range v.regions {
		if r == skipRegion {
			continue
		}
		child := instance.GetCurrent(r)
		if child == "" {
			continue
		}
		if err := e.exitActive(instance, child, evt); err != nil {
			return err
		}
	}
	return nil
}

// exitChain climbs from leaf to boundary. leaf's own subtree is exited
// exactly once via exitActive; each ancestor strictly between leaf and
// boundary contributes only its orthogonal siblings' subtrees (via
// exitOtherRegions) and its own exit actions — never another full
// exitActive of the branch already torn down, or leaf would be exited
// once per ancestor on the climb. boundary itself is exited too when
// inclusive; a local transition's boundary is excluded, and its other
// regions, if any, are left exactly as they were.
func (e *Engine[T]) exitChain(instance T, leaf, boundary string, inclusive bool, evt Event) error {
	if leaf == boundary {
		if !inclusive {
			return e.exitDescendantsOnly(instance, leaf, evt)
		}
		return e.exitActive(instance, leaf, evt)
	}
	if err := e.exitActive(instance, leaf, evt); err != nil {
		return err
	}
	cur := leaf
	for {
		v := e.model.namespace[cur].(*vertex)
		parent := e.model.parentState(v.region)
		if parent == "" {
			return fmt.Errorf("statechart: exit climb from %s passed the model root before reaching boundary %s", leaf, boundary)
		}
		if err := e.exitOtherRegions(instance, parent, v.region, evt); err != nil {
			return err
		}
		if parent == boundary {
			if !inclusive {
				return nil
			}
			return e.runExits(instance, asVertex(e.model, e.model.namespace[parent]), evt)
		}
		if err := e.runExits(instance, asVertex(e.model, e.model.namespace[parent]), evt); err != nil {
			return err
		}
		cur = parent
	}
}

// runEnter walks a compiled entry path one step at a time, entering each
// named vertex and, for every sibling region of that vertex other than
// the one the path continues through, defaulting it.
func (e *Engine[T]) runEnter(instance T, steps []enterStep, evt Event, history bool, ctx *evalCtx[T]) error {
	for _, step := range steps {
		if err := e.enterVertex(instance, step.vertex, evt, history, step.throughRegion, ctx); err != nil {
			return err
		}
	}
	return nil
}

// enterVertex enters one vertex: a Terminate sets the instance terminated
// and stops; a Choice or Junction is resolved immediately rather than
// ever becoming "current"; anything else runs its entry actions, records
// itself as its region's current vertex (queuing a completion check if
// it is a FinalState), and defaults every child region except skipRegion
// (the path the caller is already continuing through explicitly).
func (e *Engine[T]) enterVertex(instance T, vertexQN string, evt Event, history bool, skipRegion string, ctx *evalCtx[T]) error {
	v, ok := e.model.namespace[vertexQN].(*vertex)
	if !ok {
		return fmt.Errorf("statechart: %s is not a vertex", vertexQN)
	}
	switch {
	case kind.Is(v.kind, kind.Terminate):
		instance.SetTerminated(true)
		return nil
	case kind.IsAny(v.kind, kind.Choice, kind.Junction):
		return e.resolveChoice(instance, vertexQN, evt, history, ctx)
	default:
		if err := e.runEntries(instance, v, evt, history); err != nil {
			return err
		}
		instance.SetCurrent(v.region, vertexQN)
		if kind.Is(v.kind, kind.FinalState) {
			ctx.pending.Push(v.region)
		}
		for _, r := range v.regions {
			if r == skipRegion {
				continue
			}
			if err := e.enterRegionDefault(instance, r, history, ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

// enterRegionDefault enters regionQN's default vertex: the target of its
// Initial pseudostate's transition, unless its pseudostate is a history
// kind (or an ancestor DeepHistory cascade has forced history behavior
// down onto it) and the instance already recorded a prior visit, in
// which case that recorded vertex is restored instead.
//
// A DeepHistory restore propagates forceHistory unconditionally into
// every nested region, including ones whose own pseudostate is a plain
// Initial; a ShallowHistory restore propagates false, so everything below
// the one restored level reverts to ordinary default entry.
func (e *Engine[T]) enterRegionDefault(instance T, regionQN string, forceHistory bool, ctx *evalCtx[T]) error {
	r, ok := e.model.namespace[regionQN].(*region)
	if !ok {
		return fmt.Errorf("statechart: %s is not a region", regionQN)
	}
	if r.initial == "" {
		return nil
	}
	initialEl := e.model.namespace[r.initial].(*vertex)
	recorded := instance.GetCurrent(regionQN)

	var useHistory, nextForce bool
	switch {
	case kind.Is(initialEl.kind, kind.DeepHistory):
		useHistory, nextForce = true, true
	case kind.Is(initialEl.kind, kind.ShallowHistory):
		useHistory, nextForce = true, false
	default:
		useHistory, nextForce = forceHistory, forceHistory
	}

	if useHistory && recorded != "" {
		return e.enterVertex(instance, recorded, ctx.evt, nextForce, "", ctx)
	}
	if len(initialEl.transitions) == 0 {
		return illFormedf("region %s has no recorded state and no default transition at %s", regionQN, r.initial)
	}
	t := e.model.namespace[initialEl.transitions[0]].(*transition)
	if err := e.runEffects(instance, t, ctx.evt); err != nil {
		return err
	}
	return e.runEnter(instance, t.compiled.enter, ctx.evt, nextForce, ctx)
}

// resolveChoice evaluates every one of choiceQN's guarded outbound
// transitions against instance and the event that led here, per spec
// §4.4's differing Choice/Junction selection rules. Choice picks the
// first match among however many are satisfied — declaration order
// standing in for "arbitrarily" — falling back to Else if none are.
// Junction is stricter: more than one satisfied guard is ambiguous and
// ill-formed, not merely resolved by taking the first.
func (e *Engine[T]) resolveChoice(instance T, choiceQN string, evt Event, history bool, ctx *evalCtx[T]) error {
	v := e.model.namespace[choiceQN].(*vertex)
	var elseT *transition
	var matches []*transition
	for _, tqn := range v.transitions {
		t := e.model.namespace[tqn].(*transition)
		if t.elseGuard {
			elseT = t
			continue
		}
		ok, err := e.evalGuardOf(t, instance, evt)
		if err != nil {
			return err
		}
		if ok {
			matches = append(matches, t)
		}
	}
	if kind.Is(v.kind, kind.Junction) && len(matches) > 1 {
		return illFormedf("%s: %d guards matched simultaneously, ambiguous junction", choiceQN, len(matches))
	}
	if len(matches) > 0 {
		return e.continueThrough(instance, matches[0], evt, history, ctx)
	}
	if elseT != nil {
		return e.continueThrough(instance, elseT, evt, history, ctx)
	}
	return illFormedf("%s: no guard matched and no Else fallback", choiceQN)
}

func (e *Engine[T]) continueThrough(instance T, t *transition, evt Event, history bool, ctx *evalCtx[T]) error {
	if err := e.runEffects(instance, t, evt); err != nil {
		return err
	}
	return e.runEnter(instance, t.compiled.enter, evt, history, ctx)
}

func (e *Engine[T]) runEntries(instance T, v *vertex, evt Event, history bool) error {
	for _, qn := range v.entries {
		b, ok := e.model.namespace[qn].(*behavior[T])
		if !ok {
			return fmt.Errorf("statechart: entry action %s is not compatible with instance type %T", qn, instance)
		}
		b.action(evt, instance, history)
	}
	return nil
}

func (e *Engine[T]) runExits(instance T, v *vertex, evt Event) error {
	for _, qn := range v.exits {
		b, ok := e.model.namespace[qn].(*behavior[T])
		if !ok {
			return fmt.Errorf("statechart: exit action %s is not compatible with instance type %T", qn, instance)
		}
		b.action(evt, instance, false)
	}
	return nil
}

func (e *Engine[T]) runEffects(instance T, t *transition, evt Event) error {
	for _, qn := range t.effects {
		b, ok := e.model.namespace[qn].(*behavior[T])
		if !ok {
			return fmt.Errorf("statechart: effect %s is not compatible with instance type %T", qn, instance)
		}
		b.action(evt, instance, false)
	}
	return nil
}

// cascadeCompletion drains ctx.pending: for every region that just
// settled on a FinalState, check whether every region of its owning
// state is likewise complete, and if so fire that state's completion
// transition. Firing one may itself enter further composites and push
// more work, so the loop continues until the queue runs dry, per spec
// §4.5.
func (e *Engine[T]) cascadeCompletion(instance T, ctx *evalCtx[T]) error {
	for {
		regionQN, ok := ctx.pending.Pop()
		if !ok {
			return nil
		}
		owner := e.model.parentState(regionQN)
		if owner == "" {
			continue
		}
		ov := asVertex(e.model, e.model.namespace[owner])
		if ov == nil {
			continue
		}
		complete := true
		for _, r := range ov.regions {
			cur := instance.GetCurrent(r)
			if cur == "" || !kind.Is(e.model.namespace[cur].Kind(), kind.FinalState) {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		completionT, err := e.selectTransition(instance, ov.transitions, zeroEvent, true)
		if err != nil {
			return err
		}
		if completionT == nil {
			continue
		}
		if err := e.fire(instance, completionT, ctx); err != nil {
			return err
		}
	}
}
