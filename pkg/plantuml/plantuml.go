// Package plantuml renders a built statechart Model as PlantUML state
// diagram text. It is the one concrete consumer of the Visitor hook (spec
// §4.6: "used by tooling; never by the evaluator") and never touches
// Instance state or the evaluator — Generate only ever reads the static
// tree a Model.Bootstrap has already validated.
package plantuml

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ziqian9206/statechart"
	"github.com/ziqian9206/statechart/embedded"
	"github.com/ziqian9206/statechart/kind"
)

func idFromQualifiedName(qualifiedName string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(qualifiedName, "/"), ".")
	return strings.ReplaceAll(strings.ReplaceAll(trimmed, "-", "_"), "/", ".")
}

func label(qualifiedName string) string {
	if qualifiedName == "" {
		return ""
	}
	return idFromQualifiedName(path.Base(qualifiedName))
}

func pseudoStereotype(k uint64) string {
	switch {
	case kind.Is(k, kind.Choice):
		return " <<choice>>"
	case kind.Is(k, kind.Junction):
		return " <<junction>>"
	case kind.History(k):
		return " <<history>>"
	case kind.Is(k, kind.Terminate):
		return " <<end>>"
	default:
		return ""
	}
}

// generator renders via direct recursive descent over the region/vertex
// tree rather than the flat traversal statechart.Walk offers, the same
// structural recursion the teacher repository's generateState/generateVertex
// pair uses — braces nest correctly for free when each region/state closes
// its own block before returning to its caller. Leaf rendering of each
// vertex and transition still goes through statechart.Accept so the
// Visitor hook is the thing actually producing the text, not a bypass of
// it.
type generator struct {
	statechart.BaseVisitor
	model   *statechart.Model
	builder *strings.Builder
	depth   int
}

func (g *generator) line(format string, args ...any) {
	fmt.Fprintf(g.builder, "%s%s\n", strings.Repeat(" ", g.depth*2), fmt.Sprintf(format, args...))
}

func (g *generator) VisitStateMachine(m *statechart.Model) error {
	fmt.Fprintf(g.builder, "@startuml %s\n", m.Id())
	for _, rqn := range m.Regions() {
		if err := g.region(rqn); err != nil {
			return err
		}
	}
	fmt.Fprintln(g.builder, "@enduml")
	return nil
}

func (g *generator) region(qualifiedName string) error {
	r, ok := g.model.Namespace()[qualifiedName].(embedded.Region)
	if !ok {
		return fmt.Errorf("plantuml: %s is not a region", qualifiedName)
	}
	for _, vqn := range r.Vertices() {
		if err := g.vertex(vqn); err != nil {
			return err
		}
	}
	for _, vqn := range r.Vertices() {
		if err := g.outboundTransitions(vqn); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) vertex(qualifiedName string) error {
	el, ok := g.model.Namespace()[qualifiedName]
	if !ok {
		return fmt.Errorf("plantuml: %s is not in the model", qualifiedName)
	}
	switch {
	case kind.Is(el.Kind(), kind.FinalState):
		return statechart.Accept(g, el)
	case kind.Is(el.Kind(), kind.PseudoState):
		if path.Base(qualifiedName) == ".initial" {
			return nil
		}
		return statechart.Accept(g, el)
	default:
		st := el.(embedded.State)
		if err := statechart.Accept(g, el); err != nil {
			return err
		}
		if len(st.Regions()) > 0 {
			g.depth++
			for i, rqn := range st.Regions() {
				if i > 0 {
					g.line("--")
				}
				if err := g.region(rqn); err != nil {
					return err
				}
			}
			g.depth--
			g.line("}")
		}
		return nil
	}
}

func (g *generator) outboundTransitions(sourceQN string) error {
	v, ok := g.model.Namespace()[sourceQN].(embedded.Vertex)
	if !ok {
		return nil
	}
	for _, tqn := range v.Transitions() {
		t := g.model.Namespace()[tqn].(embedded.Transition)
		if err := statechart.Accept(g, t); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) VisitState(v embedded.State) error {
	qn := v.QualifiedName()
	if len(v.Regions()) > 0 {
		g.line("state %s {", idFromQualifiedName(qn))
	} else {
		g.line("state %s", idFromQualifiedName(qn))
	}
	for _, eqn := range v.Entries() {
		g.line("state %s: entry / %s", idFromQualifiedName(qn), label(eqn))
	}
	for _, xqn := range v.Exits() {
		g.line("state %s: exit / %s", idFromQualifiedName(qn), label(xqn))
	}
	return nil
}

func (g *generator) VisitFinalState(v embedded.State) error {
	g.line("state %s <<end>>", idFromQualifiedName(v.QualifiedName()))
	return nil
}

func (g *generator) VisitPseudoState(v embedded.PseudoState) error {
	g.line("state %s%s", idFromQualifiedName(v.QualifiedName()), pseudoStereotype(v.Kind()))
	return nil
}

func (g *generator) VisitTransition(t embedded.Transition) error {
	source := t.Source()
	target := t.Target()
	var src string
	if path.Base(source) == ".initial" {
		src = "[*]"
	} else {
		src = idFromQualifiedName(source)
	}
	var text []string
	if t.Completion() {
		text = append(text, "completion")
	}
	if guard := t.Guard(); guard != "" {
		text = append(text, fmt.Sprintf("[%s]", label(guard)))
	}
	if effects := t.Effects(); len(effects) > 0 {
		names := make([]string, len(effects))
		for i, eqn := range effects {
			names[i] = label(eqn)
		}
		text = append(text, "/ "+strings.Join(names, ", "))
	}
	suffix := ""
	if len(text) > 0 {
		suffix = " : " + strings.Join(text, " ")
	}
	if target == "" {
		g.line("state %s%s", src, suffix)
		return nil
	}
	g.line("%s --> %s%s", src, idFromQualifiedName(target), suffix)
	return nil
}

// Generate writes model as PlantUML state diagram source to w, one region
// and composite state block at a time via recursive descent, with vertex
// and transition rendering itself dispatched through statechart.Accept —
// the one tool in this repository that exercises the Visitor hook.
func Generate(w io.Writer, model *statechart.Model) error {
	g := &generator{model: model, builder: &strings.Builder{}}
	if err := g.VisitStateMachine(model); err != nil {
		return err
	}
	_, err := w.Write([]byte(g.builder.String()))
	return err
}
