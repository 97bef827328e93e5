package flow

import (
	"strconv"
	"strings"

	"github.com/inkboard/diagram/diagramerr"
	"github.com/inkboard/diagram/token"
)

func cyclicSubgraphError(id string) error {
	return diagramerr.Parse(token.Position{}, "subgraph %q contains itself", id)
}

// shapeDelim pairs an outer bracket delimiter with the shape it encodes.
// Ordered most-specific-first so greedy prefix/suffix matching never
// mistakes e.g. "[[" for "[".
type shapeDelim struct {
	open, close string
	shape       Shape
}

var shapeDelims = []shapeDelim{
	{"(((", ")))", ShapeDoubleCircle},
	{"((", "))", ShapeCircle},
	{"([", "])", ShapeStadium},
	{"[(", ")]", ShapeCylinder},
	{"[[", "]]", ShapeSubroutine},
	{"{{", "}}", ShapeHexagon},
	{"[/", "\\]", ShapeTrapezoid},
	{"[\\", "/]", ShapeTrapezoidAlt},
	{">", "]", ShapeAsymmetric},
	{"[", "]", ShapeRectangle},
	{"(", ")", ShapeRounded},
	{"{", "}", ShapeDiamond},
}

// parseNodeToken splits a token like "A[Start]" into its id, label and
// shape. A bare id with no delimiters yields ShapeRectangle and a label
// equal to the id (resolved later by ensureNode if the id is new).
func parseNodeToken(tok string) (id, label string, shape Shape, hasShape bool) {
	tok = strings.TrimSpace(tok)
	if tok == "[*]" {
		return "", "", ShapeStatePoint, true
	}
	i := 0
	for i < len(tok) && (isIdentRune(rune(tok[i]))) {
		i++
	}
	id = tok[:i]
	rest := tok[i:]
	if id == "" {
		return "", "", ShapeRectangle, false
	}
	if rest == "" {
		return id, id, ShapeRectangle, false
	}
	for _, d := range shapeDelims {
		if strings.HasPrefix(rest, d.open) && strings.HasSuffix(rest, d.close) && len(rest) >= len(d.open)+len(d.close) {
			label := rest[len(d.open) : len(rest)-len(d.close)]
			return id, label, d.shape, true
		}
	}
	return id, id, ShapeRectangle, false
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// arrowStyle maps an arrow token's textual form to its stroke style.
func arrowStyle(body string) EdgeStyle {
	switch {
	case strings.Contains(body, "."):
		return EdgeDotted
	case strings.Contains(body, "="):
		return EdgeThick
	default:
		return EdgeSolid
	}
}

// stateNodeID materialises a unique node id for each [*] occurrence in a
// state diagram: two [*] tokens are two different pseudostates, never
// one shared node. The counter lives on the parse call, not the package, so
// concurrent renders never race.
func stateNodeID(counter *int) string {
	*counter++
	return "__state_pseudo_" + strconv.Itoa(*counter)
}

// parseFlowLine handles one non-block statement: classDef/class/style,
// an edge chain (with optional parallel "&" links and inline labels), or
// a bare node declaration. target registers a referenced node id as a
// child of the enclosing subgraph, if any.
func parseFlowLine(g *Graph, line string, target func(string), counter *int) {
	// Interaction statements are accepted and discarded: interactivity is
	// out of scope, but letting the line fall through would synthesise a
	// bogus "click" node via forward-reference recovery.
	if clickPattern.MatchString(line) {
		return
	}
	if m := classDefPattern.FindStringSubmatch(line); m != nil {
		g.ClassDefs[m[1]] = parseProps(m[2])
		return
	}
	if m := classAssignPattern.FindStringSubmatch(line); m != nil {
		for _, id := range strings.Split(m[1], ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			g.ensureNode(id)
			g.NodeClass[id] = m[2]
			target(id)
		}
		return
	}
	if m := stylePattern.FindStringSubmatch(line); m != nil {
		g.ensureNode(m[1])
		g.NodeStyle[m[1]] = parseProps(m[2])
		target(m[1])
		return
	}

	if parseEdgeChain(g, line, target, counter) {
		return
	}

	// Bare node declaration, e.g. "A[Start]" with no arrow on the line.
	id, label, shape, hasShape := parseNodeToken(line)
	if id == "" {
		return // no production matched: discarded
	}
	n := g.ensureNode(id)
	if hasShape {
		n.Label = label
		n.Shape = shape
	}
	target(id)
}

func parseProps(s string) map[string]string {
	props := map[string]string{}
	for _, kv := range strings.Split(s, ",") {
		parts := strings.SplitN(strings.TrimSpace(kv), ":", 2)
		if len(parts) != 2 {
			continue
		}
		props[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return props
}

// parseEdgeChain splits a line on edge-arrow tokens, handling an
// arbitrary number of chained hops ("A --> B --> C") and parallel "&"
// lists on either side of any arrow ("A & B --> C", "A --> B & C"). Returns
// false if the line contains no recognisable arrow.
func parseEdgeChain(g *Graph, line string, target func(string), counter *int) bool {
	// State diagrams label transitions with a trailing ": text" instead of
	// the flowchart's |text| form.
	var trailingLabel string
	if g.IsStateDiagram {
		if idx := strings.Index(line, ":"); idx >= 0 {
			trailingLabel = strings.TrimSpace(line[idx+1:])
			line = line[:idx]
		}
	}

	hops := splitArrowHops(line)
	if len(hops) < 2 {
		return false
	}
	if trailingLabel != "" && hops[len(hops)-1].label == "" {
		hops[len(hops)-1].label = trailingLabel
	}

	sources := splitAmpersand(hops[0].text)
	for i := 1; i < len(hops); i++ {
		targets := splitAmpersand(hops[i].text)
		style := arrowStyle(hops[i].arrow)
		hasStart := hops[i].hasStartArrow
		hasEnd := hops[i].hasEndArrow
		for _, s := range sources {
			sid := resolveEndpoint(g, s, target, counter)
			for _, t := range targets {
				tid := resolveEndpoint(g, t, target, counter)
				g.Edges = append(g.Edges, Edge{
					Source: sid, Target: tid, Label: hops[i].label,
					Style: style, HasArrowStart: hasStart, HasArrowEnd: hasEnd,
				})
			}
		}
		sources = targets
	}
	return true
}

func resolveEndpoint(g *Graph, tok string, target func(string), counter *int) string {
	if tok == "[*]" {
		id := stateNodeID(counter)
		n := g.ensureNode(id)
		n.Label = ""
		n.Shape = ShapeStatePoint
		target(id)
		return id
	}
	id, label, shape, hasShape := parseNodeToken(tok)
	if id == "" {
		return tok
	}
	n := g.ensureNode(id)
	if hasShape {
		n.Label = label
		n.Shape = shape
	}
	target(id)
	return id
}

// splitAmpersand splits a parallel-link list on "&", but only at bracket
// depth zero and outside quotes, so an ampersand inside a node label
// ("A[a & b]") stays part of the label.
func splitAmpersand(s string) []string {
	var out []string
	depth := 0
	inQuote := false
	start := 0
	flush := func(end int) {
		part := strings.TrimSpace(s[start:end])
		if part != "" {
			out = append(out, part)
		}
		start = end + 1
	}
	for i, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[' || r == '(' || r == '{':
			depth++
		case r == ']' || r == ')' || r == '}':
			depth--
		case r == '&' && depth == 0:
			flush(i)
		}
	}
	flush(len(s))
	if len(out) == 0 {
		return []string{strings.TrimSpace(s)}
	}
	return out
}

type hop struct {
	text          string // node token(s) preceding this hop's arrow (for hop 0) or following it
	arrow         string
	label         string
	hasStartArrow bool
	hasEndArrow   bool
}

// arrowTokens lists recognised arrow bodies. findFirstArrow takes the
// earliest match and, at the same index, the longer token, so "-.->" wins
// over "-.-" and "<-->" over "<--".
var arrowTokens = []string{"-.->", "-.-", "<-->", "<--", "-->", "---", "===", "==>"}

// splitArrowHops scans line left to right, splitting on every recognised
// arrow token and recording the text between arrows plus any |label|
// immediately following an arrow.
func splitArrowHops(line string) []hop {
	var hops []hop
	remaining := line
	first := true
	for {
		idx, tokLen, tok := findFirstArrow(remaining)
		if idx < 0 {
			if first {
				return nil
			}
			hops[len(hops)-1].text = strings.TrimSpace(remaining)
			break
		}
		left := strings.TrimSpace(remaining[:idx])
		if first {
			hops = append(hops, hop{text: left})
			first = false
		} else {
			hops[len(hops)-1].text = left
		}
		after := remaining[idx+tokLen:]
		label := ""
		if lm := pipeLabelPrefix(after); lm != "" {
			label = lm
			after = after[strings.Index(after, "|")+len(lm)+2:]
		}
		hops = append(hops, hop{
			arrow:         tok,
			label:         label,
			hasStartArrow: strings.HasPrefix(tok, "<"),
			hasEndArrow:   strings.HasSuffix(tok, ">"),
		})
		remaining = after
	}
	return hops
}

func pipeLabelPrefix(s string) string {
	s = strings.TrimLeft(s, " \t")
	if !strings.HasPrefix(s, "|") {
		return ""
	}
	end := strings.Index(s[1:], "|")
	if end < 0 {
		return ""
	}
	return s[1 : 1+end]
}

func findFirstArrow(s string) (idx, length int, token string) {
	best := -1
	bestTok := ""
	for _, tok := range arrowTokens {
		if i := strings.Index(s, tok); i >= 0 && (best < 0 || i < best || (i == best && len(tok) > len(bestTok))) {
			best = i
			bestTok = tok
		}
	}
	if best < 0 {
		return -1, 0, ""
	}
	return best, len(bestTok), bestTok
}
