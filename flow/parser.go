package flow

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	headerPattern      = regexp.MustCompile(`(?i)^(graph|flowchart)\s+(TD|TB|BT|LR|RL)\s*$`)
	headerNoDirPattern = regexp.MustCompile(`(?i)^(graph|flowchart)\s*$`)

	subgraphPattern    = regexp.MustCompile(`^subgraph\s+(?:(\w[\w-]*)\s*\[([^\]]*)\]|"([^"]+)"|(\w[\w-]*))\s*$`)
	stateOpenPattern   = regexp.MustCompile(`^state\s+(\w[\w-]*)\s*\{\s*$`)
	stateInlinePattern = regexp.MustCompile(`^state\s+(\w[\w-]*)\s*\{(.*)\}\s*$`)

	clickPattern = regexp.MustCompile(`^click\s+[\w-]+\s`)

	classDefPattern    = regexp.MustCompile(`^classDef\s+([\w-]+)\s+(.+)$`)
	classAssignPattern = regexp.MustCompile(`^class\s+([\w, -]+?)\s+([\w-]+)\s*$`)
	stylePattern       = regexp.MustCompile(`^style\s+([\w-]+)\s+(.+)$`)
)

// blockFrame is an open subgraph or composite-state block awaiting its
// closing "end" (subgraph) or "}" (state composite).
type blockFrame struct {
	sg     *Subgraph
	closer string
}

// Parse builds a Graph from Mermaid flowchart/graph/stateDiagram-v2
// source. Malformed lines are discarded rather than raised, except
// for cyclic subgraph containment, which is fatal.
func Parse(source string) (*Graph, error) {
	g := newGraph()

	lines := splitAndStripComments(source)
	if len(lines) == 0 {
		return g, nil
	}

	// The header is the first non-blank line once comments are stripped.
	idx := 0
	for idx < len(lines) && strings.TrimSpace(lines[idx]) == "" {
		idx++
	}
	if idx < len(lines) {
		header := strings.TrimSpace(lines[idx])
		switch {
		case strings.EqualFold(header, "stateDiagram-v2") || strings.EqualFold(header, "stateDiagram"):
			g.IsStateDiagram = true
			idx++
		default:
			if m := headerPattern.FindStringSubmatch(header); m != nil {
				g.Direction = strings.ToUpper(m[2])
				idx++
			} else if headerNoDirPattern.MatchString(header) {
				idx++
			}
			// Anything else (including an unrecognised header) still
			// dispatches here from Detect; keep parsing from this line so
			// a bare edge-only source is not silently dropped.
		}
	}

	var stack []blockFrame
	stateCounter := 0
	var parseErr error

	closeFrame := func(sg *Subgraph) {
		if len(stack) > 0 {
			parent := stack[len(stack)-1].sg
			if err := checkNoCycle(sg, parent); err != nil {
				parseErr = err
				return
			}
			parent.Nested = append(parent.Nested, sg)
		} else {
			g.Subgraphs = append(g.Subgraphs, sg)
		}
	}

	popMatching := func(closer string) {
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].closer == closer {
				closed := stack[i]
				stack = stack[:i]
				closeFrame(closed.sg)
				return
			}
		}
	}

	for _, raw := range lines[idx:] {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if line == "end" {
			popMatching("end")
			continue
		}
		if line == "}" {
			popMatching("}")
			continue
		}

		if m := subgraphPattern.FindStringSubmatch(line); m != nil {
			id, label := subgraphIDAndLabel(m, &stateCounter)
			stack = append(stack, blockFrame{sg: &Subgraph{ID: id, Label: label}, closer: "end"})
			continue
		}

		if g.IsStateDiagram {
			if m := stateInlinePattern.FindStringSubmatch(line); m != nil {
				sg := &Subgraph{ID: m[1], Label: m[1]}
				target := func(id string) { appendChild(sg, id) }
				for _, stmt := range strings.Split(m[2], ";") {
					stmt = strings.TrimSpace(stmt)
					if stmt != "" {
						parseFlowLine(g, stmt, target, &stateCounter)
					}
				}
				closeFrame(sg)
				continue
			}
			if m := stateOpenPattern.FindStringSubmatch(line); m != nil {
				stack = append(stack, blockFrame{sg: &Subgraph{ID: m[1], Label: m[1]}, closer: "}"})
				continue
			}
		}

		var target func(childID string)
		if len(stack) > 0 {
			top := stack[len(stack)-1].sg
			target = func(childID string) { appendChild(top, childID) }
		} else {
			target = func(string) {}
		}
		parseFlowLine(g, line, target, &stateCounter)
	}

	// Close any unterminated blocks at EOF (best-effort recovery).
	for len(stack) > 0 {
		closed := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		closeFrame(closed.sg)
	}

	if parseErr != nil {
		return nil, parseErr
	}
	return g, nil
}

// splitAndStripComments splits source into lines, stripping full-line and
// trailing "%%" comments.
func splitAndStripComments(source string) []string {
	var out []string
	for _, line := range strings.Split(source, "\n") {
		if idx := strings.Index(line, "%%"); idx >= 0 {
			line = line[:idx]
		}
		out = append(out, line)
	}
	return out
}

func subgraphIDAndLabel(m []string, counter *int) (string, string) {
	switch {
	case m[1] != "":
		return m[1], m[2]
	case m[3] != "":
		*counter++
		return "subgraph" + strconv.Itoa(*counter), m[3]
	default:
		return m[4], m[4]
	}
}

func appendChild(sg *Subgraph, id string) {
	for _, existing := range sg.ChildIDs {
		if existing == id {
			return
		}
	}
	sg.ChildIDs = append(sg.ChildIDs, id)
}

// checkNoCycle guards against a subgraph containing itself through its
// own descendants, which is fatal.
func checkNoCycle(child, parent *Subgraph) error {
	if child.ID == parent.ID {
		return cyclicSubgraphError(child.ID)
	}
	for _, n := range child.Nested {
		if err := checkNoCycle(n, parent); err != nil {
			return err
		}
	}
	return nil
}
