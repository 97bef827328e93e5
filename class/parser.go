package class

import (
	"regexp"
	"strings"

	"github.com/inkboard/diagram/diagramerr"
	"github.com/inkboard/diagram/token"
)

var (
	classOpenPattern    = regexp.MustCompile(`^class\s+([\w~]+)\s*\{\s*$`)
	classBarePattern    = regexp.MustCompile(`^class\s+([\w~]+)\s*$`)
	namespacePattern    = regexp.MustCompile(`^namespace\s+([\w]+)\s*\{\s*$`)
	inlineMemberPattern = regexp.MustCompile(`^([\w~]+)\s*:\s*(.+)$`)
	annotationPattern   = regexp.MustCompile(`^<<([^>]+)>>$`)

	relationshipPattern = regexp.MustCompile(`^([\w~]+)\s*(?:"([^"]*)"\s*)?` +
		`(<\|--|--\|>|<\|\.\.|\.\.\|>|\*--|--\*|o--|--o|<--|-->|<\.\.|\.\.>|--|\.\.)` +
		`\s*(?:"([^"]*)"\s*)?([\w~]+)\s*(?::\s*(.+))?$`)
)

// relationshipKinds maps a connector token to its type, which endpoint
// carries the marker, and whether a marker is drawn at all.
var relationshipKinds = map[string]struct {
	typ       RelationshipType
	at        MarkerEnd
	hasMarker bool
}{
	"<|--": {Inheritance, AtFrom, true},
	"--|>": {Inheritance, AtTo, true},
	"<|..": {Realization, AtFrom, true},
	"..|>": {Realization, AtTo, true},
	"*--":  {Composition, AtFrom, true},
	"--*":  {Composition, AtTo, true},
	"o--":  {Aggregation, AtFrom, true},
	"--o":  {Aggregation, AtTo, true},
	"<--":  {Association, AtFrom, true},
	"-->":  {Association, AtTo, true},
	"<..":  {Dependency, AtFrom, true},
	"..>":  {Dependency, AtTo, true},
	"--":   {Association, AtTo, false},
	"..":   {Dependency, AtTo, false},
}

// Parse builds a Diagram from classDiagram source. An
// unbalanced class or namespace body is fatal; other malformed lines are
// discarded.
func Parse(source string) (*Diagram, error) {
	d := newDiagram()

	var openClass *Class
	namespace := ""
	inNamespace := false

	for lineNo, raw := range strings.Split(source, "\n") {
		line := raw
		if idx := strings.Index(line, "%%"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, "classDiagram") {
			continue
		}

		if openClass != nil {
			if line == "}" {
				openClass = nil
				continue
			}
			parseBodyLine(openClass, line)
			continue
		}

		if line == "}" {
			if inNamespace {
				inNamespace = false
				namespace = ""
				continue
			}
			return nil, diagramerr.Parse(token.Position{Line: lineNo + 1}, "unbalanced '}'")
		}

		if m := namespacePattern.FindStringSubmatch(line); m != nil {
			if inNamespace {
				return nil, diagramerr.Parse(token.Position{Line: lineNo + 1}, "nested namespace %q", m[1])
			}
			inNamespace = true
			namespace = m[1]
			d.Namespaces = append(d.Namespaces, namespace)
			continue
		}

		if m := classOpenPattern.FindStringSubmatch(line); m != nil {
			openClass = declareClass(d, m[1], namespace)
			continue
		}
		if m := classBarePattern.FindStringSubmatch(line); m != nil {
			declareClass(d, m[1], namespace)
			continue
		}

		if m := relationshipPattern.FindStringSubmatch(line); m != nil {
			kind, ok := relationshipKinds[m[3]]
			if !ok {
				continue
			}
			from := genericID(m[1])
			to := genericID(m[5])
			d.ensureClass(from).Label = genericLabel(m[1])
			d.ensureClass(to).Label = genericLabel(m[5])
			d.Relationships = append(d.Relationships, Relationship{
				From: from, To: to,
				Type: kind.typ, MarkerAt: kind.at, NoMarker: !kind.hasMarker,
				FromCardinality: m[2], ToCardinality: m[4],
				Label: strings.TrimSpace(m[6]),
			})
			continue
		}

		if m := inlineMemberPattern.FindStringSubmatch(line); m != nil {
			c := d.ensureClass(genericID(m[1]))
			parseBodyLine(c, m[2])
			continue
		}

		// No production matched: discarded.
	}

	if openClass != nil {
		return nil, diagramerr.Parse(token.Position{}, "class %q body is never closed", openClass.ID)
	}
	if inNamespace {
		return nil, diagramerr.Parse(token.Position{}, "namespace %q body is never closed", namespace)
	}

	return d, nil
}

func declareClass(d *Diagram, rawID, namespace string) *Class {
	c := d.ensureClass(genericID(rawID))
	c.Label = genericLabel(rawID)
	if namespace != "" {
		c.Namespace = namespace
	}
	return c
}

// genericID strips the ~T~ generic suffix so "Stack~int~" and "Stack"
// refer to the same class.
func genericID(raw string) string {
	if i := strings.Index(raw, "~"); i >= 0 {
		return raw[:i]
	}
	return raw
}

// genericLabel converts the ~T~ generic notation to angle brackets for
// display: Stack~int~ becomes Stack<int>.
func genericLabel(raw string) string {
	var b strings.Builder
	open := false
	for _, r := range raw {
		if r != '~' {
			b.WriteRune(r)
			continue
		}
		if open {
			b.WriteByte('>')
		} else {
			b.WriteByte('<')
		}
		open = !open
	}
	return b.String()
}

// parseBodyLine handles one member row or annotation inside a class body.
func parseBodyLine(c *Class, line string) {
	if m := annotationPattern.FindStringSubmatch(line); m != nil {
		c.Annotation = m[1]
		return
	}

	mem := Member{}
	switch {
	case strings.HasPrefix(line, "+"):
		mem.Visibility = VisPublic
		line = line[1:]
	case strings.HasPrefix(line, "-"):
		mem.Visibility = VisPrivate
		line = line[1:]
	case strings.HasPrefix(line, "#"):
		mem.Visibility = VisProtected
		line = line[1:]
	case strings.HasPrefix(line, "~"):
		mem.Visibility = VisPackage
		line = line[1:]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	if strings.HasSuffix(line, "$") {
		mem.IsStatic = true
		line = strings.TrimSuffix(line, "$")
	}
	if strings.HasSuffix(line, "*") {
		mem.IsAbstract = true
		line = strings.TrimSuffix(line, "*")
	}
	line = strings.TrimSpace(line)

	if open := strings.Index(line, "("); open >= 0 {
		closing := strings.LastIndex(line, ")")
		if closing < open {
			return // unbalanced parens: not a member row
		}
		mem.IsMethod = true
		mem.Name = strings.TrimSpace(line[:open])
		mem.Params = genericLabel(strings.TrimSpace(line[open+1 : closing]))
		// The $ and * classifiers may sit directly after the parens,
		// before the return type: "+clone()* Animal".
		rest := strings.TrimSpace(line[closing+1:])
		for {
			if strings.HasPrefix(rest, "*") {
				mem.IsAbstract = true
				rest = strings.TrimSpace(rest[1:])
				continue
			}
			if strings.HasPrefix(rest, "$") {
				mem.IsStatic = true
				rest = strings.TrimSpace(rest[1:])
				continue
			}
			break
		}
		mem.Type = genericLabel(rest)
		if mem.Name == "" {
			return
		}
		c.Methods = append(c.Methods, mem)
		return
	}

	fields := strings.Fields(line)
	switch len(fields) {
	case 1:
		mem.Name = genericLabel(fields[0])
	default:
		mem.Type = genericLabel(fields[0])
		mem.Name = genericLabel(strings.Join(fields[1:], " "))
	}
	c.Attributes = append(c.Attributes, mem)
}
