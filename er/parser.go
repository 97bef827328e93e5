package er

import (
	"regexp"
	"strings"

	"github.com/inkboard/diagram/diagramerr"
	"github.com/inkboard/diagram/token"
)

var (
	entityOpenPattern = regexp.MustCompile(`^([A-Za-z_][\w-]*)\s*\{\s*$`)

	relationshipPattern = regexp.MustCompile(
		`^([A-Za-z_][\w-]*)\s+([|o}]{2})(--|\.\.)([|o{]{2})\s+([A-Za-z_][\w-]*)\s*(?::\s*(.+))?$`)

	attributeCommentPattern = regexp.MustCompile(`"([^"]*)"\s*$`)
	bareEntityPattern       = regexp.MustCompile(`^[A-Za-z_][\w-]*$`)
)

// leftCardinalities decodes the crow's-foot half facing entity1.
var leftCardinalities = map[string]Cardinality{
	"||": One,
	"|o": ZeroOne,
	"o|": ZeroOne,
	"}|": Many,
	"}o": ZeroMany,
}

// rightCardinalities decodes the half facing entity2.
var rightCardinalities = map[string]Cardinality{
	"||": One,
	"o|": ZeroOne,
	"|o": ZeroOne,
	"|{": Many,
	"o{": ZeroMany,
}

// Parse builds a Diagram from erDiagram source. An
// unbalanced entity body is fatal; other malformed lines are discarded.
// Relationships referencing undeclared entities materialise a default
// entity with no attributes.
func Parse(source string) (*Diagram, error) {
	d := newDiagram()

	var openEntity *Entity

	for lineNo, raw := range strings.Split(source, "\n") {
		line := raw
		if idx := strings.Index(line, "%%"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, "erDiagram") {
			continue
		}

		if openEntity != nil {
			if line == "}" {
				openEntity = nil
				continue
			}
			parseAttribute(openEntity, line)
			continue
		}

		if line == "}" {
			return nil, diagramerr.Parse(token.Position{Line: lineNo + 1}, "unbalanced '}'")
		}

		if m := relationshipPattern.FindStringSubmatch(line); m != nil {
			c1, ok1 := leftCardinalities[m[2]]
			c2, ok2 := rightCardinalities[m[4]]
			if !ok1 || !ok2 {
				continue
			}
			d.ensureEntity(m[1])
			d.ensureEntity(m[5])
			d.Relationships = append(d.Relationships, Relationship{
				Entity1: m[1], Entity2: m[5],
				Card1: c1, Card2: c2,
				Label:       strings.TrimSpace(m[6]),
				Identifying: m[3] == "--",
			})
			continue
		}

		if m := entityOpenPattern.FindStringSubmatch(line); m != nil {
			openEntity = d.ensureEntity(m[1])
			continue
		}

		// A bare entity name declares an empty entity.
		if bareEntityPattern.MatchString(line) {
			d.ensureEntity(line)
			continue
		}

		// No production matched: discarded.
	}

	if openEntity != nil {
		return nil, diagramerr.Parse(token.Position{}, "entity %q body is never closed", openEntity.ID)
	}

	return d, nil
}

// parseAttribute reads one "type name KEY… "comment"" row.
func parseAttribute(e *Entity, line string) {
	comment := ""
	if m := attributeCommentPattern.FindStringSubmatch(line); m != nil {
		comment = m[1]
		line = strings.TrimSpace(line[:len(line)-len(m[0])])
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return
	}

	attr := Attribute{Type: fields[0], Name: fields[1], Comment: comment}
	for _, tok := range fields[2:] {
		for _, key := range strings.Split(tok, ",") {
			switch strings.TrimSpace(key) {
			case "PK", "FK", "UK":
				attr.Keys = append(attr.Keys, strings.TrimSpace(key))
			}
		}
	}
	e.Attributes = append(e.Attributes, attr)
}
