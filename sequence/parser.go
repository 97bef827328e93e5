package sequence

import (
	"regexp"
	"strings"
)

var (
	participantPattern = regexp.MustCompile(`(?i)^(participant|actor)\s+(\S+?)(?:\s+as\s+(.+))?\s*$`)
	messagePattern     = regexp.MustCompile(`^(\S+?)\s*(-->>|->>|-->|->)\s*([+-]?)(\S+?)\s*:\s*(.*)$`)
	notePattern        = regexp.MustCompile(`(?i)^note\s+(left of|right of|over)\s+([^:]+?)\s*:\s*(.*)$`)
	blockPattern       = regexp.MustCompile(`(?i)^(loop|alt|opt|par)\b\s*(.*)$`)
	dividerPattern     = regexp.MustCompile(`(?i)^(else|and)\b\s*(.*)$`)
	activatePattern    = regexp.MustCompile(`(?i)^(activate|deactivate)\s+(\S+)\s*$`)
)

// Parse builds a Diagram from sequenceDiagram source.
// Malformed lines are discarded; a mismatched "end" closes the innermost
// open block and a surplus "end" is ignored.
func Parse(source string) (*Diagram, error) {
	d := newDiagram()
	openBlocks := 0

	for _, raw := range strings.Split(source, "\n") {
		line := raw
		if idx := strings.Index(line, "%%"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, "sequenceDiagram") {
			continue
		}

		if m := participantPattern.FindStringSubmatch(line); m != nil {
			kind := KindParticipant
			if strings.EqualFold(m[1], "actor") {
				kind = KindActor
			}
			p := d.ensureParticipant(m[2])
			p.Kind = kind
			if m[3] != "" {
				p.Label = strings.TrimSpace(m[3])
			}
			continue
		}

		if m := blockPattern.FindStringSubmatch(line); m != nil {
			d.Items = append(d.Items, Item{
				Kind:       ItemBlockStart,
				BlockKind:  BlockKind(strings.ToLower(m[1])),
				BlockLabel: strings.TrimSpace(m[2]),
			})
			openBlocks++
			continue
		}
		if m := dividerPattern.FindStringSubmatch(line); m != nil && openBlocks > 0 {
			d.Items = append(d.Items, Item{Kind: ItemDivider, DividerLabel: strings.TrimSpace(m[2])})
			continue
		}
		if strings.EqualFold(line, "end") {
			if openBlocks > 0 {
				d.Items = append(d.Items, Item{Kind: ItemBlockEnd})
				openBlocks--
			}
			continue
		}

		if m := notePattern.FindStringSubmatch(line); m != nil {
			pos := NoteOver
			switch strings.ToLower(m[1]) {
			case "left of":
				pos = NoteLeftOf
			case "right of":
				pos = NoteRightOf
			}
			var ids []string
			for _, id := range strings.Split(m[2], ",") {
				id = strings.TrimSpace(id)
				if id != "" {
					d.ensureParticipant(id)
					ids = append(ids, id)
				}
			}
			if len(ids) == 0 {
				continue
			}
			d.Items = append(d.Items, Item{Kind: ItemNote, Note: &Note{Position: pos, Participants: ids, Text: m[3]}})
			continue
		}

		if m := activatePattern.FindStringSubmatch(line); m != nil {
			kind := ItemActivate
			if strings.EqualFold(m[1], "deactivate") {
				kind = ItemDeactivate
			}
			d.ensureParticipant(m[2])
			d.Items = append(d.Items, Item{Kind: kind, Target: m[2]})
			continue
		}

		if m := messagePattern.FindStringSubmatch(line); m != nil {
			msg := &Message{
				From:  m[1],
				To:    m[4],
				Label: m[5],
			}
			switch m[2] {
			case "->>":
				msg.Filled = true
			case "-->>":
				msg.Filled = true
				msg.Line = LineDashed
			case "-->":
				msg.Line = LineDashed
			}
			switch m[3] {
			case "+":
				msg.Activate = true
			case "-":
				msg.Deactivate = true
			}
			d.ensureParticipant(msg.From)
			d.ensureParticipant(msg.To)
			d.Items = append(d.Items, Item{Kind: ItemMessage, Msg: msg})
			continue
		}

		// No production matched: discarded, per the failure semantics.
	}

	// Close any blocks left open at EOF so layout sees balanced fences.
	for openBlocks > 0 {
		d.Items = append(d.Items, Item{Kind: ItemBlockEnd})
		openBlocks--
	}

	return d, nil
}
