package sequence_test

import (
	"testing"

	"github.com/inkboard/diagram/sequence"
	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"
)

func TestParseParticipants(t *testing.T) {
	src := `sequenceDiagram
participant A as Alice
actor B as Bob
A->>B: Hello`
	d, err := sequence.Parse(src)
	require.NoError(t, err, "Parse")
	require.EqualValues(t, len(d.Participants), 2, "participant count")
	assert.EqualValues(t, d.Participants[0].Label, "Alice", "aliased label")
	assert.EqualValues(t, d.Participants[1].Kind, sequence.KindActor, "actor kind")
}

func TestParseImplicitParticipants(t *testing.T) {
	d, err := sequence.Parse("sequenceDiagram\nA->>B: Hi")
	require.NoError(t, err, "Parse")
	require.EqualValues(t, len(d.Participants), 2, "endpoints materialise participants")
	assert.EqualValues(t, d.Participants[0].ID, "A", "first mention first")
	assert.EqualValues(t, d.Participants[0].Label, "A", "default label is the id")
}

func TestParseArrowVariants(t *testing.T) {
	tests := map[string]struct {
		arrow      string
		wantFilled bool
		wantLine   sequence.LineStyle
	}{
		"SolidFilled":  {arrow: "->>", wantFilled: true, wantLine: sequence.LineSolid},
		"SolidOpen":    {arrow: "->", wantFilled: false, wantLine: sequence.LineSolid},
		"DashedFilled": {arrow: "-->>", wantFilled: true, wantLine: sequence.LineDashed},
		"DashedOpen":   {arrow: "-->", wantFilled: false, wantLine: sequence.LineDashed},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := sequence.Parse("sequenceDiagram\nA" + test.arrow + "B: msg")
			require.NoError(t, err, "Parse")
			require.EqualValues(t, len(d.Items), 1, "one message")
			m := d.Items[0].Msg
			assert.EqualValues(t, m.Filled, test.wantFilled, "filled arrowhead")
			assert.EqualValues(t, m.Line, test.wantLine, "line style")
			assert.EqualValues(t, m.Label, "msg", "label")
		})
	}
}

func TestParseBlocks(t *testing.T) {
	src := `sequenceDiagram
alt happy path
  A->>B: ok
else sad path
  A->>B: fail
end`
	d, err := sequence.Parse(src)
	require.NoError(t, err, "Parse")

	var kinds []sequence.ItemKind
	for _, it := range d.Items {
		kinds = append(kinds, it.Kind)
	}
	want := []sequence.ItemKind{
		sequence.ItemBlockStart, sequence.ItemMessage,
		sequence.ItemDivider, sequence.ItemMessage, sequence.ItemBlockEnd,
	}
	require.EqualValues(t, len(kinds), len(want), "item count")
	for i := range want {
		assert.EqualValues(t, kinds[i], want[i], "item %d kind", i)
	}
	assert.EqualValues(t, d.Items[0].BlockLabel, "happy path", "block label")
	assert.EqualValues(t, d.Items[2].DividerLabel, "sad path", "divider label")
}

func TestParseMismatchedEndIsIgnored(t *testing.T) {
	d, err := sequence.Parse("sequenceDiagram\nend\nA->>B: hi\nend")
	require.NoError(t, err, "Parse")
	for _, it := range d.Items {
		assert.True(t, it.Kind != sequence.ItemBlockEnd, "surplus end must not produce a block end")
	}
}

func TestParseUnclosedBlockIsBalancedAtEOF(t *testing.T) {
	d, err := sequence.Parse("sequenceDiagram\nloop forever\nA->>B: tick")
	require.NoError(t, err, "Parse")
	last := d.Items[len(d.Items)-1]
	assert.EqualValues(t, last.Kind, sequence.ItemBlockEnd, "EOF closes the open block")
}

func TestParseNotes(t *testing.T) {
	src := `sequenceDiagram
A->>B: Hello
Note right of B: Think
Note over A,B: Both`
	d, err := sequence.Parse(src)
	require.NoError(t, err, "Parse")
	require.EqualValues(t, len(d.Items), 3, "item count")

	right := d.Items[1].Note
	require.True(t, right != nil, "right-of note parsed")
	assert.EqualValues(t, right.Position, sequence.NoteRightOf, "position")
	assert.EqualValues(t, right.Text, "Think", "text")

	over := d.Items[2].Note
	require.True(t, over != nil, "over note parsed")
	assert.EqualValues(t, len(over.Participants), 2, "over spans two participants")
}

func TestParseActivations(t *testing.T) {
	src := `sequenceDiagram
A->>+B: start
B-->>-A: done
activate A
deactivate A`
	d, err := sequence.Parse(src)
	require.NoError(t, err, "Parse")

	assert.True(t, d.Items[0].Msg.Activate, "+ suffix activates the target")
	assert.True(t, d.Items[1].Msg.Deactivate, "- suffix deactivates the sender")
	assert.EqualValues(t, d.Items[2].Kind, sequence.ItemActivate, "activate directive")
	assert.EqualValues(t, d.Items[3].Kind, sequence.ItemDeactivate, "deactivate directive")
}

func TestParseSelfMessage(t *testing.T) {
	d, err := sequence.Parse("sequenceDiagram\nA->>A: think")
	require.NoError(t, err, "Parse")
	require.EqualValues(t, len(d.Items), 1, "one message")
	assert.True(t, d.Items[0].Msg.SelfMessage(), "from == to is a self message")
}
