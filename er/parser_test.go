package er_test

import (
	"testing"

	"github.com/inkboard/diagram/er"
	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"
)

func TestParseEntityBlock(t *testing.T) {
	src := `erDiagram
CUSTOMER {
  string id PK
  string email UK
  int orders FK "running total"
  string name
}`
	d, err := er.Parse(src)
	require.NoError(t, err, "Parse")

	e, ok := d.Entities["CUSTOMER"]
	require.True(t, ok, "CUSTOMER should exist")
	require.EqualValues(t, len(e.Attributes), 4, "attribute count")

	id := e.Attributes[0]
	assert.EqualValues(t, id.Type, "string", "type")
	assert.EqualValues(t, id.Name, "id", "name")
	require.EqualValues(t, len(id.Keys), 1, "one key")
	assert.EqualValues(t, id.Keys[0], "PK", "primary key badge")

	orders := e.Attributes[2]
	assert.EqualValues(t, orders.Comment, "running total", "trailing comment preserved")
	assert.EqualValues(t, orders.Keys[0], "FK", "key before comment")

	assert.EqualValues(t, len(e.Attributes[3].Keys), 0, "keyless attribute")
}

func TestParseRelationshipCardinalities(t *testing.T) {
	tests := map[string]struct {
		line      string
		wantCard1 er.Cardinality
		wantCard2 er.Cardinality
		wantSolid bool
	}{
		"OneToMany":      {line: "A ||--o{ B : has", wantCard1: er.One, wantCard2: er.ZeroMany, wantSolid: true},
		"OneToOne":       {line: "A ||--|| B : has", wantCard1: er.One, wantCard2: er.One, wantSolid: true},
		"ZeroOneToMany":  {line: "A |o--|{ B : has", wantCard1: er.ZeroOne, wantCard2: er.Many, wantSolid: true},
		"ManyToMany":     {line: "A }|--|{ B : has", wantCard1: er.Many, wantCard2: er.Many, wantSolid: true},
		"NonIdentifying": {line: "A ||..o{ B : has", wantCard1: er.One, wantCard2: er.ZeroMany, wantSolid: false},
		"ZeroManyLeft":   {line: "A }o--|| B : has", wantCard1: er.ZeroMany, wantCard2: er.One, wantSolid: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := er.Parse("erDiagram\n" + test.line)
			require.NoError(t, err, "Parse")
			require.EqualValues(t, len(d.Relationships), 1, "one relationship")
			rel := d.Relationships[0]
			assert.EqualValues(t, rel.Card1, test.wantCard1, "entity1 cardinality")
			assert.EqualValues(t, rel.Card2, test.wantCard2, "entity2 cardinality")
			assert.EqualValues(t, rel.Identifying, test.wantSolid, "identifying flag")
			assert.EqualValues(t, rel.Label, "has", "label")
		})
	}
}

func TestParseUndeclaredEntitiesMaterialise(t *testing.T) {
	d, err := er.Parse("erDiagram\nCUSTOMER ||--o{ ORDER : places")
	require.NoError(t, err, "Parse")
	require.EqualValues(t, len(d.Order), 2, "both endpoints materialise")
	assert.EqualValues(t, len(d.Entities["ORDER"].Attributes), 0, "default entity has no attributes")
}

func TestParseUnbalancedEntityBodyIsFatal(t *testing.T) {
	_, err := er.Parse("erDiagram\nCUSTOMER {\n  string id PK")
	assert.True(t, err != nil, "unclosed entity body must fail")
}

func TestParseMalformedLineIsSkipped(t *testing.T) {
	d, err := er.Parse("erDiagram\nA ||--o{ B : ok\n<<< nonsense >>>")
	require.NoError(t, err, "malformed line must not be fatal")
	assert.EqualValues(t, len(d.Relationships), 1, "well-formed relationship survives")
}
