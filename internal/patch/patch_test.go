package patch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/patch"
)

func reason(t *testing.T, err error) any {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
	return errors.GetMeta(err)["reason"]
}

func TestParseDocument(t *testing.T) {
	p, err := patch.Parse(`{"members":[{"character_name":"Fenrir"}],"name":"Rush"}`, patch.Team)
	require.NoError(t, err)

	assert.Equal(t, patch.ShapeDocument, p.Shape)
	name, ok := p.String("name")
	assert.True(t, ok)
	assert.Equal(t, "Rush", name)
	members, ok := p.Array("members")
	require.True(t, ok)
	assert.Len(t, members, 1)
}

func TestParseBareList(t *testing.T) {
	p, err := patch.Parse(`[{"character_name":"Fenrir"},{"character_name":"Thane","note":"tank"}]`, patch.Team)
	require.NoError(t, err)

	assert.Equal(t, patch.ShapeList, p.Shape)
	members, ok := p.Array("members")
	require.True(t, ok)
	assert.Len(t, members, 2)
	assert.False(t, p.Has("name"))
}

func TestParseWrappedDocument(t *testing.T) {
	p, err := patch.Parse(`[{"name":"Wrapped","members":[]}]`, patch.Team)
	require.NoError(t, err)

	assert.Equal(t, patch.ShapeDocument, p.Shape)
	name, _ := p.String("name")
	assert.Equal(t, "Wrapped", name)
}

func TestParseSingleMemberArrayIsList(t *testing.T) {
	p, err := patch.Parse(`[{"character_name":"Fenrir"}]`, patch.Team)
	require.NoError(t, err)
	assert.Equal(t, patch.ShapeList, p.Shape)
}

func TestParseTierListEntries(t *testing.T) {
	p, err := patch.Parse(`{"entries":[{"character_name":"Fenrir","tier":"S"}]}`, patch.TierList)
	require.NoError(t, err)
	assert.Equal(t, patch.ShapeDocument, p.Shape)

	_, err = patch.Parse(`{"members":[]}`, patch.TierList)
	assert.Equal(t, patch.ReasonShape, reason(t, err))
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{"not json", "not json", patch.ReasonSyntax},
		{"empty", "   ", patch.ReasonSyntax},
		{"truncated", `{"members":[`, patch.ReasonSyntax},
		{"object without members", `{"name":"x"}`, patch.ReasonShape},
		{"string", `"members"`, patch.ReasonShape},
		{"number", `42`, patch.ReasonShape},
		{"null", `null`, patch.ReasonShape},
		{"empty array", `[]`, patch.ReasonShape},
		{"array of strings", `["Fenrir"]`, patch.ReasonShape},
		{"member without name", `[{"character_name":"Fenrir"},{"note":"x"}]`, patch.ReasonShape},
		{"non-string name", `[{"character_name":7}]`, patch.ReasonShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := patch.Parse(tt.input, patch.Team)
			assert.Equal(t, tt.reason, reason(t, err))
		})
	}
}

func TestSyntaxAndShapeMessagesDiffer(t *testing.T) {
	_, syntaxErr := patch.Parse("not json", patch.Team)
	_, shapeErr := patch.Parse(`{"name":"x"}`, patch.Team)

	assert.Contains(t, errors.GetMessage(syntaxErr), "Invalid JSON")
	assert.Contains(t, errors.GetMessage(shapeErr), "wrong shape")
}

func TestTypedAccessors(t *testing.T) {
	p, err := patch.Parse(`{"members":[],"last_updated":12,"bench":["a"," b "],"bench_notes":{"a":"x"},"faction":3}`, patch.Team)
	require.NoError(t, err)

	n, ok := p.Number("last_updated")
	assert.True(t, ok)
	assert.Equal(t, 12.0, n)

	_, ok = p.String("faction")
	assert.False(t, ok)

	names, ok := patch.AsStrings(p.Fields["bench"])
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, names)

	notes, ok := patch.AsStringMap(p.Fields["bench_notes"])
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"a": "x"}, notes)

	_, ok = patch.AsStrings([]byte(`["a", 1]`))
	assert.False(t, ok)
}
