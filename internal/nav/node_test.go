package nav

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Sidebar {
	return Sidebar{ID: "developersSidebar", Items: []Node{
		DocRef{ID: "developers/intro", Label: "Intro"},
		Category{Label: "Architecture", Children: []Node{
			DocRef{ID: "developers/architecture/overview"},
			Category{Label: "Agents", Children: []Node{
				DocRef{ID: "developers/architecture/agents/board"},
			}},
		}},
		DocRef{ID: "developers/api-reference/root-get", Label: "Root", MethodBadge: "get"},
	}}
}

func TestWalkPositions(t *testing.T) {
	docs := Docs(sample())
	require.Len(t, docs, 4)

	got := make([]string, len(docs))
	for i, d := range docs {
		got[i] = d.Ref.ID + "@" + d.Position.String()
	}
	assert.Equal(t, []string{
		"developers/intro@developersSidebar[0]",
		"developers/architecture/overview@developersSidebar/Architecture[0]",
		"developers/architecture/agents/board@developersSidebar/Architecture/Agents[0]",
		"developers/api-reference/root-get@developersSidebar[2]",
	}, got)
}

func TestWalkStops(t *testing.T) {
	stop := errors.New("stop")
	visited := 0
	err := Walk(sample(), func(Position, Node) error {
		visited++
		if visited == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, visited)
}

func TestCheckCategories(t *testing.T) {
	require.NoError(t, CheckCategories(sample()))

	s := Sidebar{ID: "guides", Items: []Node{
		Category{Label: "Basics", Children: []Node{Category{Label: "Empty"}}},
	}}
	var empty *EmptyCategoryError
	require.ErrorAs(t, CheckCategories(s), &empty)
	assert.Equal(t, "Empty", empty.Label)
	assert.Equal(t, "guides/Basics[0]", empty.Position)
}

func TestSidebarJSON(t *testing.T) {
	data, err := json.Marshal(sample())
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"type": "doc", "id": "developers/intro", "label": "Intro"},
		{"type": "category", "label": "Architecture", "items": [
			{"type": "doc", "id": "developers/architecture/overview"},
			{"type": "category", "label": "Agents", "items": [
				{"type": "doc", "id": "developers/architecture/agents/board"}
			]}
		]},
		{"type": "doc", "id": "developers/api-reference/root-get", "label": "Root", "className": "api-method get"}
	]`, string(data))
}

func TestEncodeRejectsNil(t *testing.T) {
	_, err := Encode([]Node{nil})
	require.Error(t, err)
}
