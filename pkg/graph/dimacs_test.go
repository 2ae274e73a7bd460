package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadGraph(t *testing.T) {
	input := `c generated test instance
p sp 4 3
a 1 2 5
a 2 3 7
a 3 4 2
junk line to skip
`
	g, err := ReadGraph(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())
	assert.True(t, g.IsUndirected())
	assert.Equal(t, Distance(12), g.GetDistance(1, 4, true))
}

func TestReadGraphDuplicateKeepsMinimum(t *testing.T) {
	input := "p sp 2 2\na 1 2 9\na 2 1 4\n"
	g, err := ReadGraph(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, Distance(4), g.Neighbors(1)[0].Distance)
}

func TestReadGraphRemovesIsolated(t *testing.T) {
	input := "p sp 5 1\na 1 2 1\n"
	g, err := ReadGraph(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount())
}

func TestReadGraphErrors(t *testing.T) {
	cases := map[string]string{
		"missing problem line": "a 1 2 3\n",
		"malformed arc":        "p sp 2 1\na 1 two 3\n",
		"out of range":         "p sp 2 1\na 1 9 3\n",
		"zero weight":          "p sp 2 1\na 1 2 0\n",
		"empty input":          "",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadGraph(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestWriteGraphRoundTrip(t *testing.T) {
	g := New(4)
	g.AddEdge(1, 2, 5, true)
	g.AddEdge(2, 3, 7, true)
	g.AddEdge(1, 4, 1, true)
	var sb strings.Builder
	require.NoError(t, g.WriteGraph(&sb))

	g2, err := ReadGraph(strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.ElementsMatch(t, g.Edges(), g2.Edges())
}
