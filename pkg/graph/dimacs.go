package graph

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// ReadGraph parses the text graph format:
//
//	p sp <n> <m>
//	a <u> <v> <w>
//
// Duplicate undirected edges keep the minimum weight; lines with unknown
// identifiers are skipped; isolated vertices are removed. A malformed
// problem or arc line is a fatal parse error.
func ReadGraph(r io.Reader) (*Graph, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	var g *Graph
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "p":
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: malformed problem line", lineNo)
			}
			n, err := strconv.ParseUint(fields[2], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: node count: %w", lineNo, err)
			}
			g = New(int(n))
		case "a":
			if g == nil {
				return nil, fmt.Errorf("line %d: arc before problem line", lineNo)
			}
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: malformed arc line", lineNo)
			}
			v, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: arc tail: %w", lineNo, err)
			}
			w, err := strconv.ParseUint(fields[2], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: arc head: %w", lineNo, err)
			}
			d, err := strconv.ParseUint(fields[3], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: arc weight: %w", lineNo, err)
			}
			if v == 0 || w == 0 || int(v) > g.TotalNodes() || int(w) > g.TotalNodes() {
				return nil, fmt.Errorf("line %d: vertex id out of range", lineNo)
			}
			if d == 0 {
				return nil, fmt.Errorf("line %d: zero edge weight", lineNo)
			}
			g.AddEdge(NodeID(v), NodeID(w), Distance(d), true)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	if g == nil {
		return nil, fmt.Errorf("missing problem line")
	}
	g.RemoveIsolated()
	return g, nil
}

// WriteGraph emits the view's edges in the text graph format, sorted for
// reproducible output.
func (g *Graph) WriteGraph(w io.Writer) error {
	edges := g.Edges()
	slices.SortFunc(edges, func(x, y Edge) int {
		if x.A != y.A {
			return int(x.A) - int(y.A)
		}
		if x.B != y.B {
			return int(x.B) - int(y.B)
		}
		return int(x.D) - int(y.D)
	})
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "p sp %d %d\n", g.TotalNodes(), len(edges))
	for _, e := range edges {
		fmt.Fprintf(bw, "a %d %d %d\n", e.A, e.B, e.D)
	}
	return bw.Flush()
}
