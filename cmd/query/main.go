package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"path_oracle/pkg/graph"
	"path_oracle/pkg/label"
)

func main() {
	verifyGraph := flag.String("verify", "", "Graph file to verify answers against with Dijkstra")
	quiet := flag.Bool("quiet", false, "Suppress per-query output, report timing only")
	random := flag.Int("random", 0, "Generate N uniform random queries instead of reading a file")
	flag.Parse()

	if flag.NArg() < 1 || (flag.NArg() < 2 && *random == 0) {
		fmt.Fprintln(os.Stderr, "Usage: query [-verify graph] [-quiet] [-random N] <out-prefix> [queries]")
		os.Exit(1)
	}
	prefix := flag.Arg(0)

	index, err := label.ReadFile(prefix + "_cl")
	if err != nil {
		log.Fatalf("Failed to read index: %v", err)
	}

	var queries [][2]graph.NodeID
	if *random > 0 {
		for i := 0; i < *random; i++ {
			a, b := index.RandomQuery()
			queries = append(queries, [2]graph.NodeID{a, b})
		}
	} else {
		queries, err = readQueries(flag.Arg(1))
		if err != nil {
			log.Fatalf("Failed to read queries: %v", err)
		}
	}

	out := bufio.NewWriter(os.Stdout)
	start := time.Now()
	for _, q := range queries {
		dist := index.GetDistance(q[0], q[1])
		spc := index.GetSPC(q[0], q[1])
		if !*quiet {
			if dist == graph.Infinity {
				fmt.Fprintf(out, "%d %d inf 0\n", q[0], q[1])
			} else {
				fmt.Fprintf(out, "%d %d %d %d\n", q[0], q[1], dist, spc)
			}
		}
	}
	elapsed := time.Since(start)
	out.Flush()
	log.Printf("Ran %d queries in %s (%.2f us/query)",
		len(queries), elapsed.Round(time.Microsecond),
		float64(elapsed.Microseconds())/float64(max(len(queries), 1)))

	if *verifyGraph != "" {
		f, err := os.Open(*verifyGraph)
		if err != nil {
			log.Fatalf("Failed to open verification graph: %v", err)
		}
		g, err := graph.ReadGraph(f)
		f.Close()
		if err != nil {
			log.Fatalf("Failed to read verification graph: %v", err)
		}
		failures := 0
		for _, q := range queries {
			if !index.CheckQuery(q[0], q[1], g) {
				failures++
			}
		}
		if failures > 0 {
			log.Fatalf("Verification failed for %d/%d queries", failures, len(queries))
		}
		log.Printf("Verified %d queries against Dijkstra", len(queries))
	}
}

func readQueries(path string) ([][2]graph.NodeID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	var queries [][2]graph.NodeID
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: malformed query", lineNo)
		}
		a, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		b, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		queries = append(queries, [2]graph.NodeID{graph.NodeID(a), graph.NodeID(b)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}
	return queries, nil
}
