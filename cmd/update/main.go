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

	"path_oracle/pkg/ch"
	"path_oracle/pkg/dyn"
	"path_oracle/pkg/graph"
	"path_oracle/pkg/label"
)

func main() {
	mode := flag.String("mode", "seq", "Label repair execution: seq, opt or par")
	workers := flag.Int("workers", 4, "Worker count for -mode par")
	flag.Parse()

	if flag.NArg() != 4 {
		fmt.Fprintln(os.Stderr, "Usage: update [-mode seq|opt|par] <graph> <out-prefix> <updates> <d|i>")
		os.Exit(1)
	}
	graphPath, prefix, updatesPath, direction := flag.Arg(0), flag.Arg(1), flag.Arg(2), flag.Arg(3)
	if direction != "d" && direction != "i" {
		fmt.Fprintln(os.Stderr, "update direction must be d (decrease) or i (increase)")
		os.Exit(1)
	}

	f, err := os.Open(graphPath)
	if err != nil {
		log.Fatalf("Failed to open graph: %v", err)
	}
	g, err := graph.ReadGraph(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to read graph: %v", err)
	}

	index, err := label.ReadFile(prefix + "_cl")
	if err != nil {
		log.Fatalf("Failed to read index: %v", err)
	}
	dag, err := ch.ReadFile(prefix + "_gs")
	if err != nil {
		log.Fatalf("Failed to read shortcut graph: %v", err)
	}

	updates, contracted, err := readUpdates(updatesPath, direction, g, index)
	if err != nil {
		log.Fatalf("Failed to read updates: %v", err)
	}

	start := time.Now()
	switch {
	case direction == "d" && *mode == "seq":
		dyn.Decrease(dag, index, updates)
	case direction == "d" && *mode == "opt":
		dyn.DecreaseOpt(dag, index, updates)
	case direction == "d" && *mode == "par":
		dyn.DecreasePar(dag, index, updates, *workers)
	case direction == "i" && *mode == "seq":
		dyn.Increase(g, dag, index, updates)
	case direction == "i" && *mode == "opt":
		dyn.IncreaseOpt(g, dag, index, updates)
	case direction == "i" && *mode == "par":
		dyn.IncreasePar(g, dag, index, updates, *workers)
	default:
		log.Fatalf("Unknown mode %q", *mode)
	}
	dyn.RepairContracted(g, index, contracted)
	log.Printf("Applied %d updates (%d on contracted chains) in %s",
		len(updates), len(contracted), time.Since(start).Round(time.Microsecond))
}

// readUpdates parses the updates file and applies each weight change to the
// graph. Changes touching a contracted pendant become offset rewrites;
// everything else feeds the shortcut graph repair.
func readUpdates(path, direction string, g *graph.Graph, index *label.ContractionIndex) ([]ch.Update, []dyn.ContractedUpdate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	var updates []ch.Update
	var contracted []dyn.ContractedUpdate
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, nil, fmt.Errorf("line %d: malformed update", lineNo)
		}
		a64, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		b64, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		w64, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		a, b := graph.NodeID(a64), graph.NodeID(b64)
		weight := graph.Distance(w64)
		var newWeight graph.Distance
		if direction == "d" {
			newWeight = graph.Distance(float64(weight) * 0.5)
		} else {
			newWeight = graph.Distance(float64(weight) * 1.5)
		}
		g.UpdateEdge(a, b, newWeight)
		g.UpdateEdge(b, a, newWeight)

		if index.IsContracted(a) || index.IsContracted(b) {
			x, y := index.Label(a), index.Label(b)
			if x.DistanceOffset > y.DistanceOffset {
				contracted = append(contracted, dyn.ContractedUpdate{
					OldOffset: x.DistanceOffset, NewOffset: y.DistanceOffset + newWeight, Node: a})
			} else if x.DistanceOffset < y.DistanceOffset {
				contracted = append(contracted, dyn.ContractedUpdate{
					OldOffset: y.DistanceOffset, NewOffset: x.DistanceOffset + newWeight, Node: b})
			}
			continue
		}
		updates = append(updates, ch.Update{Old: weight, New: newWeight, V: a, W: b})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read updates: %w", err)
	}
	return updates, contracted, nil
}
