package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"path_oracle/pkg/ch"
	"path_oracle/pkg/graph"
	"path_oracle/pkg/hierarchy"
	"path_oracle/pkg/label"
	"path_oracle/pkg/osmimport"
)

// buildConfig carries the tuning knobs, overridable from a YAML file.
type buildConfig struct {
	Balance      float64 `yaml:"balance"`
	Workers      int     `yaml:"workers"`
	AddShortcuts bool    `yaml:"add_shortcuts"`
}

func loadConfig(path string) (buildConfig, error) {
	cfg := buildConfig{Balance: hierarchy.DefaultBalance, Workers: 1}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func main() {
	osmInput := flag.Bool("osm", false, "Input is an OSM PBF extract instead of a text graph")
	configPath := flag.String("config", "", "YAML build configuration file")
	balance := flag.Float64("balance", 0, "Cut balance override (0 keeps the config value)")
	workers := flag.Int("workers", 0, "Worker count override (0 keeps the config value)")
	stats := flag.Bool("stats", false, "Also report the redundant edge count (index statistics are always logged)")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: build [-osm] [-config build.yaml] <graph> <out-prefix>")
		os.Exit(1)
	}
	graphPath, outPrefix := flag.Arg(0), flag.Arg(1)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *balance > 0 {
		cfg.Balance = *balance
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	start := time.Now()

	log.Printf("Reading %s...", graphPath)
	g, err := readInput(graphPath, *osmInput)
	if err != nil {
		log.Fatalf("Failed to read graph: %v", err)
	}
	log.Printf("Graph: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())

	if *stats {
		redundant := g.RedundantEdges()
		log.Printf("Redundant edges: %d", len(redundant))
	}

	log.Println("Contracting degree-1 chains...")
	closest := g.Contract()
	log.Printf("Contraction kept %d nodes", g.NodeCount())

	ci := hierarchy.CreateCutIndex(g, hierarchy.Config{
		Balance:      cfg.Balance,
		Workers:      cfg.Workers,
		AddShortcuts: cfg.AddShortcuts,
	})
	g.Reset()

	log.Println("Building shortcut graph...")
	dag := ch.Build(g, ci, closest, cfg.Workers)
	log.Printf("Shortcut graph: %d edges", dag.EdgeCount())

	index := label.NewContractionIndex(ci, closest)
	log.Printf("Index: %.1f MB, height %d, max cut %d, avg cut %.1f, %d labels",
		float64(index.Size())/(1024*1024), index.Height(), index.MaxCutSize(),
		index.AvgCutSize(), index.LabelCount())

	clPath := outPrefix + "_cl"
	log.Printf("Writing %s...", clPath)
	if err := index.WriteFile(clPath); err != nil {
		log.Fatalf("Failed to write index: %v", err)
	}
	gsPath := outPrefix + "_gs"
	log.Printf("Writing %s...", gsPath)
	if err := dag.WriteFile(gsPath); err != nil {
		log.Fatalf("Failed to write shortcut graph: %v", err)
	}

	log.Printf("Done in %s", time.Since(start).Round(time.Millisecond))
}

func readInput(path string, isOSM bool) (*graph.Graph, error) {
	if isOSM {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		result, err := osmimport.Parse(context.Background(), f)
		if err != nil {
			return nil, err
		}
		g := graph.NewWithEdges(result.NodeCount, result.Edges)
		g.RemoveIsolated()
		return g, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return graph.ReadGraph(f)
}
