package ch

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"path_oracle/pkg/graph"
)

const (
	maxSlots  = 1 << 31
	maxDegree = 1 << 24
)

// Write serializes the DAG: a u64 slot count, then per vertex the u16 label
// slot (65535 for contracted vertices, which carry nothing else), the
// upward edges (u64 count, then u32 node / u32 distance / u16 path count
// each) and the downward vertex list (u64 count, u32 each). Little-endian.
func (d *DAG) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(d.Nodes))); err != nil {
		return fmt.Errorf("write node count: %w", err)
	}
	for i := 1; i < len(d.Nodes); i++ {
		nd := &d.Nodes[i]
		if err := binary.Write(bw, binary.LittleEndian, nd.DistIndex); err != nil {
			return fmt.Errorf("write slot of node %d: %w", i, err)
		}
		if nd.DistIndex == Contracted {
			continue
		}
		if err := binary.Write(bw, binary.LittleEndian, uint64(len(nd.UpNeighbors))); err != nil {
			return fmt.Errorf("write up count of node %d: %w", i, err)
		}
		for _, n := range nd.UpNeighbors {
			if err := binary.Write(bw, binary.LittleEndian, uint32(n.Node)); err != nil {
				return fmt.Errorf("write up edge of node %d: %w", i, err)
			}
			if err := binary.Write(bw, binary.LittleEndian, uint32(n.Distance)); err != nil {
				return fmt.Errorf("write up edge of node %d: %w", i, err)
			}
			if err := binary.Write(bw, binary.LittleEndian, n.PathCount); err != nil {
				return fmt.Errorf("write up edge of node %d: %w", i, err)
			}
		}
		if err := binary.Write(bw, binary.LittleEndian, uint64(len(nd.DownNeighbors))); err != nil {
			return fmt.Errorf("write down count of node %d: %w", i, err)
		}
		for _, n := range nd.DownNeighbors {
			if err := binary.Write(bw, binary.LittleEndian, uint32(n)); err != nil {
				return fmt.Errorf("write down edge of node %d: %w", i, err)
			}
		}
	}
	return bw.Flush()
}

// Read deserializes a DAG written by Write.
func Read(r io.Reader) (*DAG, error) {
	br := bufio.NewReader(r)
	var slotCount uint64
	if err := binary.Read(br, binary.LittleEndian, &slotCount); err != nil {
		return nil, fmt.Errorf("read node count: %w", err)
	}
	if slotCount > maxSlots {
		return nil, fmt.Errorf("node count %d exceeds limit %d", slotCount, maxSlots)
	}
	d := &DAG{Nodes: make([]DAGNode, slotCount)}
	for i := 1; i < len(d.Nodes); i++ {
		nd := &d.Nodes[i]
		if err := binary.Read(br, binary.LittleEndian, &nd.DistIndex); err != nil {
			return nil, fmt.Errorf("read slot of node %d: %w", i, err)
		}
		if nd.DistIndex == Contracted {
			continue
		}
		var count uint64
		if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
			return nil, fmt.Errorf("read up count of node %d: %w", i, err)
		}
		if count > maxDegree {
			return nil, fmt.Errorf("up count %d of node %d out of range", count, i)
		}
		if count > 0 {
			nd.UpNeighbors = make([]Neighbor, count)
		}
		for j := range nd.UpNeighbors {
			var node, distance uint32
			var pathCount uint16
			if err := binary.Read(br, binary.LittleEndian, &node); err != nil {
				return nil, fmt.Errorf("read up edge of node %d: %w", i, err)
			}
			if err := binary.Read(br, binary.LittleEndian, &distance); err != nil {
				return nil, fmt.Errorf("read up edge of node %d: %w", i, err)
			}
			if err := binary.Read(br, binary.LittleEndian, &pathCount); err != nil {
				return nil, fmt.Errorf("read up edge of node %d: %w", i, err)
			}
			nd.UpNeighbors[j] = Neighbor{graph.NodeID(node), graph.Distance(distance), pathCount}
		}
		if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
			return nil, fmt.Errorf("read down count of node %d: %w", i, err)
		}
		if count > maxDegree {
			return nil, fmt.Errorf("down count %d of node %d out of range", count, i)
		}
		if count > 0 {
			nd.DownNeighbors = make([]graph.NodeID, count)
		}
		for j := range nd.DownNeighbors {
			var node uint32
			if err := binary.Read(br, binary.LittleEndian, &node); err != nil {
				return nil, fmt.Errorf("read down edge of node %d: %w", i, err)
			}
			nd.DownNeighbors[j] = graph.NodeID(node)
		}
	}
	return d, nil
}

// WriteFile writes the DAG to path via a temp file and atomic rename.
func (d *DAG) WriteFile(path string) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()
	if err := d.Write(f); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ReadFile reads a DAG written by WriteFile.
func ReadFile(path string) (*DAG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return Read(f)
}
