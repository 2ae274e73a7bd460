package label

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"path_oracle/pkg/graph"
)

const maxNodes = 1 << 31

// Write serializes the index: a u64 vertex count, then per vertex the u32
// distance offset followed by either the owned label block (u64 size + raw
// bytes) or the u32 parent vertex. All fields little-endian.
func (x *ContractionIndex) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(x.labels)-1)); err != nil {
		return fmt.Errorf("write node count: %w", err)
	}
	for node := 1; node < len(x.labels); node++ {
		cl := x.labels[node]
		if err := binary.Write(bw, binary.LittleEndian, uint32(cl.DistanceOffset)); err != nil {
			return fmt.Errorf("write offset of node %d: %w", node, err)
		}
		if cl.DistanceOffset == 0 {
			if err := binary.Write(bw, binary.LittleEndian, uint64(len(cl.CutIndex.data))); err != nil {
				return fmt.Errorf("write block size of node %d: %w", node, err)
			}
			if _, err := bw.Write(cl.CutIndex.data); err != nil {
				return fmt.Errorf("write block of node %d: %w", node, err)
			}
		} else {
			if err := binary.Write(bw, binary.LittleEndian, uint32(cl.Parent)); err != nil {
				return fmt.Errorf("write parent of node %d: %w", node, err)
			}
		}
	}
	return bw.Flush()
}

// Read deserializes an index written by Write and rewires pendant vertices
// to their roots' blocks.
func Read(r io.Reader) (*ContractionIndex, error) {
	br := bufio.NewReader(r)
	var nodeCount uint64
	if err := binary.Read(br, binary.LittleEndian, &nodeCount); err != nil {
		return nil, fmt.Errorf("read node count: %w", err)
	}
	if nodeCount > maxNodes {
		return nil, fmt.Errorf("node count %d exceeds limit %d", nodeCount, maxNodes)
	}
	x := &ContractionIndex{labels: make([]ContractionLabel, nodeCount+1)}
	for node := 1; node < len(x.labels); node++ {
		cl := &x.labels[node]
		var offset uint32
		if err := binary.Read(br, binary.LittleEndian, &offset); err != nil {
			return nil, fmt.Errorf("read offset of node %d: %w", node, err)
		}
		cl.DistanceOffset = graph.Distance(offset)
		if offset == 0 {
			var dataSize uint64
			if err := binary.Read(br, binary.LittleEndian, &dataSize); err != nil {
				return nil, fmt.Errorf("read block size of node %d: %w", node, err)
			}
			if dataSize > 1<<40 {
				return nil, fmt.Errorf("block size %d of node %d out of range", dataSize, node)
			}
			if dataSize > 0 {
				cl.CutIndex.data = make([]byte, dataSize)
				if _, err := io.ReadFull(br, cl.CutIndex.data); err != nil {
					return nil, fmt.Errorf("read block of node %d: %w", node, err)
				}
			}
		} else {
			var parent uint32
			if err := binary.Read(br, binary.LittleEndian, &parent); err != nil {
				return nil, fmt.Errorf("read parent of node %d: %w", node, err)
			}
			cl.Parent = graph.NodeID(parent)
		}
	}
	// pendants share the block of their contraction root
	for node := 1; node < len(x.labels); node++ {
		cl := &x.labels[node]
		if cl.DistanceOffset != 0 {
			root := cl.Parent
			for x.labels[root].DistanceOffset != 0 {
				root = x.labels[root].Parent
			}
			cl.CutIndex = x.labels[root].CutIndex
		}
	}
	return x, nil
}

// WriteFile writes the index to path via a temp file and atomic rename.
func (x *ContractionIndex) WriteFile(path string) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()
	if err := x.Write(f); err != nil {
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

// ReadFile reads an index written by WriteFile.
func ReadFile(path string) (*ContractionIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return Read(f)
}
