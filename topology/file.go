package topology

import (
	"os"

	"github.com/goccy/go-yaml"
	"golang.org/x/xerrors"
)

// File is the on-disk representation of a topology:
//
//	nodes: 4
//	links:
//	  - [0, 1]
//	  - [1, 2]
type File struct {
	Nodes int         `yaml:"nodes"`
	Links [][2]NodeID `yaml:"links"`
}

// Build converts f into a Graph. Links are undirected.
func (f File) Build() (*Graph, error) {
	if f.Nodes < 0 {
		return nil, xerrors.Errorf("negative node count %d: %w", f.Nodes, ErrMalformed)
	}
	g := NewGraphWithNodes(f.Nodes)
	for i, l := range f.Links {
		if l[0] == l[1] {
			return nil, xerrors.Errorf("link #%d connects node %d to itself: %w", i, l[0], ErrMalformed)
		}
		if err := g.AddLink(l[0], l[1]); err != nil {
			return nil, xerrors.Errorf("link #%d: %v: %w", i, err, ErrMalformed)
		}
	}
	return g, nil
}

// Parse decodes a YAML topology description.
func Parse(data []byte) (*Graph, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, xerrors.Errorf("decode topology: %w", err)
	}
	return f.Build()
}

// LoadFile reads and parses the YAML topology stored at path.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("read topology %q: %w", path, err)
	}
	return Parse(data)
}
