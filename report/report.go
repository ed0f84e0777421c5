// Package report renders the path trees computed by distance-vector agents.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/brandonshearin/distvec/distvec"
	"github.com/goccy/go-yaml"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
)

// Source is implemented by anything that owns a path tree, most notably
// *distvec.Agent.
type Source interface {
	ID() distvec.NodeID
	ShortestPaths() map[distvec.NodeID]distvec.Path
}

// sortedPaths returns the paths of src ordered by destination.
func sortedPaths(src Source) []distvec.Path {
	paths := src.ShortestPaths()
	dsts := maps.Keys(paths)
	slices.Sort(dsts)

	out := make([]distvec.Path, 0, len(dsts))
	for _, dst := range dsts {
		out = append(out, paths[dst])
	}
	return out
}

// WriteTable prints one block per source, listing destination, next hop
// and cost of every known path.
func WriteTable(w io.Writer, sources []Source) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for i, src := range sources {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "node %d\t\t\t\n", src.ID())
		fmt.Fprintln(tw, "dest\tnext hop\tcost\t")
		for _, p := range sortedPaths(src) {
			fmt.Fprintf(tw, "%d\t%d\t%v\t\n", p.Destination, p.Predecessor, p.Cost)
		}
	}
	if err := tw.Flush(); err != nil {
		return xerrors.Errorf("write table: %w", err)
	}
	return nil
}

type yamlPath struct {
	Destination distvec.NodeID `yaml:"destination"`
	NextHop     distvec.NodeID `yaml:"next_hop"`
	Cost        int64          `yaml:"cost"`
}

type yamlNode struct {
	Node  distvec.NodeID `yaml:"node"`
	Paths []yamlPath     `yaml:"paths"`
}

// WriteYAML emits the path trees as a YAML list, one entry per source.
func WriteYAML(w io.Writer, sources []Source) error {
	doc := make([]yamlNode, 0, len(sources))
	for _, src := range sources {
		n := yamlNode{Node: src.ID(), Paths: []yamlPath{}}
		for _, p := range sortedPaths(src) {
			n.Paths = append(n.Paths, yamlPath{Destination: p.Destination, NextHop: p.Predecessor, Cost: int64(p.Cost)})
		}
		doc = append(doc, n)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return xerrors.Errorf("marshal paths: %w", err)
	}
	if _, err = w.Write(data); err != nil {
		return xerrors.Errorf("write yaml: %w", err)
	}
	return nil
}
