package topology

import (
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// Validate checks that t can be used to drive a simulation. All problems
// are reported at once; every one of them wraps ErrMalformed.
func Validate(t Topology) error {
	var err error
	n := t.NodeCount()
	if n < 0 {
		return xerrors.Errorf("negative node count %d: %w", n, ErrMalformed)
	}

	seen := make(map[NodeID]int, n)
	for i := 0; i < n; i++ {
		id := t.IDOf(i)
		if !inRange(id, n) {
			err = multierror.Append(err, xerrors.Errorf("node index %d: id %d outside [0, %d): %w", i, id, n, ErrMalformed))
			continue
		}
		if prev, dup := seen[id]; dup {
			err = multierror.Append(err, xerrors.Errorf("node index %d: id %d already used by index %d: %w", i, id, prev, ErrMalformed))
			continue
		}
		seen[id] = i
	}

	for i := 0; i < n; i++ {
		id := t.IDOf(i)
		for _, peer := range t.NeighborsOf(id) {
			switch {
			case peer == id:
				err = multierror.Append(err, xerrors.Errorf("node %d lists itself as a neighbor: %w", id, ErrMalformed))
			case !inRange(peer, n):
				err = multierror.Append(err, xerrors.Errorf("node %d: neighbor %d outside [0, %d): %w", id, peer, n, ErrMalformed))
			}
		}
	}

	return err
}

func inRange(id NodeID, n int) bool {
	return id >= 0 && int64(id) < int64(n)
}
