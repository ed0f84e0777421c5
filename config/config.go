// Package config holds the settings of a dvsim run.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/brandonshearin/distvec/distvec"
	"github.com/brandonshearin/distvec/topology"
	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = xerrors.New("invalid configuration")

// Topology kinds.
const (
	KindRing = "ring"
	KindMesh = "mesh"
	KindKOut = "kout"
	KindFile = "file"
)

// Output formats.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
	FormatDOT   = "dot"
)

// Config is the YAML document accepted by --config.
type Config struct {
	Topology struct {
		Kind   string `yaml:"kind"`
		Nodes  int    `yaml:"nodes"`
		Degree int    `yaml:"degree"`
		Seed   int64  `yaml:"seed"`

		// File points to a topology file for kind "file". Without it the
		// inline Links are used.
		File  string               `yaml:"file"`
		Links [][2]topology.NodeID `yaml:"links"`
	} `yaml:"topology"`

	Costs struct {
		Seed    int64 `yaml:"seed"`
		MaxCost int64 `yaml:"max_cost"`
	} `yaml:"costs"`

	Simulation struct {
		Rounds          int  `yaml:"rounds"`
		Workers         int  `yaml:"workers"`
		StopWhenStable  bool `yaml:"stop_when_stable"`
		Sequential      bool `yaml:"sequential"`
		LogRouteChanges bool `yaml:"log_route_changes"`
	} `yaml:"simulation"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`

	Output struct {
		Format string `yaml:"format"`
		// Root selects the node whose tree is highlighted in DOT output
		// and, if non-negative, the only node reported in table and YAML
		// output.
		Root int64 `yaml:"root"`
	} `yaml:"output"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.Topology.Kind = KindRing
	c.Topology.Nodes = 8
	c.Topology.Degree = 3
	c.Topology.Seed = 1
	c.Costs.Seed = 1
	c.Costs.MaxCost = int64(distvec.DefaultMaxCost)
	c.Simulation.Rounds = 3
	c.Simulation.Workers = 4
	c.Logging.Level = "info"
	c.Output.Format = FormatTable
	c.Output.Root = -1
	return c
}

// Load returns the defaults overlaid with the YAML file at path, if any,
// and with the DVSIM_* environment variables.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, xerrors.Errorf("read config: %w", err)
		}
		if err = yaml.Unmarshal(data, &c); err != nil {
			return c, xerrors.Errorf("decode config %q: %w", path, err)
		}
	}
	if err := c.applyEnv(); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DVSIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return xerrors.Errorf("DVSIM_SEED: %v: %w", err, ErrInvalidConfig)
		}
		c.Topology.Seed = seed
		c.Costs.Seed = seed
	}
	if v := os.Getenv("DVSIM_ROUNDS"); v != "" {
		rounds, err := strconv.Atoi(v)
		if err != nil {
			return xerrors.Errorf("DVSIM_ROUNDS: %v: %w", err, ErrInvalidConfig)
		}
		c.Simulation.Rounds = rounds
	}
	if v := os.Getenv("DVSIM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate reports every problem found in c.
func (c *Config) Validate() error {
	var err error
	fail := func(format string, args ...interface{}) {
		err = multierror.Append(err, xerrors.Errorf(format+": %w", append(args, ErrInvalidConfig)...))
	}

	switch c.Topology.Kind {
	case KindRing, KindMesh:
		if c.Topology.Nodes <= 0 {
			fail("topology.nodes must be positive, got %d", c.Topology.Nodes)
		}
	case KindKOut:
		if c.Topology.Nodes <= 0 {
			fail("topology.nodes must be positive, got %d", c.Topology.Nodes)
		} else if c.Topology.Degree < 0 || c.Topology.Degree >= c.Topology.Nodes {
			fail("topology.degree must be in [0, %d), got %d", c.Topology.Nodes, c.Topology.Degree)
		}
	case KindFile:
		if c.Topology.File == "" && c.Topology.Nodes <= 0 {
			fail("topology of kind file needs a file or inline nodes")
		}
	default:
		fail("unknown topology.kind %q", c.Topology.Kind)
	}

	if c.Costs.MaxCost < 1 {
		fail("costs.max_cost must be at least 1, got %d", c.Costs.MaxCost)
	}
	if c.Simulation.Rounds <= 0 {
		fail("simulation.rounds must be positive, got %d", c.Simulation.Rounds)
	}
	if c.Simulation.Workers <= 0 {
		fail("simulation.workers must be positive, got %d", c.Simulation.Workers)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		fail("unknown logging.level %q", c.Logging.Level)
	}
	switch c.Output.Format {
	case FormatTable, FormatYAML, FormatDOT:
	default:
		fail("unknown output.format %q", c.Output.Format)
	}
	return err
}

// BuildTopology creates the configured topology using topology.seed.
func (c *Config) BuildTopology() (topology.Topology, error) {
	return c.BuildTopologyWithSeed(c.Topology.Seed)
}

// BuildTopologyWithSeed creates the configured topology. The seed only
// matters for randomly generated kinds.
func (c *Config) BuildTopologyWithSeed(seed int64) (topology.Topology, error) {
	var (
		g   *topology.Graph
		err error
	)
	switch c.Topology.Kind {
	case KindRing:
		g = topology.Ring(c.Topology.Nodes)
	case KindMesh:
		g = topology.FullMesh(c.Topology.Nodes)
	case KindKOut:
		g, err = topology.KOut(c.Topology.Nodes, c.Topology.Degree, seed)
	case KindFile:
		if c.Topology.File != "" {
			g, err = topology.LoadFile(c.Topology.File)
		} else {
			g, err = topology.File{Nodes: c.Topology.Nodes, Links: c.Topology.Links}.Build()
		}
	default:
		err = xerrors.Errorf("unknown topology kind %q: %w", c.Topology.Kind, ErrInvalidConfig)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// CostAssigner returns an assigner seeded and bounded as configured.
func (c *Config) CostAssigner() *distvec.CostAssigner {
	a := distvec.NewCostAssigner(c.Costs.Seed)
	a.MaxCost = distvec.Cost(c.Costs.MaxCost)
	return a
}
