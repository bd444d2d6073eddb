package mass

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
)

var (
	// ErrShape is returned when nodes, weights or inputs do not line up.
	ErrShape = errors.New("mass network shape")
	// ErrTimeStep is returned for a negative or non-finite dt.
	ErrTimeStep = errors.New("mass network time step")
)

// #region network

// Params are the per-node dynamics.
type Params struct {
	Tau        float64 `json:"tau" yaml:"tau"`
	Bias       float64 `json:"bias" yaml:"bias"`
	Gain       float64 `json:"gain" yaml:"gain"`
	NoiseScale float64 `json:"noise_scale" yaml:"noise_scale"` // 0 falls back to the aggregation base scale
}

// Node is one latent population state.
type Node struct {
	ID     string  `json:"id" yaml:"id"`
	X      float64 `json:"x" yaml:"x"`
	Params Params  `json:"params" yaml:"params"`
}

// Network is a fixed-size recurrent network. Values are never mutated in
// place; Step returns a new Network.
type Network struct {
	VersionID string      `json:"version_id"`
	ParentID  string      `json:"parent_id,omitempty"`
	Tick      int64       `json:"tick"`
	NodeOrder []string    `json:"node_order"`
	Nodes     []Node      `json:"nodes"`
	W         [][]float64 `json:"w"` // W[i][j] is the weight from node j into node i
}

// NewNetwork validates the shape and builds the first version. w may be nil
// for an uncoupled network.
func NewNetwork(nodes []Node, w [][]float64) (Network, error) {
	n := len(nodes)
	if n == 0 {
		return Network{}, fmt.Errorf("%w: no nodes", ErrShape)
	}
	order := make([]string, n)
	seen := make(map[string]bool, n)
	for i, nd := range nodes {
		if nd.ID == "" {
			return Network{}, fmt.Errorf("%w: node %d has no id", ErrShape, i)
		}
		if seen[nd.ID] {
			return Network{}, fmt.Errorf("%w: duplicate node %s", ErrShape, nd.ID)
		}
		if !atom.Finite(nd.X) {
			return Network{}, fmt.Errorf("%w: node %s has non-finite state", ErrShape, nd.ID)
		}
		seen[nd.ID] = true
		order[i] = nd.ID
	}
	if w == nil {
		w = make([][]float64, n)
		for i := range w {
			w[i] = make([]float64, n)
		}
	}
	if len(w) != n {
		return Network{}, fmt.Errorf("%w: %d weight rows for %d nodes", ErrShape, len(w), n)
	}
	for i, row := range w {
		if len(row) != n {
			return Network{}, fmt.Errorf("%w: weight row %d has %d columns, want %d", ErrShape, i, len(row), n)
		}
		for j, v := range row {
			if !atom.Finite(v) {
				return Network{}, fmt.Errorf("%w: weight [%d][%d] is not finite", ErrShape, i, j)
			}
		}
	}
	net := Network{
		VersionID: uuid.New().String(),
		NodeOrder: order,
		Nodes:     append([]Node(nil), nodes...),
		W:         copyMatrix(w),
	}
	return net, nil
}

// Index returns the position of node id.
func (n Network) Index(id string) (int, bool) {
	for i, x := range n.NodeOrder {
		if x == id {
			return i, true
		}
	}
	return 0, false
}

// States returns node states keyed by id.
func (n Network) States() map[string]float64 {
	out := make(map[string]float64, len(n.Nodes))
	for _, nd := range n.Nodes {
		out[nd.ID] = nd.X
	}
	return out
}

// Clone returns a deep copy.
func (n Network) Clone() Network {
	c := n
	c.NodeOrder = append([]string(nil), n.NodeOrder...)
	c.Nodes = append([]Node(nil), n.Nodes...)
	c.W = copyMatrix(n.W)
	return c
}

// #endregion network

func copyMatrix(w [][]float64) [][]float64 {
	out := make([][]float64, len(w))
	for i, row := range w {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
