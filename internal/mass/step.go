package mass

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
)

// Noise draws zero-mean unit-variance samples.
type Noise interface {
	NormFloat64() float64
}

// #region step

// Step advances the network by one forward-Euler step of dt:
//
//	h_i  = sum_{j != i} W[i][j] * x_j
//	x_i' = x_i + dt * (-x_i + sigmoid(bias + gain*(h_i + I_i) + s_i*xi_i)) / tau
//
// with s_i = noiseScale_i / sqrt(max(count_i, 1)). Every h_i reads the
// previous states only. A nil noise source draws zeros. Non-positive or
// non-finite tau is treated as 1. The result is a new version whose ParentID
// is net.VersionID; net is not modified.
func Step(net Network, in Inputs, dt float64, noise Noise) (Network, error) {
	n := len(net.Nodes)
	if len(net.W) != n {
		return Network{}, fmt.Errorf("%w: %d weight rows for %d nodes", ErrShape, len(net.W), n)
	}
	if in.Values != nil && len(in.Values) != n {
		return Network{}, fmt.Errorf("%w: %d inputs for %d nodes", ErrShape, len(in.Values), n)
	}
	if in.Counts != nil && len(in.Counts) != n {
		return Network{}, fmt.Errorf("%w: %d counts for %d nodes", ErrShape, len(in.Counts), n)
	}
	if dt < 0 || !atom.Finite(dt) {
		return Network{}, fmt.Errorf("%w: dt=%v", ErrTimeStep, dt)
	}

	next := net.Clone()
	for i, nd := range net.Nodes {
		var h float64
		for j, other := range net.Nodes {
			if j != i {
				h += net.W[i][j] * other.X
			}
		}
		var input float64
		count := 1
		if in.Values != nil {
			input = in.Values[i]
			if !atom.Finite(input) {
				input = 0
			}
		}
		if in.Counts != nil && in.Counts[i] > 1 {
			count = in.Counts[i]
		}

		p := nd.Params
		scale := p.NoiseScale
		if scale == 0 {
			scale = in.BaseNoiseScale
		}
		var xi float64
		if noise != nil {
			xi = noise.NormFloat64()
		}
		drive := p.Bias + p.Gain*(h+input) + scale/math.Sqrt(float64(count))*xi

		tau := p.Tau
		if tau <= 0 || !atom.Finite(tau) {
			tau = 1
		}
		x := nd.X + dt*(-nd.X+sigmoid(drive))/tau
		if !atom.Finite(x) {
			x = nd.X
		}
		next.Nodes[i].X = x
	}
	next.ParentID = net.VersionID
	next.VersionID = uuid.New().String()
	next.Tick = net.Tick + 1
	return next, nil
}

// #endregion step

func sigmoid(x float64) float64 {
	if math.IsNaN(x) {
		return 0.5
	}
	return 1 / (1 + math.Exp(-x))
}
