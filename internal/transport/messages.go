package transport

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/decision"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/engine"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/world"
)

// #region messages

// DecideRequest asks for one agent's decision against a world snapshot.
// Without a seed the choice is the argmax of the sampling logits. With one it
// is sampled at the engine temperature from the same stream Tick would use
// for that agent, world tick and seed. The seed travels as a decimal string.
type DecideRequest struct {
	World     world.Snapshot        `json:"world"`
	Mods      map[string]world.Mods `json:"mods,omitempty"`
	AgentID   string                `json:"agent_id"`
	Memory    engine.Memory         `json:"memory"`
	Overrides []decision.Override   `json:"overrides,omitempty"`
	Seed      *uint64               `json:"seed,omitempty,string"`
}

// TickRequest asks for a full world tick. When the server has a journal the
// active mass network is stepped and the result committed.
type TickRequest struct {
	World     world.Snapshot           `json:"world"`
	Mods      map[string]world.Mods    `json:"mods,omitempty"`
	Memory    map[string]engine.Memory `json:"memory,omitempty"`
	Overrides []decision.Override      `json:"overrides,omitempty"`
}

func snapshot(w world.Snapshot, mods map[string]world.Mods) *world.Snapshot {
	snap := w
	snap.Mods = world.NewModsStore()
	snap.Mods.Load(mods)
	return &snap
}

// #endregion messages

// #region codec

// toStruct converts any JSON-serializable value into a structpb.Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("encode struct: %w", err)
	}
	return s, nil
}

// fromStruct decodes s into v.
func fromStruct(s *structpb.Struct, v any) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %T: %w", v, err)
	}
	return nil
}

// #endregion codec
