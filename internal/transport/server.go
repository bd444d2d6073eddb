package transport

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/decision"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/engine"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/gate"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/journal"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/logging"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/mass"
)

// #region server

// Server implements EngineServer on top of an engine. With a journal it
// steps the active mass network on every Tick and records decisions.
type Server struct {
	eng     *engine.Engine
	journal *journal.Store
	assign  AssignFunc
	gate    *gate.Gate
	log     *zap.Logger

	// serializes ticks so committed network versions form one chain
	mu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// AssignFunc maps the agents of a tick to mass network nodes.
type AssignFunc func(agentIDs []string) mass.Assignment

// StaticAssignment returns an AssignFunc that ignores the agent list.
func StaticAssignment(a mass.Assignment) AssignFunc {
	return func([]string) mass.Assignment { return a }
}

// WithJournal persists network versions and decisions to store, aggregating
// character signals through assign.
func WithJournal(store *journal.Store, assign AssignFunc) Option {
	return func(s *Server) {
		s.journal = store
		s.assign = assign
	}
}

// WithGate checks every stepped network before it is committed. Rejected
// versions are logged and the active version stays in place.
func WithGate(g *gate.Gate) Option {
	return func(s *Server) { s.gate = g }
}

// WithLogger sets the server logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// NewServer creates a Server.
func NewServer(eng *engine.Engine, opts ...Option) *Server {
	s := &Server{eng: eng, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register adds the Engine and health services to gs.
func (s *Server) Register(gs *grpc.Server) *health.Server {
	gs.RegisterService(&ServiceDesc, s)
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return hs
}

// #endregion server

// #region decide

// Decide runs the pipeline for one agent.
func (s *Server) Decide(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req DecideRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.AgentID == "" {
		return nil, status.Error(codes.InvalidArgument, "agent_id is required")
	}
	snap := snapshot(req.World, req.Mods)
	if _, ok := snap.Agent(req.AgentID); !ok {
		return nil, status.Errorf(codes.NotFound, "agent %s not in world", req.AgentID)
	}
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	var src decision.Rand
	if req.Seed != nil {
		src = engine.AgentSource(*req.Seed, snap.Tick, req.AgentID)
	}
	res, err := s.eng.DecideAgent(snap, s.eng.Extract(snap), req.AgentID, req.Memory, req.Overrides, src)
	if err != nil {
		s.log.Error("decide failed", zap.String("agent", req.AgentID), zap.Error(err))
		return nil, status.Error(codes.Internal, err.Error())
	}
	return encode(res)
}

// #endregion decide

// #region tick

// Tick runs a full world tick.
func (s *Server) Tick(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req TickRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot(req.World, req.Mods)
	treq := engine.TickRequest{
		Snapshot:  snap,
		Overrides: req.Overrides,
		Memory:    req.Memory,
	}
	var active *mass.Network
	if s.journal != nil {
		cur, err := s.journal.GetCurrent()
		switch {
		case err == nil:
			active = &cur.Network
			treq.Network = active
			if s.assign != nil {
				treq.Assignment = s.assign(snap.AgentIDs())
			}
		case errors.Is(err, journal.ErrNotFound):
			s.log.Warn("journal has no active network; ticking without one")
		default:
			return nil, status.Error(codes.Internal, err.Error())
		}
	}

	res, err := s.eng.Tick(ctx, treq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, status.FromContextError(ctx.Err()).Err()
		}
		return nil, status.Error(codes.Internal, err.Error())
	}

	if s.journal != nil {
		if res.Network != nil && s.admit(*active, *res.Network, res.Risk) {
			if _, err := s.journal.Commit(*res.Network, res.Risk); err != nil {
				return nil, status.Error(codes.Internal, err.Error())
			}
		}
		if err := logging.LogTick(s.journal.DB(), res); err != nil {
			s.log.Error("log tick failed", zap.Int("tick", res.Tick), zap.Error(err))
		}
	}
	return encode(res)
}

// admit reports whether next may replace prev as the active version.
func (s *Server) admit(prev, next mass.Network, risk *mass.RiskReport) bool {
	if s.gate == nil {
		return true
	}
	d := s.gate.Evaluate(prev, next, risk)
	if d.Vetoed {
		s.log.Warn("network version rejected",
			zap.String("version", next.VersionID),
			zap.String("reason", d.Reason),
			zap.Float64("delta_norm", d.DeltaNorm))
		return false
	}
	s.log.Debug("network version admitted",
		zap.String("version", next.VersionID),
		zap.Float64("soft_score", d.SoftScore))
	return true
}

// #endregion tick

func encode(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
