package transport

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/decision"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/engine"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/gate"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/journal"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/logging"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/mass"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/world/worldtest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// startServer serves srv over an in-memory listener and returns a client
// plus its underlying connection.
func startServer(t *testing.T, srv *Server) (*Client, *grpc.ClientConn) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	srv.Register(gs)
	go gs.Serve(lis)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		gs.Stop()
	})
	return NewClientWithConn(conn), conn
}

func newEngine() *engine.Engine {
	return engine.New(engine.DefaultOptions(), nil, nil)
}

func TestDecideOverGRPC(t *testing.T) {
	c, _ := startServer(t, NewServer(newEngine()))

	res, err := c.Decide(context.Background(), DecideRequest{
		World:     *worldtest.Tavern(),
		AgentID:   "bram",
		Overrides: []decision.Override{{Type: decision.OverrideForceAction, AgentID: "bram", ActionID: "wait"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "bram", res.AgentID)
	assert.True(t, res.Decision.Forced)
	assert.Equal(t, "wait", res.Decision.Best.Candidate.Kind)
	assert.NotEmpty(t, res.Trace.Stages)
}

func TestDecideMatchesLocalEngine(t *testing.T) {
	eng := newEngine()
	c, _ := startServer(t, NewServer(eng))

	snap := worldtest.Tavern()
	local, err := eng.DecideAgent(snap, eng.Extract(snap), "bram", engine.Memory{}, nil, nil)
	require.NoError(t, err)

	remote, err := c.Decide(context.Background(), DecideRequest{World: *worldtest.Tavern(), AgentID: "bram"})
	require.NoError(t, err)
	assert.Equal(t, local.Decision.Best.Candidate.ID, remote.Decision.Best.Candidate.ID)
	assert.InDelta(t, local.Decision.Best.Q, remote.Decision.Best.Q, 1e-12)
}

func TestDecideWithSeedSamplesLikeTick(t *testing.T) {
	eng := newEngine()
	c, _ := startServer(t, NewServer(eng))

	tick, err := eng.Tick(context.Background(), engine.TickRequest{Snapshot: worldtest.Tavern()})
	require.NoError(t, err)

	seed := eng.Options().Seed
	for _, local := range tick.Agents {
		remote, err := c.Decide(context.Background(), DecideRequest{
			World: *worldtest.Tavern(), AgentID: local.AgentID, Seed: &seed,
		})
		require.NoError(t, err)
		assert.Equal(t, local.Decision.Best.Candidate.ID, remote.Decision.Best.Candidate.ID, local.AgentID)
		require.Len(t, remote.Decision.Probabilities, len(local.Decision.Probabilities))
		for id, p := range local.Decision.Probabilities {
			assert.InDelta(t, p, remote.Decision.Probabilities[id], 1e-12, "%s %s", local.AgentID, id)
		}
	}
}

func TestDecideSeedSurvivesStruct(t *testing.T) {
	seed := uint64(1<<63 + 12345)
	s, err := toStruct(DecideRequest{AgentID: "bram", Seed: &seed})
	require.NoError(t, err)
	var back DecideRequest
	require.NoError(t, fromStruct(s, &back))
	require.NotNil(t, back.Seed)
	assert.Equal(t, seed, *back.Seed)
}

func TestDecideErrors(t *testing.T) {
	c, _ := startServer(t, NewServer(newEngine()))

	_, err := c.Decide(context.Background(), DecideRequest{World: *worldtest.Tavern(), AgentID: "nobody"})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.Decide(context.Background(), DecideRequest{World: *worldtest.Tavern()})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestTickWithJournal(t *testing.T) {
	store, err := journal.NewStore(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	net0, err := mass.NewNetwork([]mass.Node{
		{ID: "core", X: 0.1, Params: mass.Params{Tau: 1, Gain: 1}},
		{ID: "fringe", X: 0.1, Params: mass.Params{Tau: 1, Gain: 1}},
	}, nil)
	require.NoError(t, err)
	_, err = store.CreateInitial(net0)
	require.NoError(t, err)

	assign := mass.Assignment{"bram": "core", "cole": "core", "dena": "fringe"}
	c, _ := startServer(t, NewServer(newEngine(), WithJournal(store, StaticAssignment(assign))))

	ctx := context.Background()
	first, err := c.Tick(ctx, TickRequest{World: *worldtest.Tavern()})
	require.NoError(t, err)
	require.NotNil(t, first.Network)
	assert.Equal(t, net0.VersionID, first.Network.ParentID)
	require.Len(t, first.Agents, 3)

	world := *worldtest.Tavern()
	world.Tick++
	second, err := c.Tick(ctx, TickRequest{World: world, Memory: first.Memory()})
	require.NoError(t, err)
	require.NotNil(t, second.Network)
	assert.Equal(t, first.Network.VersionID, second.Network.ParentID)

	cur, err := store.GetCurrent()
	require.NoError(t, err)
	assert.Equal(t, second.Network.VersionID, cur.VersionID())
	assert.EqualValues(t, 2, cur.Network.Tick)

	rows, err := logging.ListDecisions(store.DB(), "", 10)
	require.NoError(t, err)
	assert.Len(t, rows, 6)
	assert.Equal(t, second.Network.VersionID, rows[0].VersionID)
}

func TestTickGateRejectsLargeStep(t *testing.T) {
	store, err := journal.NewStore(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	net0, err := mass.NewNetwork([]mass.Node{
		{ID: "core", X: 0.1, Params: mass.Params{Tau: 1, Gain: 1}},
	}, nil)
	require.NoError(t, err)
	_, err = store.CreateInitial(net0)
	require.NoError(t, err)

	strict := gate.New(gate.Config{MaxDeltaNorm: 1e-9})
	srv := NewServer(newEngine(),
		WithJournal(store, StaticAssignment(mass.Assignment{"bram": "core"})),
		WithGate(strict))
	c, _ := startServer(t, srv)

	res, err := c.Tick(context.Background(), TickRequest{World: *worldtest.Tavern()})
	require.NoError(t, err)
	require.NotNil(t, res.Network)

	cur, err := store.GetCurrent()
	require.NoError(t, err)
	assert.Equal(t, net0.VersionID, cur.VersionID(), "rejected version must not become active")

	rows, err := logging.ListDecisions(store.DB(), "", 10)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestTickWithoutJournal(t *testing.T) {
	c, _ := startServer(t, NewServer(newEngine()))
	res, err := c.Tick(context.Background(), TickRequest{World: *worldtest.Tavern()})
	require.NoError(t, err)
	assert.Nil(t, res.Network)
	assert.Len(t, res.Agents, 3)
}

func TestHealth(t *testing.T) {
	_, conn := startServer(t, NewServer(newEngine()))
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestStructRoundTrip(t *testing.T) {
	req := DecideRequest{World: *worldtest.Tavern(), AgentID: "dena",
		Memory: engine.Memory{PrevActionID: "rest:dena", PrevFinal: map[string]float64{"ctx:final:threat:dena": 0.25}}}
	s, err := toStruct(req)
	require.NoError(t, err)

	var got DecideRequest
	require.NoError(t, fromStruct(s, &got))
	assert.Equal(t, req.AgentID, got.AgentID)
	assert.Equal(t, req.Memory, got.Memory)
	assert.Equal(t, req.World.Agents, got.World.Agents)
}
