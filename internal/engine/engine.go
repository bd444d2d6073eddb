package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/catalog"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/decision"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/features"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/mass"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/pipeline"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/possibility"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/rng"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/world"
)

// ErrNoSnapshot is returned by Tick without a world snapshot.
var ErrNoSnapshot = errors.New("no world snapshot")

// #region engine

// Engine wires feature extraction, the stage pipeline, possibility gating and
// the decision engine. It holds no per-tick state and is safe for concurrent use.
type Engine struct {
	opts      Options
	tables    *catalog.Tables
	runner    *pipeline.Runner
	registry  *possibility.Registry
	extractor *features.Extractor
	log       *zap.Logger
}

// New creates an engine. A nil logger disables logging.
func New(opts Options, tables *catalog.Tables, log *zap.Logger) *Engine {
	if tables == nil {
		tables = catalog.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		opts:      opts,
		tables:    tables,
		runner:    pipeline.DefaultRunner(),
		registry:  possibility.NewRegistry(opts.Gates),
		extractor: features.NewExtractor(features.DefaultExtractorConfig()),
		log:       log,
	}
}

// Options returns the engine options.
func (e *Engine) Options() Options { return e.opts }

// Tables returns the static tables.
func (e *Engine) Tables() *catalog.Tables { return e.tables }

// Extract builds the feature index for snap.
func (e *Engine) Extract(snap *world.Snapshot) features.Index {
	return e.extractor.ExtractAll(snap)
}

// #endregion engine

// #region decide-agent

// DecideAgent runs every stage for agentID, gates possibilities, scores
// candidates and records the action atoms in the trace. src drives sampling;
// nil selects the best candidate deterministically.
func (e *Engine) DecideAgent(snap *world.Snapshot, idx features.Index, agentID string, mem Memory, overrides []decision.Override, src decision.Rand) (AgentResult, error) {
	slice := &pipeline.Slice{
		Snapshot:  snap,
		Features:  idx,
		Tables:    e.tables,
		PrevFinal: mem.PrevFinal,
		Config:    e.opts.Pipeline,
	}
	res, err := e.runner.Run(agentID, slice)
	if err != nil {
		return AgentResult{}, fmt.Errorf("pipeline %s: %w", agentID, err)
	}

	ps := e.registry.Derive(res.View(pipeline.StagePossibility), agentID)
	if res, err = res.Append(pipeline.StagePossibility, nil); err != nil {
		return AgentResult{}, fmt.Errorf("possibility %s: %w", agentID, err)
	}

	view := res.View(pipeline.StageAction)
	energy, utilIDs := pipeline.GoalEnergy(view, agentID)
	opts := decision.Options{
		Model:         e.opts.Model,
		PenaltyFactor: e.opts.PenaltyFactor,
		MinConfidence: e.opts.MinConfidence,
		PrevActionID:  mem.PrevActionID,
		MomentumBonus: e.opts.MomentumBonus,
		Overrides:     overrides,
		AgentID:       agentID,
		UtilIDs:       utilIDs,
	}
	if u, ok := view.Find(atom.NSUtil, pipeline.UtilUrgency, agentID, ""); ok {
		opts.UrgencyID = u.ID
	}
	// A typed nil would defeat the nil check in Decide.
	if s, ok := src.(*rng.Source); ok && s == nil {
		src = nil
	}
	cands := decision.BuildCandidates(ps, e.tables, utilIDs)
	if len(cands) == 0 {
		fb := possibility.Fallback(res.View(pipeline.StagePossibility), agentID,
			"no enabled affordance has a catalog action; fallback wait")
		ps = append(ps, fb)
		cands = decision.BuildCandidates([]possibility.Possibility{fb}, e.tables, utilIDs)
	}
	snapshot := decision.Decide(cands, energy, e.opts.Temperature, src, opts)

	if res, err = res.Append(pipeline.StageAction, snapshot.Atoms); err != nil {
		return AgentResult{}, fmt.Errorf("action %s: %w", agentID, err)
	}
	return AgentResult{
		AgentID:       agentID,
		Trace:         res.Trace,
		Possibilities: ps,
		Decision:      snapshot,
	}, nil
}

// #endregion decide-agent

// #region tick

// AgentSource returns the random source an agent draws from in a tick run
// under seed.
func AgentSource(seed uint64, tick int, agentID string) *rng.Source {
	return rng.New(seed, uint64(tick)).Derive("agent:" + agentID)
}

// Tick decides for every agent in parallel and steps the mass network once.
// Each agent draws from its own stream derived from (seed, tick, agent id),
// so results do not depend on scheduling.
func (e *Engine) Tick(ctx context.Context, req TickRequest) (TickResult, error) {
	start := time.Now()
	snap := req.Snapshot
	if snap == nil {
		return TickResult{}, ErrNoSnapshot
	}
	idx := e.extractor.ExtractAll(snap)
	root := rng.New(e.opts.Seed, uint64(snap.Tick))

	ids := snap.AgentIDs()
	sort.Strings(ids)
	results := make([]AgentResult, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	if e.opts.Workers > 0 {
		g.SetLimit(e.opts.Workers)
	}
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t0 := time.Now()
			r, err := e.DecideAgent(snap, idx, id, req.Memory[id], req.Overrides, AgentSource(e.opts.Seed, snap.Tick, id))
			if err != nil {
				e.log.Error("agent decision failed", zap.String("agent", id), zap.Error(err))
				return err
			}
			results[i] = r
			recordAgent(r, time.Since(t0).Seconds())
			e.logAgent(r)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return TickResult{}, fmt.Errorf("tick %d: %w", snap.Tick, err)
	}

	out := TickResult{RunID: uuid.New().String(), Tick: snap.Tick, Agents: results}
	if req.Network != nil {
		in := mass.Aggregate(*req.Network, req.Assignment, CharacterSignals(snap, idx), e.opts.Aggregation)
		next, err := mass.Step(*req.Network, in, e.opts.Dt, root.Derive("mass"))
		if err != nil {
			return TickResult{}, fmt.Errorf("tick %d: mass step: %w", snap.Tick, err)
		}
		rep := mass.Analyze(next, e.opts.Risk)
		out.Network, out.Inputs, out.Risk = &next, &in, &rep
		if rep.Alert {
			e.log.Warn("mass network alert", zap.String("version", next.VersionID), zap.String("reason", rep.Reason))
		}
	}

	elapsed := time.Since(start)
	recordTick(out, elapsed.Seconds())
	e.log.Info("tick complete",
		zap.Int("tick", snap.Tick),
		zap.String("run", out.RunID),
		zap.Int("agents", len(results)),
		zap.Duration("elapsed", elapsed),
	)
	return out, nil
}

// #endregion tick

func (e *Engine) logAgent(r AgentResult) {
	d := r.Decision
	if ce := e.log.Check(zap.DebugLevel, "agent decision"); ce != nil {
		ce.Write(
			zap.String("agent", r.AgentID),
			zap.String("action", d.Best.Candidate.ID),
			zap.Float64("q", d.Best.Q),
			zap.Bool("fallback", r.Fallback()),
			zap.Bool("filter_bypassed", d.FilterBypassed),
			zap.Bool("forced", d.Forced),
		)
	}
}
