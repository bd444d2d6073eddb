package decision

import (
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
)

// Origin tags atoms emitted by this package.
const Origin = "decision"

// #region decide

// Decide scores cands against goal energy, filters by confidence, applies
// momentum, ranks canonically, samples the chosen candidate and emits one
// action atom per candidate.
//
// Temperature <= 0 or a nil rng selects the highest sampling logit.
func Decide(cands []Candidate, energy map[string]float64, temperature float64, rng Rand, opts Options) Snapshot {
	var snap Snapshot

	scored := make([]Scored, len(cands))
	for i, c := range cands {
		scored[i] = score(c, energy, opts)
		if opts.PrevActionID != "" && c.ID == opts.PrevActionID && atom.Finite(opts.MomentumBonus) {
			scored[i].Q += opts.MomentumBonus
		}
	}

	pool, excluded, bypassed := feasible(scored, opts.MinConfidence)
	if bypassed {
		snap.FilterBypassed = true
		snap.Notes = append(snap.Notes, fmt.Sprintf("all %d candidates below min confidence %.3f; filter bypassed", len(pool), opts.MinConfidence))
	}
	rank(pool)
	rank(excluded)
	snap.Ranked = pool
	snap.Excluded = excluded

	if len(pool) > 0 {
		for i := range pool {
			pool[i].Logit = pool[i].Q
			if o, ok := opts.SamplingOverride[pool[i].Candidate.ID]; ok {
				if atom.Finite(o) {
					pool[i].Logit += o
				} else {
					snap.Notes = append(snap.Notes, fmt.Sprintf("non-finite sampling override for %s ignored", pool[i].Candidate.ID))
				}
			}
		}
		idx, probs := sample(pool, temperature, rng)
		snap.Best = pool[idx]
		snap.Probabilities = probs
	} else {
		snap.Notes = append(snap.Notes, "no candidates")
	}

	snap.Atoms = actionAtoms(append(append([]Scored(nil), pool...), excluded...), opts, &snap.Notes)

	if ov, ok := forceFor(opts.Overrides, opts.AgentID); ok {
		applyForce(&snap, ov, opts)
	}
	return snap
}

// #endregion decide

// #region scoring

func score(c Candidate, energy map[string]float64, opts Options) Scored {
	goals := make([]string, 0, len(c.DeltaGoals))
	for g := range c.DeltaGoals {
		goals = append(goals, g)
	}
	// summed in goal id order so rawQ is bit-identical across calls
	sort.Strings(goals)
	var raw float64
	for _, g := range goals {
		d := c.DeltaGoals[g]
		e, ok := energy[g]
		if !ok || !atom.Finite(e) || !atom.Finite(d) {
			continue
		}
		raw += e * d
	}
	conf := atom.Clamp01(c.Confidence)
	net := raw - c.Cost
	var q float64
	switch opts.Model {
	case AdditivePenalty:
		penalty := opts.PenaltyFactor
		if penalty == 0 || !atom.Finite(penalty) {
			penalty = DefaultPenaltyFactor
		}
		q = net - (1-conf)*math.Max(net, 0)*penalty
	default:
		q = net * conf
	}
	return Scored{Candidate: c, RawQ: raw, Q: q}
}

// feasible splits candidates by MinConfidence. When none meet it the filter
// is bypassed and every candidate stays in the pool.
func feasible(all []Scored, threshold float64) (pool, excluded []Scored, bypassed bool) {
	if threshold <= 0 || len(all) == 0 {
		return all, nil, false
	}
	for _, s := range all {
		if s.Candidate.Confidence >= threshold {
			pool = append(pool, s)
		} else {
			excluded = append(excluded, s)
		}
	}
	if len(pool) == 0 {
		return all, nil, true
	}
	return pool, excluded, false
}

// rank orders by q descending, then id ascending.
func rank(s []Scored) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Q != s[j].Q {
			return s[i].Q > s[j].Q
		}
		return s[i].Candidate.ID < s[j].Candidate.ID
	})
}

// #endregion scoring

// #region sampling

// sample picks an index of ranked by softmax over logit/temperature.
func sample(ranked []Scored, temperature float64, rng Rand) (int, map[string]float64) {
	probs := make(map[string]float64, len(ranked))
	best := 0
	for i := range ranked {
		if ranked[i].Logit > ranked[best].Logit {
			best = i
		}
	}
	if temperature <= 0 || !atom.Finite(temperature) || rng == nil {
		for i, s := range ranked {
			if i == best {
				probs[s.Candidate.ID] = 1
			} else {
				probs[s.Candidate.ID] = 0
			}
		}
		return best, probs
	}

	top := ranked[best].Logit
	weights := make([]float64, len(ranked))
	var total float64
	for i, s := range ranked {
		weights[i] = math.Exp((s.Logit - top) / temperature)
		total += weights[i]
	}
	for i, s := range ranked {
		probs[s.Candidate.ID] = weights[i] / total
	}

	r := rng.Float64() * total
	var acc float64
	for i, w := range weights {
		acc += w
		if r < acc {
			return i, probs
		}
	}
	return len(ranked) - 1, probs
}

// #endregion sampling

// #region atoms

// actionAtoms emits action:<kind>:<actor>[:<target>] per candidate. Citations
// are restricted to util and drv atoms.
func actionAtoms(all []Scored, opts Options, notes *[]string) []atom.Atom {
	out := make([]atom.Atom, 0, len(all))
	seen := make(map[string]bool, len(all))
	for _, s := range all {
		c := s.Candidate
		used := citations(c, opts)
		a := atom.New(atom.Spec{
			NS: atom.NSAction, Kind: atom.KindScore, Key: c.Kind, Subject: c.ActorID, Target: c.TargetID,
			Magnitude: s.Q, Origin: Origin, Used: used,
			Notes: []string{fmt.Sprintf("rawQ=%.4f cost=%.4f conf=%.3f model=%s", s.RawQ, c.Cost, c.Confidence, opts.Model)},
		}).WithConfidence(c.Confidence)
		if seen[a.ID] {
			*notes = append(*notes, "duplicate action atom "+a.ID+" skipped")
			continue
		}
		seen[a.ID] = true
		out = append(out, a)
	}
	return out
}

func citations(c Candidate, opts Options) []string {
	seen := make(map[string]bool)
	var used []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			used = append(used, id)
		}
	}
	goals := make([]string, 0, len(c.DeltaGoals))
	for g := range c.DeltaGoals {
		goals = append(goals, g)
	}
	sort.Strings(goals)
	hasUtil := false
	for _, g := range goals {
		if id, ok := opts.UtilIDs[g]; ok {
			add(id)
			hasUtil = true
		}
	}
	for _, id := range c.SupportAtoms {
		ns, ok := atom.ParseNamespace(id)
		if !ok {
			continue
		}
		switch ns {
		case atom.NSUtil:
			add(id)
			hasUtil = true
		case atom.NSDrv:
			add(id)
		}
	}
	if !hasUtil && len(used) > 0 {
		if opts.UrgencyID == "" {
			return nil
		}
		add(opts.UrgencyID)
	}
	return used
}

// #endregion atoms

// #region force

func forceFor(ovs []Override, agentID string) (Override, bool) {
	if agentID == "" {
		return Override{}, false
	}
	for _, o := range ovs {
		if o.Type == OverrideForceAction && o.AgentID == agentID {
			return o, true
		}
	}
	return Override{}, false
}

// applyForce sets Best to the candidate named by the override, matching id
// first and kind second, or to a synthetic zero-scored candidate.
func applyForce(snap *Snapshot, ov Override, opts Options) {
	best, found := lookup(snap.Ranked, ov.ActionID)
	if !found {
		best, found = lookup(snap.Excluded, ov.ActionID)
	}
	if !found {
		best = Scored{Candidate: Candidate{ID: ov.ActionID, Kind: ov.ActionID, ActorID: opts.AgentID, Confidence: 1}}
		snap.Notes = append(snap.Notes, fmt.Sprintf("forced action %s not among candidates; synthesized", ov.ActionID))
	}
	snap.Best = best
	snap.Forced = true

	var used []string
	if found {
		used = citations(best.Candidate, opts)
	}
	snap.Atoms = append(snap.Atoms, atom.New(atom.Spec{
		NS: atom.NSAction, Kind: atom.KindForced, Key: "forced", Subject: opts.AgentID,
		Magnitude: 1, Origin: Origin, Used: used,
		Notes: []string{"force_action " + ov.ActionID},
	}))
}

func lookup(s []Scored, actionID string) (Scored, bool) {
	for _, x := range s {
		if x.Candidate.ID == actionID {
			return x, true
		}
	}
	for _, x := range s {
		if x.Candidate.Kind == actionID {
			return x, true
		}
	}
	return Scored{}, false
}

// #endregion force
