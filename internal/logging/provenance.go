package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/engine"
)

// Schema creates the decision_log table.
const Schema = `
CREATE TABLE IF NOT EXISTS decision_log (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id          TEXT NOT NULL,
	tick            INTEGER NOT NULL,
	agent_id        TEXT NOT NULL,
	version_id      TEXT,
	action_id       TEXT NOT NULL,
	kind            TEXT NOT NULL,
	q               REAL NOT NULL,
	fallback        INTEGER NOT NULL,
	filter_bypassed INTEGER NOT NULL,
	forced          INTEGER NOT NULL,
	ranked_json     TEXT,
	atom_ids        TEXT,
	notes           TEXT,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS decision_log_tick ON decision_log (tick, agent_id);
`

// #region entry-from-result
// EntryFromResult flattens one agent's decision into a log row.
func EntryFromResult(runID string, tick int, versionID string, r engine.AgentResult) (DecisionEntry, error) {
	d := r.Decision
	ranked := make([]RankedRecord, 0, len(d.Ranked)+len(d.Excluded))
	for _, s := range d.Ranked {
		ranked = append(ranked, RankedRecord{ID: s.Candidate.ID, Q: s.Q, RawQ: s.RawQ, Confidence: s.Candidate.Confidence})
	}
	for _, s := range d.Excluded {
		ranked = append(ranked, RankedRecord{ID: s.Candidate.ID, Q: s.Q, RawQ: s.RawQ, Confidence: s.Candidate.Confidence, Excluded: true})
	}
	rankedJSON, err := json.Marshal(ranked)
	if err != nil {
		return DecisionEntry{}, fmt.Errorf("marshal ranked: %w", err)
	}
	ids := make([]string, len(d.Atoms))
	for i, a := range d.Atoms {
		ids[i] = a.ID
	}
	return DecisionEntry{
		RunID:          runID,
		Tick:           tick,
		AgentID:        r.AgentID,
		VersionID:      versionID,
		ActionID:       d.Best.Candidate.ID,
		Kind:           d.Best.Candidate.Kind,
		Q:              d.Best.Q,
		Fallback:       r.Fallback(),
		FilterBypassed: d.FilterBypassed,
		Forced:         d.Forced,
		RankedJSON:     string(rankedJSON),
		AtomIDs:        strings.Join(ids, ","),
		Notes:          strings.Join(d.Notes, "; "),
	}, nil
}

// #endregion entry-from-result

// #region log-decision
// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// LogDecision writes a decision entry to the decision_log table.
func LogDecision(db *sql.DB, entry DecisionEntry) error {
	return insert(db, entry)
}

// LogTick writes one row per agent of a tick result in a single transaction.
func LogTick(db *sql.DB, res engine.TickResult) error {
	var version string
	if res.Network != nil {
		version = res.Network.VersionID
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, r := range res.Agents {
		entry, err := EntryFromResult(res.RunID, res.Tick, version, r)
		if err != nil {
			return err
		}
		entry.CreatedAt = now
		if err := insert(tx, entry); err != nil {
			return fmt.Errorf("agent %s: %w", r.AgentID, err)
		}
	}
	return tx.Commit()
}

func insert(db execer, entry DecisionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO decision_log (run_id, tick, agent_id, version_id, action_id, kind, q,
		   fallback, filter_bypassed, forced, ranked_json, atom_ids, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Tick,
		entry.AgentID,
		nullIfEmpty(entry.VersionID),
		entry.ActionID,
		entry.Kind,
		entry.Q,
		entry.Fallback,
		entry.FilterBypassed,
		entry.Forced,
		nullIfEmpty(entry.RankedJSON),
		nullIfEmpty(entry.AtomIDs),
		nullIfEmpty(entry.Notes),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// #endregion log-decision

// #region list-decisions
// ListDecisions returns the most recent entries, newest first. agentID
// filters when non-empty.
func ListDecisions(db *sql.DB, agentID string, limit int) ([]DecisionEntry, error) {
	query := `SELECT id, run_id, tick, agent_id, version_id, action_id, kind, q,
	            fallback, filter_bypassed, forced, ranked_json, atom_ids, notes, created_at
	          FROM decision_log`
	var args []any
	if agentID != "" {
		query += ` WHERE agent_id = ?`
		args = append(args, agentID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionEntry
	for rows.Next() {
		var e DecisionEntry
		var version, ranked, atoms, notes sql.NullString
		var created string
		if err := rows.Scan(&e.ID, &e.RunID, &e.Tick, &e.AgentID, &version, &e.ActionID, &e.Kind, &e.Q,
			&e.Fallback, &e.FilterBypassed, &e.Forced, &ranked, &atoms, &notes, &created); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.VersionID = version.String
		e.RankedJSON = ranked.String
		e.AtomIDs = atoms.String
		e.Notes = notes.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion list-decisions

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
