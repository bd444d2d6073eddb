package journal

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/logging"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/mass"
)

// ErrNotFound is returned when a version or the active pointer is missing.
var ErrNotFound = errors.New("journal: not found")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS network_versions (
	version_id    TEXT PRIMARY KEY,
	parent_id     TEXT,
	tick          INTEGER NOT NULL,
	node_order    TEXT NOT NULL,
	states        BLOB NOT NULL,
	nodes_json    TEXT NOT NULL,
	weights_json  TEXT NOT NULL,
	risk_json     TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES network_versions(version_id)
);

CREATE TABLE IF NOT EXISTS active_network (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES network_versions(version_id)
);
`

// #endregion schema

// #region store-struct
// Store keeps versioned mass networks and the decision log in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	for _, stmt := range []string{schema, logging.Schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for the decision log.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #region create-initial
// CreateInitial stores net as a root version and makes it active.
func (s *Store) CreateInitial(net mass.Network) (Version, error) {
	if net.ParentID != "" {
		return Version{}, fmt.Errorf("initial version %s has parent %s", net.VersionID, net.ParentID)
	}
	return s.commit(net, nil, true)
}

// #endregion create-initial

// #region commit
// Commit inserts a stepped network and moves the active pointer to it.
func (s *Store) Commit(net mass.Network, risk *mass.RiskReport) (Version, error) {
	return s.commit(net, risk, false)
}

func (s *Store) commit(net mass.Network, risk *mass.RiskReport, upsert bool) (Version, error) {
	if net.VersionID == "" {
		return Version{}, fmt.Errorf("commit: %w: empty version id", mass.ErrShape)
	}
	if len(net.Nodes) != len(net.NodeOrder) {
		return Version{}, fmt.Errorf("commit: %w: %d nodes, %d ids", mass.ErrShape, len(net.Nodes), len(net.NodeOrder))
	}
	order, err := json.Marshal(net.NodeOrder)
	if err != nil {
		return Version{}, fmt.Errorf("marshal node order: %w", err)
	}
	nodes, err := json.Marshal(net.Nodes)
	if err != nil {
		return Version{}, fmt.Errorf("marshal nodes: %w", err)
	}
	weights, err := json.Marshal(net.W)
	if err != nil {
		return Version{}, fmt.Errorf("marshal weights: %w", err)
	}
	var riskPtr interface{}
	if risk != nil {
		b, err := json.Marshal(risk)
		if err != nil {
			return Version{}, fmt.Errorf("marshal risk: %w", err)
		}
		riskPtr = string(b)
	}
	var parentPtr interface{}
	if net.ParentID != "" {
		parentPtr = net.ParentID
	}
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return Version{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO network_versions (version_id, parent_id, tick, node_order, states, nodes_json, weights_json, risk_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		net.VersionID, parentPtr, net.Tick, string(order), encodeStates(net.Nodes),
		string(nodes), string(weights), riskPtr, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Version{}, fmt.Errorf("insert version: %w", err)
	}

	if upsert {
		_, err = tx.Exec(
			`INSERT INTO active_network (id, version_id) VALUES (1, ?)
			 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
			net.VersionID,
		)
	} else {
		var res sql.Result
		res, err = tx.Exec(`UPDATE active_network SET version_id = ? WHERE id = 1`, net.VersionID)
		if err == nil {
			if n, _ := res.RowsAffected(); n == 0 {
				err = fmt.Errorf("%w: no active network", ErrNotFound)
			}
		}
	}
	if err != nil {
		return Version{}, fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Version{}, fmt.Errorf("commit: %w", err)
	}
	return Version{Network: net.Clone(), Risk: risk, CreatedAt: now}, nil
}

// #endregion commit

// #region get-current
// GetCurrent reads the active network version.
func (s *Store) GetCurrent() (Version, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_network WHERE id = 1`).Scan(&versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return Version{}, fmt.Errorf("get active: %w", ErrNotFound)
	}
	if err != nil {
		return Version{}, fmt.Errorf("get active: %w", err)
	}
	return s.GetVersion(versionID)
}

// #endregion get-current

// #region get-version
const selectVersion = `SELECT version_id, parent_id, tick, node_order, states, nodes_json, weights_json, risk_json, created_at
	FROM network_versions`

type scanner interface {
	Scan(dest ...any) error
}

// GetVersion retrieves a specific network version by ID.
func (s *Store) GetVersion(id string) (Version, error) {
	v, err := scanVersion(s.db.QueryRow(selectVersion+` WHERE version_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Version{}, fmt.Errorf("get version %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Version{}, fmt.Errorf("get version %s: %w", id, err)
	}
	return v, nil
}

func scanVersion(row scanner) (Version, error) {
	var v Version
	var parentID, riskJSON sql.NullString
	var order, nodes, weights, created string
	var states []byte

	if err := row.Scan(&v.Network.VersionID, &parentID, &v.Network.Tick, &order, &states,
		&nodes, &weights, &riskJSON, &created); err != nil {
		return Version{}, err
	}
	v.Network.ParentID = parentID.String
	if err := json.Unmarshal([]byte(order), &v.Network.NodeOrder); err != nil {
		return Version{}, fmt.Errorf("unmarshal node order: %w", err)
	}
	if err := json.Unmarshal([]byte(nodes), &v.Network.Nodes); err != nil {
		return Version{}, fmt.Errorf("unmarshal nodes: %w", err)
	}
	if err := json.Unmarshal([]byte(weights), &v.Network.W); err != nil {
		return Version{}, fmt.Errorf("unmarshal weights: %w", err)
	}
	xs := decodeStates(states)
	if len(xs) != len(v.Network.Nodes) {
		return Version{}, fmt.Errorf("%w: %d states for %d nodes", mass.ErrShape, len(xs), len(v.Network.Nodes))
	}
	for i := range v.Network.Nodes {
		v.Network.Nodes[i].X = xs[i]
	}
	if riskJSON.Valid {
		v.Risk = &mass.RiskReport{}
		if err := json.Unmarshal([]byte(riskJSON.String), v.Risk); err != nil {
			return Version{}, fmt.Errorf("unmarshal risk: %w", err)
		}
	}
	v.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return v, nil
}

// #endregion get-version

// #region rollback
// Rollback sets the active pointer to a previous version.
func (s *Store) Rollback(targetVersionID string) error {
	var exists int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM network_versions WHERE version_id = ?`, targetVersionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("version %s: %w", targetVersionID, ErrNotFound)
	}

	_, err = s.db.Exec(`UPDATE active_network SET version_id = ? WHERE id = 1`, targetVersionID)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// #endregion rollback

// #region list-versions
// ListVersions returns the most recent network versions, newest tick first.
func (s *Store) ListVersions(limit int) ([]Version, error) {
	rows, err := s.db.Query(selectVersion+` ORDER BY tick DESC, created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Lineage walks parent links from id back to the root, newest first.
func (s *Store) Lineage(id string) ([]Version, error) {
	var out []Version
	seen := make(map[string]bool)
	for id != "" {
		if seen[id] {
			return nil, fmt.Errorf("lineage: cycle at %s", id)
		}
		seen[id] = true
		v, err := s.GetVersion(id)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		id = v.ParentID()
	}
	return out, nil
}

// #endregion list-versions

// #region state-encoding
func encodeStates(nodes []mass.Node) []byte {
	buf := make([]byte, len(nodes)*8)
	for i, n := range nodes {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(n.X))
	}
	return buf
}

func decodeStates(b []byte) []float64 {
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return out
}

// #endregion state-encoding
