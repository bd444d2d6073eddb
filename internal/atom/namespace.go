package atom

import "strings"

// #region namespace

// Namespace is a rung on the atom ladder. Ordering is significant: a stage may
// only read namespaces that rank strictly below the one it writes.
type Namespace uint8

const (
	NSWorld Namespace = iota
	NSCtx
	NSCtxFinal
	NSThreat
	NSDrv
	NSGoal
	NSUtil
	NSAction
)

// Ladder lists every namespace in rank order.
var Ladder = []Namespace{NSWorld, NSCtx, NSCtxFinal, NSThreat, NSDrv, NSGoal, NSUtil, NSAction}

var namespaceNames = [...]string{
	NSWorld:    "world",
	NSCtx:      "ctx",
	NSCtxFinal: "ctx:final",
	NSThreat:   "threat",
	NSDrv:      "drv",
	NSGoal:     "goal",
	NSUtil:     "util",
	NSAction:   "action",
}

// String returns the id prefix for the namespace.
func (n Namespace) String() string {
	if int(n) < len(namespaceNames) {
		return namespaceNames[n]
	}
	return "unknown"
}

// Rank returns the position of n on the ladder.
func (n Namespace) Rank() int { return int(n) }

// Valid reports whether n is a known namespace.
func (n Namespace) Valid() bool { return int(n) < len(namespaceNames) }

// Before reports whether n ranks strictly below other.
func (n Namespace) Before(other Namespace) bool { return n < other }

// #endregion namespace

// #region parse

// ParseNamespace recovers the namespace from an atom id. ctx:final is matched
// before ctx so that the longer prefix wins.
func ParseNamespace(id string) (Namespace, bool) {
	if strings.HasPrefix(id, "ctx:final:") {
		return NSCtxFinal, true
	}
	prefix, _, ok := strings.Cut(id, ":")
	if !ok {
		return 0, false
	}
	for _, ns := range Ladder {
		if ns == NSCtxFinal {
			continue
		}
		if ns.String() == prefix {
			return ns, true
		}
	}
	return 0, false
}

// #endregion parse
