package journal

import (
	"time"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/mass"
)

// #region version
// Version is one committed mass network together with its risk report.
type Version struct {
	Network   mass.Network
	Risk      *mass.RiskReport
	CreatedAt time.Time
}

// VersionID is shorthand for v.Network.VersionID.
func (v Version) VersionID() string { return v.Network.VersionID }

// ParentID is shorthand for v.Network.ParentID.
func (v Version) ParentID() string { return v.Network.ParentID }

// #endregion version
