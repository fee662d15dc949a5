package access

import (
	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
)

// Role is the organisational role supplied by the identity provider.
type Role string

const (
	RoleGuest         Role = "GUEST"
	RoleEmployee      Role = "EMPLOYEE"
	RoleManager       Role = "MANAGER"
	RoleCEO           Role = "CEO"
	RoleVicePresident Role = "VICE_PRESIDENT"
)

// roleMaxLevel maps each role to the highest classification it may read.
// Clearance is cumulative: a role cleared for HIGH also reads MID and LOW.
var roleMaxLevel = map[Role]docModel.Level{
	RoleGuest:         docModel.LevelLow,
	RoleEmployee:      docModel.LevelMid,
	RoleManager:       docModel.LevelHigh,
	RoleCEO:           docModel.LevelVeryHigh,
	RoleVicePresident: docModel.LevelVeryHigh,
}

// Resolve maps a role to its permitted classification levels, ordered from
// LOW upward. It is a pure lookup: no I/O, no locking, no side effects.
//
// Unknown or empty roles resolve to an empty set. Fail-closed is deliberate -
// a misconfigured role must yield zero retrievable documents, never LOW access.
func Resolve(role Role) []docModel.Level {
	max, ok := roleMaxLevel[role]
	if !ok {
		return nil
	}

	levels := make([]docModel.Level, 0, len(docModel.LevelOrder))
	for _, l := range docModel.LevelOrder {
		levels = append(levels, l)
		if l == max {
			break
		}
	}
	return levels
}

// Allowed reports whether the role may read the given level.
func Allowed(role Role, level docModel.Level) bool {
	max, ok := roleMaxLevel[role]
	if !ok {
		return false
	}
	return level.Rank() >= 0 && level.Rank() <= max.Rank()
}
