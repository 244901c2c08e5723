// Package auth holds the single authorization gate consulted before every
// privileged review action. Workers must not re-implement the check inline.
package auth

import "context"

// RoleLookup resolves role membership on the chat platform. Supplied
// externally; treated as authoritative.
type RoleLookup interface {
	HasRole(ctx context.Context, userID, roleID string) (bool, error)
}

// ReviewerGate answers whether a user may accept or reject applications.
// Implementations must not cache results: every privileged action re-checks.
type ReviewerGate interface {
	IsPrivilegedReviewer(ctx context.Context, userID string) (bool, error)
}

// RoleGate authorizes members of a configured officer role.
type RoleGate struct {
	lookup RoleLookup
	roleID string
}

func NewRoleGate(lookup RoleLookup, roleID string) *RoleGate {
	return &RoleGate{lookup: lookup, roleID: roleID}
}

func (g *RoleGate) IsPrivilegedReviewer(ctx context.Context, userID string) (bool, error) {
	return g.lookup.HasRole(ctx, userID, g.roleID)
}

// StaticGate authorizes a fixed set of reviewer IDs. Used when no role
// lookup is wired (tests, single-guild deployments with a config list).
type StaticGate struct {
	reviewers map[string]struct{}
}

func NewStaticGate(reviewerIDs []string) *StaticGate {
	set := make(map[string]struct{}, len(reviewerIDs))
	for _, id := range reviewerIDs {
		set[id] = struct{}{}
	}
	return &StaticGate{reviewers: set}
}

func (g *StaticGate) IsPrivilegedReviewer(_ context.Context, userID string) (bool, error) {
	_, ok := g.reviewers[userID]
	return ok, nil
}
