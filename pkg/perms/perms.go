// Package perms evaluates chat access eligibility against the resolved
// settings and the caller's profile and group memberships.
package perms

import (
	"context"
	"fmt"
	"time"

	"github.com/sipeed/chatwarden/pkg/host"
	"github.com/sipeed/chatwarden/pkg/settings"
)

// ForbiddenMessage is the fixed text for cross-user read rejections.
const ForbiddenMessage = "אין גישה!"

// Groups whose members always pass the eligibility threshold.
const (
	GroupAdministrators   = "administrators"
	GroupGlobalModerators = "Global Moderators"
)

// NotYetEligibleError means the caller has not met the configured
// reputation, post count and account age thresholds.
type NotYetEligibleError struct {
	Message string
}

func (e *NotYetEligibleError) Error() string { return e.Message }

// AccessDeniedError means the caller belongs to the deny group.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// AccessForbiddenError means the caller tried to read another user's
// messages without admin rights.
type AccessForbiddenError struct{}

func (e *AccessForbiddenError) Error() string { return ForbiddenMessage }

// Gate runs the permission checks. It is stateless; settings arrive as a
// snapshot per call.
type Gate struct {
	dir host.UserDirectory

	// now is the clock, swappable in tests.
	now func() time.Time
}

func NewGate(dir host.UserDirectory) *Gate {
	return &Gate{dir: dir, now: time.Now}
}

// CheckChatAllowed applies the eligibility and deny rules for uid, in that
// order. Directory lookup failures propagate unchanged: the profile fields
// are required here, so there is no fail-open.
func (g *Gate) CheckChatAllowed(ctx context.Context, uid int64, cfg settings.Settings) error {
	user, err := g.dir.GetUserData(ctx, uid)
	if err != nil {
		return fmt.Errorf("look up user %d: %w", uid, err)
	}
	groups, err := g.dir.GetUserGroups(ctx, uid)
	if err != nil {
		return fmt.Errorf("look up groups for user %d: %w", uid, err)
	}

	if g.pendingThreshold(user, cfg) && !hasElevatedGroup(groups, cfg.AllowChatGroup) {
		return &NotYetEligibleError{Message: cfg.ChatNotYetAllowedMessage}
	}

	// The deny group is checked unconditionally, even when eligibility passed.
	if inGroup(groups, cfg.DenyChatGroup) {
		return &AccessDeniedError{Message: cfg.ChatDeniedMessage}
	}
	return nil
}

// CheckReadIdentity rejects a caller reading another user's messages
// without admin rights.
func (g *Gate) CheckReadIdentity(callerUID, uid int64, cfg settings.Settings) error {
	if callerUID != uid && !cfg.IsAdmin(callerUID) {
		return &AccessForbiddenError{}
	}
	return nil
}

// pendingThreshold reports whether the caller is below every threshold:
// reputation, post count, and a join date that is not yet in the past.
// Only join dates strictly in the future count against the caller; there
// is deliberately no minimum-age grace period.
func (g *Gate) pendingThreshold(user host.UserData, cfg settings.Settings) bool {
	return user.Reputation < cfg.MinReputation &&
		user.PostCount < cfg.MinPosts &&
		user.JoinDate.After(g.now())
}

func hasElevatedGroup(groups []host.Group, allowGroup string) bool {
	for _, grp := range groups {
		switch grp.Name {
		case GroupAdministrators, GroupGlobalModerators, allowGroup:
			return true
		}
	}
	return false
}

func inGroup(groups []host.Group, name string) bool {
	for _, grp := range groups {
		if grp.Name == name {
			return true
		}
	}
	return false
}
