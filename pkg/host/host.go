// Package host declares the collaborator ports the pipeline calls through.
// The hosting application's integration layer supplies implementations;
// the core never reaches into the host directly.
package host

import (
	"context"
	"time"
)

// UserData is the resolved profile for a user.
type UserData struct {
	Username   string
	Reputation int
	PostCount  int
	JoinDate   time.Time
}

// Group is a group membership entry.
type Group struct {
	Name string
}

// UserDirectory looks up users and their group memberships.
type UserDirectory interface {
	GetUserData(ctx context.Context, uid int64) (UserData, error)
	GetUserGroups(ctx context.Context, uid int64) ([]Group, error)
}

// Notification is a push notification record.
type Notification struct {
	Type      string
	BodyShort string
	BodyLong  string
	NID       string
	From      int64
	Path      string
}

// NotificationSink creates and pushes notifications to recipients.
type NotificationSink interface {
	Create(ctx context.Context, spec Notification) (*Notification, error)
	Push(ctx context.Context, n *Notification, recipients []int64) error
}
