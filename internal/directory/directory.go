// Package directory is the coordinator's view of the user store. The real
// CRUD service owns users, friendships and server memberships; the
// coordinator only reads lookups to decide fan-out targets and writes back
// presence status.
package directory

import (
	"context"
	"errors"

	"github.com/avask/pulse/internal/domain"
)

var ErrUserNotFound = errors.New("directory: user not found")

// Profile carries the mutable presence fields of an explicit status update.
type Profile struct {
	Status       string
	CustomStatus string
	Activity     string
	ActivityType string
}

// Directory is implemented by the memory store (tests, single-node dev) and
// the postgres store (production). Calls may suspend; every method takes a
// context and runs on the calling connection's goroutine only.
type Directory interface {
	// LookupUser resolves an id to its profile, or ErrUserNotFound.
	LookupUser(ctx context.Context, id domain.UserID) (*domain.User, error)

	// SetUserStatus persists a presence transition (online/offline).
	SetUserStatus(ctx context.Context, id domain.UserID, status string) error

	// UpdateProfile persists an explicit update-status payload.
	UpdateProfile(ctx context.Context, id domain.UserID, p Profile) error

	// ListAcceptedFriends returns the ids with an accepted friendship
	// against id, in either direction, excluding id itself.
	ListAcceptedFriends(ctx context.Context, id domain.UserID) ([]domain.UserID, error)

	// ListUserServerIDs returns the servers the user is a member of.
	ListUserServerIDs(ctx context.Context, id domain.UserID) ([]string, error)
}
