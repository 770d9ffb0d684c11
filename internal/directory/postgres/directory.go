// Package postgres implements the directory collaborator against the chat
// service's relational schema (users, friends, server_members).
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avask/pulse/internal/directory"
	"github.com/avask/pulse/internal/domain"
)

type Directory struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Directory {
	return &Directory{db: db}
}

// Connect opens a pool against dsn and pings it once.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgx ping: %w", err)
	}
	return pool, nil
}

func (d *Directory) LookupUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var u domain.User
	err := d.db.QueryRow(ctx, `
		SELECT id, username, COALESCE(avatar,''), COALESCE(status,'offline'),
		       COALESCE(custom_status,''), COALESCE(activity,''), COALESCE(activity_type,'')
		FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Username, &u.Avatar, &u.Status, &u.CustomStatus, &u.Activity, &u.ActivityType)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, directory.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *Directory) SetUserStatus(ctx context.Context, id domain.UserID, status string) error {
	cmd, err := d.db.Exec(ctx,
		`UPDATE users SET status=$1, last_seen=now() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return directory.ErrUserNotFound
	}
	return nil
}

func (d *Directory) UpdateProfile(ctx context.Context, id domain.UserID, p directory.Profile) error {
	cmd, err := d.db.Exec(ctx, `
		UPDATE users SET status=COALESCE(NULLIF($1,''), status),
		       custom_status=NULLIF($2,''), activity=NULLIF($3,''), activity_type=NULLIF($4,'')
		WHERE id=$5`,
		p.Status, p.CustomStatus, p.Activity, p.ActivityType, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return directory.ErrUserNotFound
	}
	return nil
}

func (d *Directory) ListAcceptedFriends(ctx context.Context, id domain.UserID) ([]domain.UserID, error) {
	rows, err := d.db.Query(ctx, `
		SELECT DISTINCT u.id FROM users u
		JOIN friends f ON (f.friend_id = u.id AND f.user_id = $1)
		               OR (f.user_id = u.id AND f.friend_id = $1)
		WHERE f.status = 'accepted' AND u.id != $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UserID
	for rows.Next() {
		var fid domain.UserID
		if err := rows.Scan(&fid); err != nil {
			return nil, err
		}
		out = append(out, fid)
	}
	return out, rows.Err()
}

func (d *Directory) ListUserServerIDs(ctx context.Context, id domain.UserID) ([]string, error) {
	rows, err := d.db.Query(ctx,
		`SELECT server_id FROM server_members WHERE user_id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sid string
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		out = append(out, sid)
	}
	return out, rows.Err()
}
