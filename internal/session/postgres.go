package session

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate brings the client_sessions table up to date.
func Migrate(dsn string) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// PGStore keeps sessions in Postgres, one row per session.
type PGStore struct {
	db  *pgxpool.Pool
	ttl time.Duration
}

// NewPGStore returns a new PGStore. Run Migrate first.
func NewPGStore(db *pgxpool.Pool, ttl time.Duration) *PGStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &PGStore{db: db, ttl: ttl}
}

func (s *PGStore) load(ctx context.Context, id string) (string, []byte, bool, error) {
	var (
		token string
		raw   []byte
	)
	err := s.db.QueryRow(ctx,
		`SELECT token, user_json FROM client_sessions WHERE id = $1 AND expires_at > NOW()`,
		id,
	).Scan(&token, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, fmt.Errorf("pg session load: %w", err)
	}
	return token, raw, true, nil
}

func (s *PGStore) Token(ctx context.Context, id string) (string, bool, error) {
	token, _, ok, err := s.load(ctx, id)
	return token, ok, err
}

func (s *PGStore) User(ctx context.Context, id string) (domain.User, bool, error) {
	_, raw, ok, err := s.load(ctx, id)
	if err != nil || !ok {
		return domain.User{}, false, err
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return domain.User{}, false, fmt.Errorf("decode session user: %w", err)
	}
	return u, true, nil
}

func (s *PGStore) Set(ctx context.Context, id, token string, user domain.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO client_sessions (id, token, user_json, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE
		SET token = EXCLUDED.token, user_json = EXCLUDED.user_json,
		    expires_at = EXCLUDED.expires_at, updated_at = NOW()`
	if _, err := s.db.Exec(ctx, query, id, token, b, time.Now().UTC().Add(s.ttl)); err != nil {
		return fmt.Errorf("pg session set: %w", err)
	}
	return nil
}

func (s *PGStore) Clear(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM client_sessions WHERE id = $1`, id)
	return err
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (s *PGStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM client_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
