// Package session persists the signed-in browser session: the backend
// bearer token plus a cached copy of the user profile. This is the only
// state the portal owns; everything else lives in the backend.
package session

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/MahanteshPatil1214/agency-platform/internal/models"
)

const lifetime = 30 * 24 * time.Hour

type Store struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

func Open(dbPath, migrationsDir string, log *zap.SugaredLogger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, migrationsDir); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Session is one signed-in browser. Cookie is the opaque value held by
// the browser; Token is the backend bearer token it maps to.
type Session struct {
	Cookie    string
	Token     string
	User      models.User
	ExpiresAt time.Time
}

// NewCookie returns a fresh random session cookie value.
func NewCookie() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (s *Store) Create(ctx context.Context, cookie, token string, user models.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (cookie, token, user_json, expires_at) VALUES (?, ?, ?, ?)`,
		cookie, token, string(userJSON), time.Now().Add(lifetime),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Get resolves a cookie to its session. Returns (nil, nil) when the
// cookie is unknown, expired, or its backend token has lapsed; expired
// rows are removed on the way out.
func (s *Store) Get(ctx context.Context, cookie string) (*Session, error) {
	sess := &Session{Cookie: cookie}
	var userJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_json, expires_at FROM sessions WHERE cookie = ? AND expires_at > ?`,
		cookie, time.Now(),
	).Scan(&sess.Token, &userJSON, &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if TokenExpired(sess.Token) {
		s.log.Infow("dropping session with expired backend token", "cookie", cookie[:8])
		_ = s.Delete(ctx, cookie)
		return nil, nil
	}

	if err := json.Unmarshal([]byte(userJSON), &sess.User); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return sess, nil
}

// UpdateUser rewrites the cached profile copy after a profile update.
func (s *Store) UpdateUser(ctx context.Context, cookie string, user models.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE sessions SET user_json = ? WHERE cookie = ?`,
		string(userJSON), cookie,
	)
	return err
}

func (s *Store) Delete(ctx context.Context, cookie string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE cookie = ?`, cookie)
	return err
}

func (s *Store) CleanExpired(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, time.Now())
	return err
}
