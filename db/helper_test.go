package db

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"Gin_postgres_redis_library_api/events"
	"Gin_postgres_redis_library_api/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.BorrowEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.BorrowEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// sqlRecorder keeps every statement gorm executes.
type sqlRecorder struct {
	mu    sync.Mutex
	stmts []string
}

func (l *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return l }
func (l *sqlRecorder) Info(context.Context, string, ...any) {}
func (l *sqlRecorder) Warn(context.Context, string, ...any) {}
func (l *sqlRecorder) Error(context.Context, string, ...any) {}

func (l *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	l.mu.Lock()
	l.stmts = append(l.stmts, sql)
	l.mu.Unlock()
}

func (l *sqlRecorder) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.stmts...)
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func tempRepo(t *testing.T) (*Repo, *recordingPublisher) {
	t.Helper()
	return openTempRepo(t, "_busy_timeout=5000", 1)
}

// pooledRepo opens a WAL database with conns connections so transactions
// from different goroutines really run side by side. BEGIN IMMEDIATE waits on
// the busy timeout instead of failing when another writer holds the lock.
func pooledRepo(t *testing.T, conns int) (*Repo, *recordingPublisher) {
	t.Helper()
	return openTempRepo(t, "_busy_timeout=10000&_journal_mode=WAL&_txlock=immediate", conns)
}

func openTempRepo(t *testing.T, opts string, conns int) (*Repo, *recordingPublisher) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?%s", filepath.Join(t.TempDir(), "lib.db"), opts)
	conn, err := Open(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(conn))

	pub := &recordingPublisher{}
	return NewRepo(conn, zerolog.Nop(), pub), pub
}

func seedAuthor(t *testing.T, r *Repo, first, last string) *models.Author {
	t.Helper()
	a := &models.Author{Firstname: first, Lastname: last, Photo: "/uploads/" + first + ".jpg"}
	require.NoError(t, r.CreateAuthor(context.Background(), a))
	return a
}

func seedBook(t *testing.T, r *Repo, authorID, title, genre string, copies int) *models.Book {
	t.Helper()
	b := &models.Book{Title: title, Genre: genre, AuthorID: authorID, AvailableCopies: copies}
	require.NoError(t, r.CreateBook(context.Background(), b))
	return b
}

func copiesOf(t *testing.T, r *Repo, bookID string) int {
	t.Helper()
	b, err := r.FindBookByID(context.Background(), bookID)
	require.NoError(t, err)
	return b.AvailableCopies
}

func activeOf(t *testing.T, r *Repo, bookID string) int {
	t.Helper()
	n, err := r.CountActiveBorrows(context.Background(), bookID)
	require.NoError(t, err)
	return int(n)
}
