package testutil

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vitor518/Mangues/core"
	"github.com/vitor518/Mangues/core/user"
	logsvc "github.com/vitor518/Mangues/services/logger"
	"github.com/vitor518/Mangues/storage/database"
)

func init() {
	user.PasswordCost = 4 // bcrypt.MinCost
}

func CreateUser(t *testing.T, repo user.Repository, name, handle, pwd string, createdAt ...time.Time) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:       name,
		Handle:     handle,
		Avatar:     user.DefaultAvatar,
		CreatedAt:  tstamp,
		LastSeenAt: tstamp,
		Visits:     1,
	}
	if pwd == "" {
		pwd = "secret"
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// PrepareDB returns a migrated, empty Postgres database.
// The test is skipped unless TEST_DATABASE_URL is set.
func PrepareDB(t *testing.T) *sqlx.DB {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.OpenURL(dsn)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	_, err = db.Exec(`TRUNCATE usuario_conquistas, conquistas, especies_visualizadas, ameacas_visualizadas,
		acoes_ameacas, estatisticas_jogos, usuarios RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// NewLogger returns a silent RollbarLogger.
func NewLogger() *logsvc.RollbarLogger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), &core.Config{Env: "TEST", TestMode: true})
	logger.Enable(false)
	return logger
}

// LogEntry is a message recorded by Logger.
type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records every entry. Safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) add(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry{}, l.entries...)
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.add("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.add("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.add("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.add("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { panic(fmt.Sprintf("fatal: %s", msg)) }
