package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
)

// recordingDriver, açılan transaction'ların nasıl kapandığını kaydeder.
type recordingDriver struct {
	mu        sync.Mutex
	commits   int
	rollbacks int
}

func (d *recordingDriver) Open(string) (driver.Conn, error) { return &recordingConn{d: d}, nil }

func (d *recordingDriver) counts() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commits, d.rollbacks
}

type recordingConn struct{ d *recordingDriver }

func (c *recordingConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare desteklenmiyor")
}
func (c *recordingConn) Close() error              { return nil }
func (c *recordingConn) Begin() (driver.Tx, error) { return &recordingTx{d: c.d}, nil }

type recordingTx struct{ d *recordingDriver }

func (tx *recordingTx) Commit() error {
	tx.d.mu.Lock()
	defer tx.d.mu.Unlock()
	tx.d.commits++
	return nil
}

func (tx *recordingTx) Rollback() error {
	tx.d.mu.Lock()
	defer tx.d.mu.Unlock()
	tx.d.rollbacks++
	return nil
}

var (
	txDriver     = &recordingDriver{}
	registerOnce sync.Once
)

func openRecordingDB(t *testing.T) (*sql.DB, *recordingDriver) {
	t.Helper()
	registerOnce.Do(func() { sql.Register("tb-recording", txDriver) })

	db, err := sql.Open("tb-recording", "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, txDriver
}

func TestWithTx_CommitAndRollback(t *testing.T) {
	db, d := openRecordingDB(t)
	logger := log.New(io.Discard, "", 0)
	commits, rollbacks := d.counts()

	if err := WithTx(context.Background(), db, logger, func(ctx context.Context) error {
		if TxFromContext(ctx) == nil {
			t.Error("expected transaction in context")
		}
		if LockClause(ctx) != " FOR UPDATE" {
			t.Error("expected row lock inside transaction")
		}
		return nil
	}); err != nil {
		t.Fatalf("expected commit, got %v", err)
	}

	boom := errors.New("boom")
	if err := WithTx(context.Background(), db, logger, func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	c, r := d.counts()
	if c-commits != 1 || r-rollbacks != 1 {
		t.Fatalf("expected 1 commit and 1 rollback, got %d and %d", c-commits, r-rollbacks)
	}
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db, d := openRecordingDB(t)
	logger := log.New(io.Discard, "", 0)
	commits, rollbacks := d.counts()

	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Fatalf("expected panic to propagate, got %v", r)
			}
		}()
		_ = WithTx(context.Background(), db, logger, func(context.Context) error {
			panic("boom")
		})
	}()

	c, r := d.counts()
	if c != commits || r-rollbacks != 1 {
		t.Fatalf("expected a single rollback and no commit, got %d commits, %d rollbacks", c-commits, r-rollbacks)
	}
	if LockClause(context.Background()) != "" {
		t.Fatal("expected no row lock outside transaction")
	}
}
