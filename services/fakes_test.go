package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"gorm.io/gorm"
)

type sentMessage struct {
	To, Body string
}

// fakeSender records messages and fails for numbers listed in failFor.
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]bool
}

func (f *fakeSender) Send(_ context.Context, to, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[to] {
		return "", errors.New("carrier rejected message")
	}
	f.sent = append(f.sent, sentMessage{To: to, Body: body})
	return fmt.Sprintf("SM%03d", len(f.sent)), nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakeImageStore struct {
	folder string
	bytes  int
}

func (f *fakeImageStore) Upload(_ context.Context, r io.Reader, folder string) (*UploadedImage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.folder = folder
	f.bytes = len(data)
	return &UploadedImage{URL: "https://img.example/salon/" + folder + "/a.png", PublicID: "salon/" + folder + "/a"}, nil
}

// interleave runs fn just before the nth create, update or query on table
// touches the database. fn's writes are committed before that statement runs.
func interleave(t *testing.T, db *gorm.DB, op, table string, nth int, fn func()) {
	t.Helper()
	seen := 0
	hook := func(tx *gorm.DB) {
		if tx.Statement.Schema == nil || tx.Statement.Schema.Table != table {
			return
		}
		seen++
		if seen == nth {
			fn()
		}
	}
	name := "test:interleave_" + op + "_" + table
	var err error
	switch op {
	case "create":
		err = db.Callback().Create().Before("gorm:begin_transaction").Register(name, hook)
	case "update":
		err = db.Callback().Update().Before("gorm:begin_transaction").Register(name, hook)
	case "query":
		err = db.Callback().Query().Before("gorm:query").Register(name, hook)
	default:
		t.Fatalf("unsupported operation %q", op)
	}
	if err != nil {
		t.Fatal(err)
	}
}
