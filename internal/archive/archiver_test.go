package archive

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/imigo-bot/imigo-linebot-go/internal/storage"
)

type fakeStore struct {
	objects map[string][]byte
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	return "etag", nil
}

func setupArchiveDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.NewTestDB()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.UpsertUser(context.Background(), &storage.User{ID: "U1", Language: "id"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return db
}

// insertTurnAt writes a turn with an explicit created_at so tests can
// place turns on either side of the retention cutoff.
func insertTurnAt(t *testing.T, db *storage.DB, userID, content string, createdAt time.Time) {
	t.Helper()
	_, err := db.Conn().ExecContext(context.Background(),
		`INSERT INTO conversations (id, user_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		content+"-id", userID, storage.RoleUser, content, createdAt.Unix())
	if err != nil {
		t.Fatalf("insert turn: %v", err)
	}
}

func decodeArchive(t *testing.T, data []byte) []record {
	t.Helper()
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open zstd reader: %v", err)
	}
	defer dec.Close()

	var records []record
	scanner := bufio.NewScanner(dec)
	for scanner.Scan() {
		var r record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		records = append(records, r)
	}
	return records
}

func TestArchiverRun(t *testing.T) {
	db := setupArchiveDB(t)
	store := newFakeStore()
	ctx := context.Background()

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	insertTurnAt(t, db, "U1", "old turn 1", cutoff.Add(-2*time.Hour))
	insertTurnAt(t, db, "U1", "old turn 2", cutoff.Add(-time.Hour))
	insertTurnAt(t, db, "U1", "fresh turn", time.Now())

	a, err := New(store, db, nil, "test-instance")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	archived, deleted, err := a.Run(ctx, cutoff)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if archived != 2 || deleted != 2 {
		t.Fatalf("archived=%d deleted=%d, want 2/2", archived, deleted)
	}

	if len(store.objects) != 1 {
		t.Fatalf("got %d objects, want 1", len(store.objects))
	}
	for key, data := range store.objects {
		if !strings.HasPrefix(key, "conversations/") || !strings.HasSuffix(key, ".jsonl.zst") {
			t.Fatalf("object key %q has wrong shape", key)
		}
		if !strings.Contains(key, "test-instance-") {
			t.Fatalf("object key %q missing instance ID", key)
		}

		records := decodeArchive(t, data)
		if len(records) != 2 {
			t.Fatalf("archive holds %d records, want 2", len(records))
		}
		if records[0].Content != "old turn 1" || records[1].Content != "old turn 2" {
			t.Fatalf("records out of order: %+v", records)
		}
	}

	// The fresh turn survives.
	if n, _ := db.CountTurns(ctx, "U1"); n != 1 {
		t.Fatalf("%d turns remain, want 1", n)
	}
}

func TestArchiverRunNothingExpired(t *testing.T) {
	db := setupArchiveDB(t)
	store := newFakeStore()
	insertTurnAt(t, db, "U1", "fresh", time.Now())

	a, err := New(store, db, nil, "i")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	archived, deleted, err := a.Run(context.Background(), time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if archived != 0 || deleted != 0 || len(store.objects) != 0 {
		t.Fatalf("archived=%d deleted=%d objects=%d, want all zero", archived, deleted, len(store.objects))
	}
}

func TestArchiverUploadFailureKeepsTurns(t *testing.T) {
	db := setupArchiveDB(t)
	store := newFakeStore()
	store.err = errors.New("bucket unavailable")
	ctx := context.Background()

	cutoff := time.Now().Add(-24 * time.Hour)
	insertTurnAt(t, db, "U1", "old", cutoff.Add(-time.Hour))

	a, err := New(store, db, nil, "i")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, _, err := a.Run(ctx, cutoff); err == nil {
		t.Fatal("expected upload failure to surface")
	}
	if n, _ := db.CountTurns(ctx, "U1"); n != 1 {
		t.Fatal("turns deleted despite failed upload")
	}
}

func TestArchiverNilStoreDeletesWithoutArchiving(t *testing.T) {
	db := setupArchiveDB(t)
	ctx := context.Background()

	cutoff := time.Now().Add(-24 * time.Hour)
	insertTurnAt(t, db, "U1", "old", cutoff.Add(-time.Hour))

	a, err := New(nil, db, nil, "i")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	archived, deleted, err := a.Run(ctx, cutoff)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if archived != 0 || deleted != 1 {
		t.Fatalf("archived=%d deleted=%d, want 0/1", archived, deleted)
	}
}

func TestArchiverBatchSplitting(t *testing.T) {
	db := setupArchiveDB(t)
	store := newFakeStore()
	ctx := context.Background()

	cutoff := time.Now().Add(-24 * time.Hour)
	for i := 0; i < 5; i++ {
		insertTurnAt(t, db, "U1", "turn "+string(rune('a'+i)), cutoff.Add(-time.Duration(10-i)*time.Minute))
	}

	a, err := New(store, db, nil, "i")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.batchSize = 2

	archived, deleted, err := a.Run(ctx, cutoff)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if archived != 5 || deleted != 5 {
		t.Fatalf("archived=%d deleted=%d, want 5/5", archived, deleted)
	}
	if len(store.objects) != 3 {
		t.Fatalf("got %d objects, want 3 batches", len(store.objects))
	}
}
