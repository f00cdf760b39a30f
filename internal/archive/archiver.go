package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/imigo-bot/imigo-linebot-go/internal/metrics"
	"github.com/imigo-bot/imigo-linebot-go/internal/storage"
)

// defaultBatchSize caps the turns packed into one archive object.
const defaultBatchSize = 5000

// record is one archived conversation turn as a JSONL line.
type record struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// Archiver batches expired turns into object storage. With a nil store
// the retention pass deletes without archiving, which is logged so
// operators notice the data is not being kept.
type Archiver struct {
	store      ObjectStore
	turns      storage.ConversationRepository
	metrics    *metrics.Metrics
	instanceID string
	batchSize  int
	encoder    *zstd.Encoder
}

// New creates an archiver. store may be nil (archiving disabled);
// metrics may be nil in tests.
func New(store ObjectStore, turns storage.ConversationRepository, m *metrics.Metrics, instanceID string) (*Archiver, error) {
	if instanceID == "" {
		instanceID = uuid.NewString()[:8]
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("archive: create zstd encoder: %w", err)
	}

	return &Archiver{
		store:      store,
		turns:      turns,
		metrics:    m,
		instanceID: instanceID,
		batchSize:  defaultBatchSize,
		encoder:    encoder,
	}, nil
}

// Run archives and deletes every turn older than cutoff. Turns are only
// deleted after all archive objects uploaded, so a failed upload leaves
// them in place for the next pass.
func (a *Archiver) Run(ctx context.Context, cutoff time.Time) (archived int, deleted int64, err error) {
	// LIMIT -1 means no limit in SQLite; one retention pass covers at
	// most a day of expired turns.
	expired, err := a.turns.ListTurnsBefore(ctx, cutoff, -1)
	if err != nil {
		return 0, 0, fmt.Errorf("archive: list expired turns: %w", err)
	}
	if len(expired) == 0 {
		return 0, 0, nil
	}

	if a.store == nil {
		deleted, err = a.turns.DeleteTurnsBefore(ctx, cutoff)
		if err != nil {
			return 0, 0, fmt.Errorf("archive: delete expired turns: %w", err)
		}
		slog.WarnContext(ctx, "retention deleted turns without archiving",
			slog.Int64("deleted", deleted))
		return 0, deleted, nil
	}

	for start := 0; start < len(expired); start += a.batchSize {
		end := start + a.batchSize
		if end > len(expired) {
			end = len(expired)
		}
		if err := a.uploadBatch(ctx, expired[start:end]); err != nil {
			a.recordFlush("error", 0)
			return archived, 0, err
		}
		archived += end - start
	}

	deleted, err = a.turns.DeleteTurnsBefore(ctx, cutoff)
	if err != nil {
		return archived, 0, fmt.Errorf("archive: delete archived turns: %w", err)
	}

	slog.InfoContext(ctx, "conversation retention pass complete",
		slog.Int("archived", archived),
		slog.Int64("deleted", deleted))
	return archived, deleted, nil
}

// uploadBatch encodes one batch as zstd-compressed JSONL and uploads it.
func (a *Archiver) uploadBatch(ctx context.Context, turns []storage.ConversationTurn) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, t := range turns {
		if err := enc.Encode(record{
			ID:        t.ID,
			UserID:    t.UserID,
			Role:      t.Role,
			Content:   t.Content,
			CreatedAt: t.CreatedAt,
		}); err != nil {
			return fmt.Errorf("archive: encode turn %s: %w", t.ID, err)
		}
	}

	compressed := a.encode(buf.Bytes())
	key := a.objectKey(time.Now().UTC())

	if _, err := a.store.Upload(ctx, key, bytes.NewReader(compressed), "application/zstd"); err != nil {
		return fmt.Errorf("archive: upload batch: %w", err)
	}

	a.recordFlush("success", len(compressed))
	slog.DebugContext(ctx, "archived conversation batch",
		slog.String("key", key),
		slog.Int("turns", len(turns)),
		slog.Int("bytes", len(compressed)))
	return nil
}

func (a *Archiver) encode(data []byte) []byte {
	return a.encoder.EncodeAll(data, nil)
}

// objectKey builds conversations/<date>/<instance>-<uuid>.jsonl.zst.
func (a *Archiver) objectKey(now time.Time) string {
	return fmt.Sprintf("conversations/%s/%s-%s.jsonl.zst",
		now.Format("2006-01-02"), a.instanceID, uuid.NewString())
}

func (a *Archiver) recordFlush(status string, bytes int) {
	if a.metrics != nil {
		a.metrics.RecordArchiveFlush(status, bytes)
	}
}
