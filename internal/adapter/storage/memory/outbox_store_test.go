package memory

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"webhook-outbox/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertPending(t *testing.T, store *OutboxStore, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		webhookID := uuid.New()
		item := domain.NewOutboxItem(uuid.New(), &webhookID, "test", json.RawMessage(`{}`), domain.OutboxStatusPending)
		require.NoError(t, store.Insert(context.Background(), item))
		ids = append(ids, item.ID)
	}
	return ids
}

func TestOutboxStore_InsertAndGet(t *testing.T) {
	store := NewOutboxStore()
	webhookID := uuid.New()
	item := domain.NewOutboxItem(uuid.New(), &webhookID, "session.created", json.RawMessage(`{"a":1}`), domain.OutboxStatusPending)

	require.NoError(t, store.Insert(context.Background(), item))

	got, err := store.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, domain.OutboxStatusPending, got.Status)

	missing, err := store.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOutboxStore_ClaimBatchLocksItems(t *testing.T) {
	store := NewOutboxStore()
	insertPending(t, store, 3)

	items, err := store.ClaimBatch(context.Background(), "w1", 10, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, item := range items {
		assert.Equal(t, domain.OutboxStatusProcessing, item.Status)
		require.NotNil(t, item.LockedBy)
		assert.Equal(t, "w1", *item.LockedBy)
		require.NotNil(t, item.LockedUntil)
	}

	// a second claim while the locks hold finds nothing
	again, err := store.ClaimBatch(context.Background(), "w2", 10, 30*time.Second)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestOutboxStore_ClaimBatchRespectsBatchSize(t *testing.T) {
	store := NewOutboxStore()
	insertPending(t, store, 5)

	items, err := store.ClaimBatch(context.Background(), "w1", 2, 30*time.Second)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestOutboxStore_ConcurrentClaimsAreDisjoint(t *testing.T) {
	store := NewOutboxStore()
	ids := insertPending(t, store, 10)

	var wg sync.WaitGroup
	results := make([][]domain.OutboxItem, 2)
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			items, err := store.ClaimBatch(context.Background(), "worker", 6, 30*time.Second)
			assert.NoError(t, err)
			results[w] = items
		}(w)
	}
	wg.Wait()

	seen := make(map[uuid.UUID]int)
	for _, items := range results {
		for _, item := range items {
			seen[item.ID]++
		}
	}
	assert.Len(t, seen, 10, "every item claimed exactly once across both workers")
	for id, n := range seen {
		assert.Equalf(t, 1, n, "item %s claimed %d times", id, n)
	}
	_ = ids
}

func TestOutboxStore_ExpiredLockIsReclaimable(t *testing.T) {
	store := NewOutboxStore()
	insertPending(t, store, 1)

	base := time.Now()
	store.now = func() time.Time { return base }

	items, err := store.ClaimBatch(context.Background(), "w1", 1, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// the lock has lapsed; another worker picks the item up
	store.now = func() time.Time { return base.Add(31 * time.Second) }
	items, err = store.ClaimBatch(context.Background(), "w2", 1, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "w2", *items[0].LockedBy)
}

func TestOutboxStore_RetryNotDueIsNotClaimed(t *testing.T) {
	store := NewOutboxStore()
	insertPending(t, store, 1)

	items, err := store.ClaimBatch(context.Background(), "w1", 1, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, items, 1)

	code := 503
	next := time.Now().Add(time.Hour)
	require.NoError(t, store.MarkRetry(context.Background(), items[0].ID, 1, next, &code, "boom"))

	again, err := store.ClaimBatch(context.Background(), "w1", 1, 30*time.Second)
	require.NoError(t, err)
	assert.Empty(t, again, "retry items are invisible until next_attempt_at")
}

func TestOutboxStore_MarkSentFinalizes(t *testing.T) {
	store := NewOutboxStore()
	insertPending(t, store, 1)

	items, err := store.ClaimBatch(context.Background(), "w1", 1, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, store.MarkSent(context.Background(), items[0].ID, 200))

	got, err := store.GetByID(context.Background(), items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OutboxStatusSent, got.Status)
	assert.Equal(t, 1, got.AttemptCount)
	require.NotNil(t, got.DeliveredAt)
	assert.Nil(t, got.LockedBy)
}

func TestOutboxStore_MarkSentRequiresProcessing(t *testing.T) {
	store := NewOutboxStore()
	ids := insertPending(t, store, 1)

	err := store.MarkSent(context.Background(), ids[0], 200)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestOutboxStore_DeadAndRequeue(t *testing.T) {
	store := NewOutboxStore()
	insertPending(t, store, 1)

	items, err := store.ClaimBatch(context.Background(), "w1", 1, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, items, 1)
	id := items[0].ID

	code := 503
	require.NoError(t, store.MarkDead(context.Background(), id, 3, &code, "unexpected status 503"))

	got, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.OutboxStatusDead, got.Status)
	require.NotNil(t, got.DeadAt)

	require.NoError(t, store.RequeueDead(context.Background(), id))

	got, err = store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.OutboxStatusRetry, got.Status)
	assert.Nil(t, got.DeadAt)

	// the reopened item is due immediately
	items, err = store.ClaimBatch(context.Background(), "w1", 1, 30*time.Second)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestOutboxStore_RequeueDeadErrors(t *testing.T) {
	store := NewOutboxStore()
	ids := insertPending(t, store, 1)

	assert.ErrorIs(t, store.RequeueDead(context.Background(), uuid.New()), domain.ErrItemNotFound)
	assert.ErrorIs(t, store.RequeueDead(context.Background(), ids[0]), domain.ErrItemNotDead)
}

func TestOutboxStore_RequeueDeadBatch(t *testing.T) {
	store := NewOutboxStore()
	insertPending(t, store, 3)

	items, err := store.ClaimBatch(context.Background(), "w1", 3, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, item := range items {
		code := 503
		require.NoError(t, store.MarkDead(context.Background(), item.ID, 3, &code, "boom"))
	}

	n, err := store.RequeueDeadBatch(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	counts, err := store.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.OutboxStatusRetry])
	assert.Equal(t, int64(1), counts[domain.OutboxStatusDead])
}

func TestOutboxStore_Purge(t *testing.T) {
	store := NewOutboxStore()
	insertPending(t, store, 2)

	items, err := store.ClaimBatch(context.Background(), "w1", 1, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NoError(t, store.MarkSent(context.Background(), items[0].ID, 200))

	n, err := store.Purge(context.Background(), []domain.OutboxStatus{domain.OutboxStatusSent}, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	counts, err := store.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Zero(t, counts[domain.OutboxStatusSent])
	assert.Equal(t, int64(1), counts[domain.OutboxStatusPending])
}

func TestOutboxStore_ShadowRowsNeverClaimed(t *testing.T) {
	store := NewOutboxStore()
	webhookID := uuid.New()
	item := domain.NewOutboxItem(uuid.New(), &webhookID, "test", json.RawMessage(`{}`), domain.OutboxStatusShadow)
	require.NoError(t, store.Insert(context.Background(), item))

	items, err := store.ClaimBatch(context.Background(), "w1", 10, 30*time.Second)
	require.NoError(t, err)
	assert.Empty(t, items)
}
