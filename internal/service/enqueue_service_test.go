package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"webhook-outbox/internal/core/domain"
	"webhook-outbox/internal/core/ports"
	"webhook-outbox/internal/core/ports/mocks"
	"webhook-outbox/internal/telemetry"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/mock/gomock"
)

func newTestMetrics(t *testing.T) *telemetry.Metrics {
	t.Helper()
	m, err := telemetry.NewMetrics(noop.NewMeterProvider())
	require.NoError(t, err)
	return m
}

type enqueueFixture struct {
	subs     *mocks.MockSubscriptionRepository
	outbox   *mocks.MockOutboxRepository
	delivery *mocks.MockDeliveryClient
	dedupe   *mocks.MockDedupeStore
	vault    *AESVaultService
}

func newEnqueueFixture(t *testing.T, ctrl *gomock.Controller) *enqueueFixture {
	t.Helper()
	vault, err := NewAESVaultService(testVaultKey, "v1")
	require.NoError(t, err)
	return &enqueueFixture{
		subs:     mocks.NewMockSubscriptionRepository(ctrl),
		outbox:   mocks.NewMockOutboxRepository(ctrl),
		delivery: mocks.NewMockDeliveryClient(ctrl),
		dedupe:   mocks.NewMockDedupeStore(ctrl),
		vault:    vault,
	}
}

func (f *enqueueFixture) service(t *testing.T, mode DeliveryMode, dedupeTTL time.Duration) ports.EnqueueService {
	t.Helper()
	var dedupe ports.DedupeStore
	if dedupeTTL > 0 {
		dedupe = f.dedupe
	}
	return NewEnqueueService(
		mode,
		f.subs,
		f.outbox,
		f.delivery,
		NewSecretResolver(f.vault, f.subs, newTestLogger()),
		dedupe,
		dedupeTTL,
		newTestMetrics(t),
		newTestLogger(),
	)
}

func activeSub(userID uuid.UUID, events ...string) domain.WebhookSubscription {
	return domain.WebhookSubscription{
		ID:     uuid.New(),
		UserID: userID,
		URL:    "https://hooks.example.com/receiver",
		Events: events,
		Active: true,
	}
}

func TestEnqueue_OutboxModeWritesPendingRows(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEnqueueFixture(t, ctrl)
	svc := f.service(t, ModeOutbox, 0)

	userID := uuid.New()
	subA := activeSub(userID) // empty filter matches everything
	subB := activeSub(userID, "session.created")
	payload := json.RawMessage(`{"session_id":"s-1"}`)

	f.subs.EXPECT().ListActiveByUser(gomock.Any(), userID).Return([]domain.WebhookSubscription{subA, subB}, nil)

	var inserted []*domain.OutboxItem
	f.outbox.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, item *domain.OutboxItem) error {
			inserted = append(inserted, item)
			return nil
		})

	n, err := svc.Enqueue(context.Background(), userID, "session.created", payload, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, inserted, 2)
	for _, item := range inserted {
		assert.Equal(t, domain.OutboxStatusPending, item.Status)
		assert.Equal(t, userID, item.UserID)
		assert.Equal(t, "session.created", item.Event)
		assert.JSONEq(t, string(payload), string(item.Payload))
		assert.WithinDuration(t, time.Now(), item.NextAttemptAt, time.Second)
	}
}

func TestEnqueue_EventFilterSkipsNonMatching(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEnqueueFixture(t, ctrl)
	svc := f.service(t, ModeOutbox, 0)

	userID := uuid.New()
	sub := activeSub(userID, "session.created")

	f.subs.EXPECT().ListActiveByUser(gomock.Any(), userID).Return([]domain.WebhookSubscription{sub}, nil)

	n, err := svc.Enqueue(context.Background(), userID, "session.updated", json.RawMessage(`{}`), nil)
	require.NoError(t, err)
	assert.Zero(t, n, "no items for a filtered-out event")
}

func TestEnqueue_WebhookIDRestriction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEnqueueFixture(t, ctrl)
	svc := f.service(t, ModeOutbox, 0)

	userID := uuid.New()
	sub := activeSub(userID, "session.created")

	f.subs.EXPECT().GetByID(gomock.Any(), sub.ID).Return(&sub, nil)
	f.outbox.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

	n, err := svc.Enqueue(context.Background(), userID, "session.created", json.RawMessage(`{}`), &sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEnqueue_WebhookIDOtherUserIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEnqueueFixture(t, ctrl)
	svc := f.service(t, ModeOutbox, 0)

	sub := activeSub(uuid.New(), "session.created")

	f.subs.EXPECT().GetByID(gomock.Any(), sub.ID).Return(&sub, nil)

	n, err := svc.Enqueue(context.Background(), uuid.New(), "session.created", json.RawMessage(`{}`), &sub.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "a webhook owned by another user must never match")
}

func TestEnqueue_LegacyModeSendsDirectWithoutRows(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEnqueueFixture(t, ctrl)
	svc := f.service(t, ModeLegacy, 0)

	userID := uuid.New()
	sub := activeSub(userID)

	f.subs.EXPECT().ListActiveByUser(gomock.Any(), userID).Return([]domain.WebhookSubscription{sub}, nil)

	delivered := make(chan string, 1)
	f.delivery.EXPECT().
		Send(gomock.Any(), sub.URL, "test", gomock.Any(), "").
		DoAndReturn(func(_ context.Context, url, _ string, _ json.RawMessage, _ string) ports.DeliveryResult {
			delivered <- url
			code := 200
			return ports.DeliveryResult{OK: true, StatusCode: &code}
		})

	n, err := svc.Enqueue(context.Background(), userID, "test", json.RawMessage(`{}`), nil)
	require.NoError(t, err)
	assert.Zero(t, n, "legacy mode writes no durable rows")

	select {
	case url := <-delivered:
		assert.Equal(t, sub.URL, url)
	case <-time.After(2 * time.Second):
		t.Fatal("direct send was not fired")
	}
}

func TestEnqueue_ShadowModeWritesShadowAndSends(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEnqueueFixture(t, ctrl)
	svc := f.service(t, ModeShadow, 0)

	userID := uuid.New()
	sub := activeSub(userID)

	f.subs.EXPECT().ListActiveByUser(gomock.Any(), userID).Return([]domain.WebhookSubscription{sub}, nil)

	var inserted *domain.OutboxItem
	f.outbox.EXPECT().Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, item *domain.OutboxItem) error {
			inserted = item
			return nil
		})

	delivered := make(chan struct{}, 1)
	f.delivery.EXPECT().
		Send(gomock.Any(), sub.URL, "test", gomock.Any(), "").
		DoAndReturn(func(context.Context, string, string, json.RawMessage, string) ports.DeliveryResult {
			delivered <- struct{}{}
			code := 200
			return ports.DeliveryResult{OK: true, StatusCode: &code}
		})

	n, err := svc.Enqueue(context.Background(), userID, "test", json.RawMessage(`{}`), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NotNil(t, inserted)
	assert.Equal(t, domain.OutboxStatusShadow, inserted.Status)

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("shadow mode must still fire the legacy direct send")
	}
}

func TestEnqueue_PersistenceFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEnqueueFixture(t, ctrl)
	svc := f.service(t, ModeOutbox, 0)

	userID := uuid.New()
	sub := activeSub(userID)

	f.subs.EXPECT().ListActiveByUser(gomock.Any(), userID).Return([]domain.WebhookSubscription{sub}, nil)
	f.outbox.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(assertableErr("insert failed"))

	_, err := svc.Enqueue(context.Background(), userID, "test", json.RawMessage(`{}`), nil)
	assert.Error(t, err, "a durable event that fails to persist must surface")
}

func TestEnqueue_DedupeSuppressesDuplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEnqueueFixture(t, ctrl)
	svc := f.service(t, ModeOutbox, time.Minute)

	userID := uuid.New()
	sub := activeSub(userID)
	payload := json.RawMessage(`{"n":1}`)

	gomock.InOrder(
		f.dedupe.EXPECT().Acquire(gomock.Any(), gomock.Any(), time.Minute).Return(true, nil),
		f.dedupe.EXPECT().Acquire(gomock.Any(), gomock.Any(), time.Minute).Return(false, nil),
	)
	f.subs.EXPECT().ListActiveByUser(gomock.Any(), userID).Return([]domain.WebhookSubscription{sub}, nil)
	f.outbox.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

	n, err := svc.Enqueue(context.Background(), userID, "test", payload, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.Enqueue(context.Background(), userID, "test", payload, nil)
	require.NoError(t, err)
	assert.Zero(t, n, "second enqueue inside the window is suppressed")
}

func TestEnqueue_DedupeStoreFailureDoesNotBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEnqueueFixture(t, ctrl)
	svc := f.service(t, ModeOutbox, time.Minute)

	userID := uuid.New()
	sub := activeSub(userID)

	f.dedupe.EXPECT().Acquire(gomock.Any(), gomock.Any(), time.Minute).Return(false, assertableErr("redis down"))
	f.subs.EXPECT().ListActiveByUser(gomock.Any(), userID).Return([]domain.WebhookSubscription{sub}, nil)
	f.outbox.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

	n, err := svc.Enqueue(context.Background(), userID, "test", json.RawMessage(`{}`), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
