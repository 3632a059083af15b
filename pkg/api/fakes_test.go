package api

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
	"github.com/tarsy-labs/storefront-coe/pkg/models"
	"github.com/tarsy-labs/storefront-coe/pkg/orderbook"
)

// testLogger is a discard-output logger shared by handler tests that need
// a non-nil *slog.Logger but have nothing worth asserting on.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// httptestBadJSONBody is a reader of deliberately malformed JSON, for
// handler tests that assert on Bind failure.
func httptestBadJSONBody() *strings.Reader {
	return strings.NewReader(`{"body": `)
}

// fakeCatalog is a minimal in-memory catalog.Catalog for handler tests.
type fakeCatalog struct {
	products []models.ProductProjection
	err      error
}

func (f *fakeCatalog) ListActive(ctx context.Context, limit int) ([]models.ProductProjection, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.products) {
		return f.products[:limit], nil
	}
	return f.products, nil
}

func (f *fakeCatalog) SearchByKeywords(ctx context.Context, text string, limit int) ([]models.ProductProjection, error) {
	return f.products, f.err
}

func (f *fakeCatalog) GetByBarcodes(ctx context.Context, barcodes []string) ([]models.ProductProjection, error) {
	return f.products, f.err
}

func (f *fakeCatalog) GetByID(ctx context.Context, id string) (*models.ProductProjection, error) {
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return nil, apperrors.ErrProductNotFound
}

// fakeOrderBook is a minimal in-memory orderbook.OrderBook for handler tests.
type fakeOrderBook struct {
	orders    map[string]*models.Order
	createErr error
	cancelErr error
	getErr    error
}

func newFakeOrderBook() *fakeOrderBook {
	return &fakeOrderBook{orders: map[string]*models.Order{}}
}

// orderOwnedBy builds a minimal Order for ownership-check tests.
func orderOwnedBy(userID string) *models.Order {
	return &models.Order{ID: "order-1", UserID: userID, Status: models.OrderStatusDraft}
}

func (f *fakeOrderBook) CreateOrder(ctx context.Context, in orderbook.CreateOrderInput) (*models.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	order := &models.Order{
		ID:     "order-1",
		UserID: in.UserID,
		Status: models.OrderStatusDraft,
	}
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeOrderBook) Cancel(ctx context.Context, orderID, reason string) (*models.Order, error) {
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	order, ok := f.orders[orderID]
	if !ok {
		return nil, apperrors.ErrOrderNotFound
	}
	order.Status = models.OrderStatusCancelled
	return order, nil
}

func (f *fakeOrderBook) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	order, ok := f.orders[orderID]
	if !ok {
		return nil, apperrors.ErrOrderNotFound
	}
	return order, nil
}

// fakeTranscriptStore is a minimal in-memory transcript.Store for handler tests.
type fakeTranscriptStore struct {
	bySession     []models.TranscriptRecord
	byUser        []models.TranscriptRecord
	byOrder       []models.TranscriptRecord
	conversations []models.ConversationSummary
	err           error
}

func (f *fakeTranscriptStore) Append(ctx context.Context, rec *models.TranscriptRecord) error {
	return f.err
}

func (f *fakeTranscriptStore) GetBySession(ctx context.Context, sessionID string, limit, offset int) ([]models.TranscriptRecord, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.bySession, len(f.bySession), nil
}

func (f *fakeTranscriptStore) GetByUser(ctx context.Context, userID string, limit, offset int) ([]models.TranscriptRecord, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.byUser, len(f.byUser), nil
}

func (f *fakeTranscriptStore) GetByOrder(ctx context.Context, orderID string) ([]models.TranscriptRecord, error) {
	return f.byOrder, f.err
}

func (f *fakeTranscriptStore) Update(ctx context.Context, id string, body string, metadata map[string]any) error {
	return f.err
}

func (f *fakeTranscriptStore) Delete(ctx context.Context, id string) error {
	return f.err
}

func (f *fakeTranscriptStore) Archive(ctx context.Context, id string) error {
	return f.err
}

func (f *fakeTranscriptStore) ListConversations(ctx context.Context, limit int) ([]models.ConversationSummary, error) {
	return f.conversations, f.err
}

// fakeAuth is a TokenVerifier that trusts whatever Principal is pre-loaded
// for a given token string, avoiding any dependency on HMACAuth's own
// encoding in tests that only care about the auth-gating behavior.
type fakeAuth struct {
	tokens map[string]Principal
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{tokens: map[string]Principal{}}
}

func (f *fakeAuth) IssueToken(p Principal) (string, error) {
	token := "tok-" + p.UserID
	f.tokens[token] = p
	return token, nil
}

func (f *fakeAuth) VerifyToken(token string) (Principal, bool) {
	p, ok := f.tokens[token]
	return p, ok
}
