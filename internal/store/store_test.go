package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardstockhq/wardstock-backend/internal/script"
	"github.com/wardstockhq/wardstock-backend/internal/sheets"
	pkgerrors "github.com/wardstockhq/wardstock-backend/pkg/errors"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
	"github.com/wardstockhq/wardstock-backend/pkg/models"
)

// fakeBackend simulates the spreadsheet plus the command endpoint as one
// consistent remote: mutations change the remote catalog, reads return it.
type fakeBackend struct {
	mu           sync.Mutex
	products     []models.Product
	transactions []models.Transaction

	readErr      error
	failWithdraw map[string]string // productCode -> rejection message
	pending      bool              // fire-and-forget mode
	gate         chan struct{}     // when set, mutations block until closed

	fetchCalls    int
	withdrawCalls int
}

func newFakeBackend(products ...models.Product) *fakeBackend {
	return &fakeBackend{
		products:     products,
		failWithdraw: map[string]string{},
	}
}

func (f *fakeBackend) FetchProducts(context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]models.Product(nil), f.products...), nil
}

func (f *fakeBackend) FetchTransactions(_ context.Context, filter sheets.TransactionFilter) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	return filter.Apply(f.transactions), nil
}

func (f *fakeBackend) result(message string) (script.Result, error) {
	if f.pending {
		return script.Result{Pending: true, Message: "submitted"}, nil
	}
	return script.Result{Success: true, Message: message}, nil
}

func (f *fakeBackend) waitGate() {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (f *fakeBackend) AddProduct(_ context.Context, payload script.ProductPayload, _ string) (script.Result, error) {
	f.waitGate()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = append(f.products, models.Product{
		Code:              payload.Code,
		Name:              payload.Name,
		Unit:              payload.Unit,
		Quantity:          payload.Quantity,
		LowStockThreshold: payload.LowStockThreshold,
		Category:          payload.Category,
		Returnable:        payload.Returnable,
	})
	return f.result("created")
}

func (f *fakeBackend) UpdateProduct(_ context.Context, payload script.ProductPayload, _ string) (script.Result, error) {
	f.waitGate()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.products {
		if p.Code == payload.Code {
			f.products[i].Name = payload.Name
			f.products[i].Quantity = payload.Quantity
		}
	}
	return f.result("updated")
}

func (f *fakeBackend) DeleteProduct(_ context.Context, productCode, _ string) (script.Result, error) {
	f.waitGate()
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.products[:0]
	for _, p := range f.products {
		if p.Code != productCode {
			kept = append(kept, p)
		}
	}
	f.products = kept
	return f.result("deleted")
}

func (f *fakeBackend) Withdraw(_ context.Context, payload script.StockPayload, _ string) (script.Result, error) {
	f.waitGate()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.withdrawCalls++
	if msg, ok := f.failWithdraw[payload.ProductCode]; ok {
		return script.Result{Success: false, Message: msg}, pkgerrors.New(pkgerrors.CodeApplication, msg)
	}
	for i, p := range f.products {
		if p.Code == payload.ProductCode {
			if payload.Quantity > p.Quantity {
				msg := "insufficient stock"
				return script.Result{Success: false, Message: msg}, pkgerrors.New(pkgerrors.CodeApplication, msg)
			}
			f.products[i].Quantity -= payload.Quantity
		}
	}
	return f.result("withdrawn")
}

func (f *fakeBackend) Receive(_ context.Context, payload script.StockPayload, _ string) (script.Result, error) {
	f.waitGate()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.products {
		if p.Code == payload.ProductCode {
			f.products[i].Quantity += payload.Quantity
		}
	}
	return f.result("received")
}

func (f *fakeBackend) Return(_ context.Context, payload script.StockPayload, _ string) (script.Result, error) {
	return f.Receive(nil, payload, "")
}

func saline(quantity int) models.Product {
	return models.Product{Code: "MED-001", Name: "Saline 0.9%", Unit: "bag", Quantity: quantity, LowStockThreshold: 10, Returnable: true}
}

func gauze(quantity int) models.Product {
	return models.Product{Code: "MED-002", Name: "Gauze", Unit: "pack", Quantity: quantity, LowStockThreshold: 5, Returnable: false}
}

func newTestStore(t *testing.T, backend *fakeBackend) *Store {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "store-test", Level: logger.ParseLevel("error")})
	s := New(backend, backend, logg, nil)
	require.NoError(t, s.RefreshProducts(context.Background()))
	return s
}

func productQuantity(t *testing.T, s *Store, code string) int {
	t.Helper()
	for _, p := range s.Products() {
		if p.Code == code {
			return p.Quantity
		}
	}
	t.Fatalf("product %s not in cache", code)
	return 0
}

func TestRefreshFailureKeepsPreviousCache(t *testing.T) {
	backend := newFakeBackend(saline(42))
	s := newTestStore(t, backend)

	backend.mu.Lock()
	backend.readErr = errors.New("sheet unreachable")
	backend.mu.Unlock()

	err := s.RefreshProducts(context.Background())
	require.Error(t, err)
	assert.Equal(t, 42, productQuantity(t, s, "MED-001"), "stale cache beats no cache")
	assert.Contains(t, s.LastError(), "sheet unreachable")
}

func TestWithdrawInsufficientStockLeavesQuantityUnchanged(t *testing.T) {
	backend := newFakeBackend(saline(5))
	s := newTestStore(t, backend)

	_, err := s.Withdraw(context.Background(), script.StockPayload{ProductCode: "MED-001", Quantity: 10}, "Nurse Ying")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeApplication, pkgerrors.CodeOf(err))
	assert.Equal(t, 5, productQuantity(t, s, "MED-001"))
	assert.Zero(t, backend.withdrawCalls, "a locally impossible withdraw never reaches the endpoint")
}

func TestWithdrawServerRejectionRollsBack(t *testing.T) {
	backend := newFakeBackend(saline(42))
	backend.failWithdraw["MED-001"] = "item locked by audit"
	s := newTestStore(t, backend)

	result, err := s.Withdraw(context.Background(), script.StockPayload{ProductCode: "MED-001", Quantity: 2}, "Nurse Ying")
	require.Error(t, err)
	assert.Equal(t, "item locked by audit", result.Message)
	assert.Equal(t, 42, productQuantity(t, s, "MED-001"), "optimistic apply must roll back")
	assert.Contains(t, s.LastError(), "item locked by audit")
	assert.False(t, s.Busy())
}

func TestReceiveThenWithdrawRoundTrip(t *testing.T) {
	backend := newFakeBackend(saline(42))
	s := newTestStore(t, backend)
	ctx := context.Background()

	_, err := s.Receive(ctx, script.StockPayload{ProductCode: "MED-001", Quantity: 7}, "Somchai")
	require.NoError(t, err)
	assert.Equal(t, 49, productQuantity(t, s, "MED-001"))

	_, err = s.Withdraw(ctx, script.StockPayload{ProductCode: "MED-001", Quantity: 7}, "Somchai")
	require.NoError(t, err)
	assert.Equal(t, 42, productQuantity(t, s, "MED-001"), "inverse operations must round-trip")
}

func TestMutationReconcilesWithServerTruth(t *testing.T) {
	backend := newFakeBackend(saline(42))
	s := newTestStore(t, backend)

	// Another actor changed the remote catalog since our last refresh.
	backend.mu.Lock()
	backend.products[0].Quantity = 100
	backend.mu.Unlock()

	_, err := s.Withdraw(context.Background(), script.StockPayload{ProductCode: "MED-001", Quantity: 2}, "Nurse Ying")
	require.NoError(t, err)
	assert.Equal(t, 98, productQuantity(t, s, "MED-001"), "reconciliation read wins over the optimistic guess")
}

func TestPendingSubmitForcesReconciliation(t *testing.T) {
	backend := newFakeBackend(saline(42))
	s := newTestStore(t, backend)
	backend.mu.Lock()
	backend.pending = true
	fetchesBefore := backend.fetchCalls
	backend.mu.Unlock()

	result, err := s.Withdraw(context.Background(), script.StockPayload{ProductCode: "MED-001", Quantity: 2}, "Nurse Ying")
	require.NoError(t, err)
	assert.True(t, result.Pending)

	backend.mu.Lock()
	fetchesAfter := backend.fetchCalls
	backend.mu.Unlock()
	assert.Greater(t, fetchesAfter, fetchesBefore, "pending outcome requires the follow-up read")
	assert.Equal(t, 40, productQuantity(t, s, "MED-001"))
}

func TestSecondMutationRejectedWhileBusy(t *testing.T) {
	backend := newFakeBackend(saline(42))
	s := newTestStore(t, backend)

	gate := make(chan struct{})
	backend.mu.Lock()
	backend.gate = gate
	backend.mu.Unlock()

	firstDone := make(chan error, 1)
	go func() {
		_, err := s.Withdraw(context.Background(), script.StockPayload{ProductCode: "MED-001", Quantity: 1}, "Nurse Ying")
		firstDone <- err
	}()

	require.Eventually(t, s.Busy, time.Second, time.Millisecond)

	_, err := s.Receive(context.Background(), script.StockPayload{ProductCode: "MED-001", Quantity: 1}, "Somchai")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeBusy, pkgerrors.CodeOf(err))

	backend.mu.Lock()
	backend.gate = nil
	backend.mu.Unlock()
	close(gate)
	require.NoError(t, <-firstDone)
	assert.False(t, s.Busy())
}

func TestAddUpdateDeleteLifecycle(t *testing.T) {
	backend := newFakeBackend(saline(42))
	s := newTestStore(t, backend)
	ctx := context.Background()

	_, err := s.AddProduct(ctx, script.ProductPayload{Code: "MED-003", Name: "Alcohol Swab", Quantity: 200, LowStockThreshold: 50}, "Head Nurse")
	require.NoError(t, err)
	assert.Equal(t, 200, productQuantity(t, s, "MED-003"))

	_, err = s.UpdateProduct(ctx, script.ProductPayload{Code: "MED-003", Name: "Alcohol Swab L", Quantity: 180}, "Head Nurse")
	require.NoError(t, err)
	assert.Equal(t, 180, productQuantity(t, s, "MED-003"))

	_, err = s.DeleteProduct(ctx, "MED-003", "Head Nurse")
	require.NoError(t, err)
	for _, p := range s.Products() {
		assert.NotEqual(t, "MED-003", p.Code)
	}
}

func TestReturnRejectsNonReturnable(t *testing.T) {
	backend := newFakeBackend(saline(42), gauze(3))
	s := newTestStore(t, backend)

	_, err := s.Return(context.Background(), script.StockPayload{ProductCode: "MED-002", Quantity: 1}, "Nurse Ying")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeApplication, pkgerrors.CodeOf(err))
	assert.Equal(t, 3, productQuantity(t, s, "MED-002"))
}

func TestRefreshTransactionsCachesFilteredRows(t *testing.T) {
	backend := newFakeBackend(saline(42))
	backend.transactions = []models.Transaction{
		{ID: "TX-1", Timestamp: time.Date(2026, 1, 15, 8, 0, 0, 0, time.Local), Type: "WITHDRAW", ProductCode: "MED-001"},
		{ID: "TX-2", Timestamp: time.Date(2026, 1, 15, 9, 0, 0, 0, time.Local), Type: "RECEIVE", ProductCode: "MED-001"},
	}
	s := newTestStore(t, backend)

	txs, err := s.RefreshTransactions(context.Background(), sheets.TransactionFilter{Type: "WITHDRAW"})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "TX-1", txs[0].ID)
	assert.Equal(t, txs, s.Transactions())
}

func TestBatchWithdrawPartialFailure(t *testing.T) {
	backend := newFakeBackend(
		saline(42),
		models.Product{Code: "MED-005", Name: "Tape", Quantity: 10, Returnable: true},
		models.Product{Code: "MED-006", Name: "Mask", Quantity: 30, Returnable: true},
	)
	backend.failWithdraw["MED-005"] = "item locked by audit"
	s := newTestStore(t, backend)

	result := s.BatchWithdraw(context.Background(), []BatchItem{
		{ProductCode: "MED-001", Quantity: 2},
		{ProductCode: "MED-005", Quantity: 1},
		{ProductCode: "MED-006", Quantity: 5},
	}, "Nurse Ying")

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "2 succeeded, 1 failed", result.Message)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "MED-005")

	assert.Equal(t, 40, productQuantity(t, s, "MED-001"))
	assert.Equal(t, 10, productQuantity(t, s, "MED-005"), "failed item stays untouched")
	assert.Equal(t, 25, productQuantity(t, s, "MED-006"))
}

func TestBatchWithdrawAllSucceed(t *testing.T) {
	backend := newFakeBackend(saline(42))
	s := newTestStore(t, backend)

	result := s.BatchWithdraw(context.Background(), []BatchItem{
		{ProductCode: "MED-001", Quantity: 1},
		{ProductCode: "MED-001", Quantity: 2},
	}, "Nurse Ying")

	assert.Equal(t, "2 succeeded, 0 failed", result.Message)
	assert.NoError(t, result.Err)
	assert.Equal(t, 39, productQuantity(t, s, "MED-001"))
}
