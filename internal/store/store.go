package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/wardstockhq/wardstock-backend/internal/script"
	"github.com/wardstockhq/wardstock-backend/internal/sheets"
	"github.com/wardstockhq/wardstock-backend/pkg/enums"
	pkgerrors "github.com/wardstockhq/wardstock-backend/pkg/errors"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
	"github.com/wardstockhq/wardstock-backend/pkg/metrics"
	"github.com/wardstockhq/wardstock-backend/pkg/models"
)

// ReadGateway is the spreadsheet read surface the store depends on.
type ReadGateway interface {
	FetchProducts(ctx context.Context) ([]models.Product, error)
	FetchTransactions(ctx context.Context, filter sheets.TransactionFilter) ([]models.Transaction, error)
}

// WriteGateway is the command-endpoint surface the store depends on.
type WriteGateway interface {
	AddProduct(ctx context.Context, payload script.ProductPayload, userName string) (script.Result, error)
	UpdateProduct(ctx context.Context, payload script.ProductPayload, userName string) (script.Result, error)
	DeleteProduct(ctx context.Context, productCode, userName string) (script.Result, error)
	Withdraw(ctx context.Context, payload script.StockPayload, userName string) (script.Result, error)
	Receive(ctx context.Context, payload script.StockPayload, userName string) (script.Result, error)
	Return(ctx context.Context, payload script.StockPayload, userName string) (script.Result, error)
}

// Store is the single source of truth for the product catalog and the
// transaction log. Every read and write goes through it: reads swap the
// cache on success and keep the previous snapshot on failure, writes run
// the one consistency strategy used everywhere: serialize on the busy
// flag, apply the optimistic next state, roll back if the command fails,
// and reconcile with a full product re-read once the command is accepted.
type Store struct {
	reader  ReadGateway
	writer  WriteGateway
	logg    *logger.Logger
	metrics *metrics.SyncMetrics

	mu           sync.Mutex
	products     []models.Product
	transactions []models.Transaction
	lastError    string
	loading      bool
	busy         bool
}

// New builds a Store over the two gateways. metrics may be nil.
func New(reader ReadGateway, writer WriteGateway, logg *logger.Logger, m *metrics.SyncMetrics) *Store {
	return &Store{
		reader:  reader,
		writer:  writer,
		logg:    logg,
		metrics: m,
	}
}

// Products returns a copy of the cached catalog.
func (s *Store) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Product(nil), s.products...)
}

// Transactions returns a copy of the last fetched transaction rows.
func (s *Store) Transactions() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Transaction(nil), s.transactions...)
}

// LastError returns the most recent gateway failure message, empty when
// the last operation succeeded.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Loading reports whether a refresh is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Busy reports whether a mutation is in flight.
func (s *Store) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// RefreshProducts re-reads the catalog. On failure the previous cache is
// kept and the error message recorded.
func (s *Store) RefreshProducts(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	started := time.Now()
	products, err := s.reader.FetchProducts(ctx)
	if err != nil {
		s.metrics.IncRefreshFailure("products")
		s.recordError(err)
		return err
	}
	s.metrics.ObserveRefresh("products", time.Since(started))

	s.mu.Lock()
	s.products = products
	s.lastError = ""
	s.mu.Unlock()
	return nil
}

// RefreshTransactions re-reads the transaction log through the filter and
// caches the result. The previous rows survive a failed fetch.
func (s *Store) RefreshTransactions(ctx context.Context, filter sheets.TransactionFilter) ([]models.Transaction, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	started := time.Now()
	txs, err := s.reader.FetchTransactions(ctx, filter)
	if err != nil {
		s.metrics.IncRefreshFailure("transactions")
		s.recordError(err)
		return nil, err
	}
	s.metrics.ObserveRefresh("transactions", time.Since(started))

	s.mu.Lock()
	s.transactions = txs
	s.lastError = ""
	s.mu.Unlock()
	return append([]models.Transaction(nil), txs...), nil
}

// AddProduct creates a catalog entry and reconciles.
func (s *Store) AddProduct(ctx context.Context, payload script.ProductPayload, userName string) (script.Result, error) {
	return s.mutate(ctx, string(enums.CommandActionAddProduct),
		func(products []models.Product) []models.Product {
			return append(products, productFromPayload(payload))
		},
		func(ctx context.Context) (script.Result, error) {
			return s.writer.AddProduct(ctx, payload, userName)
		})
}

// UpdateProduct rewrites the entry matching payload.Code and reconciles.
func (s *Store) UpdateProduct(ctx context.Context, payload script.ProductPayload, userName string) (script.Result, error) {
	return s.mutate(ctx, string(enums.CommandActionUpdateProduct),
		func(products []models.Product) []models.Product {
			for i, p := range products {
				if p.Code == payload.Code {
					updated := productFromPayload(payload)
					updated.CreatedAt = p.CreatedAt
					products[i] = updated
				}
			}
			return products
		},
		func(ctx context.Context) (script.Result, error) {
			return s.writer.UpdateProduct(ctx, payload, userName)
		})
}

// DeleteProduct removes a catalog entry and reconciles.
func (s *Store) DeleteProduct(ctx context.Context, productCode, userName string) (script.Result, error) {
	return s.mutate(ctx, string(enums.CommandActionDeleteProduct),
		func(products []models.Product) []models.Product {
			kept := products[:0]
			for _, p := range products {
				if p.Code != productCode {
					kept = append(kept, p)
				}
			}
			return kept
		},
		func(ctx context.Context) (script.Result, error) {
			return s.writer.DeleteProduct(ctx, productCode, userName)
		})
}

// Withdraw moves stock out. Requests above the cached quantity are
// rejected locally with an insufficient-stock error and no remote call;
// the catalog stays untouched.
func (s *Store) Withdraw(ctx context.Context, payload script.StockPayload, userName string) (script.Result, error) {
	if product, ok := s.findProduct(payload.ProductCode); ok && payload.Quantity > product.Quantity {
		return script.Result{}, pkgerrors.New(pkgerrors.CodeApplication, "insufficient stock for "+payload.ProductCode)
	}
	return s.mutate(ctx, string(enums.CommandActionWithdraw),
		adjustQuantity(payload.ProductCode, -payload.Quantity),
		func(ctx context.Context) (script.Result, error) {
			return s.writer.Withdraw(ctx, payload, userName)
		})
}

// Receive moves stock in.
func (s *Store) Receive(ctx context.Context, payload script.StockPayload, userName string) (script.Result, error) {
	return s.mutate(ctx, string(enums.CommandActionReceive),
		adjustQuantity(payload.ProductCode, payload.Quantity),
		func(ctx context.Context) (script.Result, error) {
			return s.writer.Receive(ctx, payload, userName)
		})
}

// Return moves previously withdrawn stock back in. Products flagged
// returnable=false are never accepted.
func (s *Store) Return(ctx context.Context, payload script.StockPayload, userName string) (script.Result, error) {
	if product, ok := s.findProduct(payload.ProductCode); ok && !product.Returnable {
		return script.Result{}, pkgerrors.New(pkgerrors.CodeApplication, payload.ProductCode+" is not returnable")
	}
	return s.mutate(ctx, string(enums.CommandActionReturn),
		adjustQuantity(payload.ProductCode, payload.Quantity),
		func(ctx context.Context) (script.Result, error) {
			return s.writer.Return(ctx, payload, userName)
		})
}

// mutate runs the unified write strategy. The optimistic next state is
// computed on a copy; on rejection the prior snapshot comes back exactly
// as it was. A declared success, or a pending fire-and-forget submit,
// always triggers the reconciliation re-read.
func (s *Store) mutate(ctx context.Context, action string, optimistic func([]models.Product) []models.Product, call func(context.Context) (script.Result, error)) (script.Result, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return script.Result{}, pkgerrors.New(pkgerrors.CodeBusy, "another mutation is in flight")
	}
	s.busy = true
	snapshot := append([]models.Product(nil), s.products...)
	if optimistic != nil {
		s.products = optimistic(append([]models.Product(nil), s.products...))
	}
	s.mu.Unlock()

	result, err := call(ctx)
	if err != nil {
		s.mu.Lock()
		s.products = snapshot
		s.busy = false
		s.lastError = err.Error()
		s.mu.Unlock()
		s.metrics.IncMutationFailure(action)
		return result, err
	}

	s.metrics.IncMutationSuccess(action)

	// Reconciliation read: server truth replaces the optimistic guess.
	// Mandatory after a pending submit, where the guess is all we have.
	s.mu.Lock()
	s.busy = false
	s.lastError = ""
	s.mu.Unlock()
	if refreshErr := s.RefreshProducts(ctx); refreshErr != nil {
		s.logg.Error(s.logg.WithAction(ctx, action), "reconciliation read failed", refreshErr)
	}
	return result, nil
}

func (s *Store) findProduct(code string) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Code == code {
			return p, true
		}
	}
	return models.Product{}, false
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) recordError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
}

func adjustQuantity(code string, delta int) func([]models.Product) []models.Product {
	return func(products []models.Product) []models.Product {
		for i, p := range products {
			if p.Code == code {
				products[i].Quantity = p.Quantity + delta
			}
		}
		return products
	}
}

func productFromPayload(payload script.ProductPayload) models.Product {
	return models.Product{
		Code:               strings.TrimSpace(payload.Code),
		Name:               payload.Name,
		Unit:               payload.Unit,
		Quantity:           payload.Quantity,
		LowStockThreshold:  payload.LowStockThreshold,
		Category:           payload.Category,
		Returnable:         payload.Returnable,
		RequireRoom:        payload.RequireRoom,
		RequirePatientType: payload.RequirePatientType,
	}
}
