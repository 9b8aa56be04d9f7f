package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardstockhq/wardstock-backend/pkg/config"
	"github.com/wardstockhq/wardstock-backend/pkg/enums"
	pkgerrors "github.com/wardstockhq/wardstock-backend/pkg/errors"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
)

func valuesHandler(t *testing.T, wantPath string, rows [][]string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantPath, r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		_ = json.NewEncoder(w).Encode(map[string]any{"values": rows})
	}
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "sheets-test", Level: logger.ParseLevel("error")})
	client, err := NewClient(config.SheetsConfig{
		BaseURL:       serverURL,
		SpreadsheetID: "sheet-1",
		APIKey:        "test-key",
		MaxRetries:    2,
	}, logg)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresSpreadsheetID(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "sheets-test", Level: logger.ParseLevel("error")})
	_, err := NewClient(config.SheetsConfig{}, logg)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConfiguration, pkgerrors.CodeOf(err))
}

func TestFetchProductsSkipsBlankCodes(t *testing.T) {
	rows := [][]string{
		{"MED-001", "Saline 0.9%", "bag", "42", "10", "IV fluids", "TRUE", "FALSE", "FALSE"},
		{"", "orphan row"},
		{"MED-002", "Gauze", "pack", "5", "10", "Dressing", "FALSE", "FALSE", "FALSE"},
	}
	srv := httptest.NewServer(valuesHandler(t, "/sheet-1/values/Products!A2:K", rows))
	defer srv.Close()

	products, err := newTestClient(t, srv.URL).FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "MED-001", products[0].Code)
	assert.True(t, products[1].LowStock())
}

func TestFetchTransactionsAppliesFilter(t *testing.T) {
	rows := [][]string{
		{"TX-1", "2026-01-15T08:00:00", "WITHDRAW", "MED-001", "Saline", "2", "42", "40", "Ying", ""},
		{"TX-2", "2026-01-15T09:00:00", "รับเข้า", "MED-001", "Saline", "10", "40", "50", "Somchai", ""},
	}
	srv := httptest.NewServer(valuesHandler(t, "/sheet-1/values/Transactions!A2:J", rows))
	defer srv.Close()

	txs, err := newTestClient(t, srv.URL).FetchTransactions(context.Background(), TransactionFilter{
		Type: enums.TransactionTypeReceive,
	})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "TX-2", txs[0].ID)
	assert.Equal(t, enums.TransactionTypeReceive, txs[0].Type)
}

func TestFetchAllowListTrimsBlanks(t *testing.T) {
	rows := [][]string{{"Nurse Ying"}, {"  "}, {"ALL"}, {}}
	srv := httptest.NewServer(valuesHandler(t, "/sheet-1/values/AllowedUsers!A2:A", rows))
	defer srv.Close()

	names, err := newTestClient(t, srv.URL).FetchAllowList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Nurse Ying", "ALL"}, names)
}

func TestValuesRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"values": [][]string{{"Nurse Ying"}}})
	}))
	defer srv.Close()

	rows, err := newTestClient(t, srv.URL).Values(context.Background(), "AllowedUsers!A2:A")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, rows, 1)
}

func TestValuesDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Values(context.Background(), "Products!A2:K")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConfiguration, pkgerrors.CodeOf(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestValuesTransportErrorSurfacesAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := newTestClient(t, srv.URL).Values(context.Background(), "Products!A2:K")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeTransport, pkgerrors.CodeOf(err))
}
