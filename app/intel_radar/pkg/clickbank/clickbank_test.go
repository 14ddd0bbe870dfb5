package clickbank

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/storage"
)

type memStore struct {
	mu    sync.Mutex
	creds map[string]storage.ClickBankCreds
	err   error
}

func newMemStore() *memStore {
	return &memStore{creds: map[string]storage.ClickBankCreds{}}
}

func (m *memStore) SaveClickBankCreds(_ context.Context, c storage.ClickBankCreds) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.creds[c.UserID] = c
	return nil
}

func (m *memStore) GetClickBankCreds(_ context.Context, userID string) (*storage.ClickBankCreds, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.creds[userID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func TestSaveCredentials(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, config.ClickBankConfig{BaseURL: "http://unused"}, nil)

	res, err := svc.SaveCredentials(context.Background(), "7", "vendor", "CLERK")
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, "ClickBank account connected.", res.Message)
	assert.Equal(t, "vendor", store.creds["7"].Nickname)

	_, err = svc.SaveCredentials(context.Background(), "7", "", "CLERK")
	assert.Error(t, err)

	store.err = errors.New("db down")
	_, err = svc.SaveCredentials(context.Background(), "7", "vendor", "CLERK")
	assert.EqualError(t, err, "db down")
}

func TestFetchSales(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/1.3/analytics/summary", r.URL.Path)
		assert.Equal(t, "vendor", r.URL.Query().Get("accountId"))
		assert.Equal(t, "30", r.URL.Query().Get("days"))
		assert.Equal(t, "DEV:CLERK", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"totalSales":12,"revenue":345.5}`))
	}))
	defer srv.Close()

	store := newMemStore()
	store.creds["7"] = storage.ClickBankCreds{UserID: "7", Nickname: "vendor", ClerkKey: "CLERK"}
	svc := NewService(store, config.ClickBankConfig{BaseURL: srv.URL + "/rest/1.3", DevKey: "DEV"}, srv.Client())

	out, err := svc.FetchSales(context.Background(), "7", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 12, out["totalSales"])
	assert.EqualValues(t, 345.5, out["revenue"])
}

func TestFetchSales_NotConnected(t *testing.T) {
	svc := NewService(newMemStore(), config.ClickBankConfig{BaseURL: "http://unused"}, nil)
	_, err := svc.FetchSales(context.Background(), "nobody", 7)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestFetchSales_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "14", r.URL.Query().Get("days"))
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("invalid clerk key"))
	}))
	defer srv.Close()

	store := newMemStore()
	store.creds["7"] = storage.ClickBankCreds{UserID: "7", Nickname: "vendor", ClerkKey: "BAD"}
	svc := NewService(store, config.ClickBankConfig{BaseURL: srv.URL, DevKey: "DEV"}, srv.Client())

	_, err := svc.FetchSales(context.Background(), "7", 14)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAPI)
	assert.Contains(t, err.Error(), "invalid clerk key")
}
