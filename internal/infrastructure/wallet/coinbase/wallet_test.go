package coinbase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"walletwatch/internal/domain/entity"
)

const testRecipient = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

// countingServer records how many requests reached the API so tests can
// prove local validation never touches the network.
func countingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newCustodialWallet(t *testing.T, baseURL, walletSecret string) *Wallet {
	t.Helper()
	client := NewClient(ClientConfig{
		BaseURL:   baseURL,
		APIKey:    testAPIKey,
		APISecret: testAPISecret,
		Timeout:   time.Second,
		RateLimit: rate.Limit(100),
		RateBurst: 10,
	}, zap.NewNop())
	w, err := NewWallet(Config{WalletID: testWalletID, WalletSecret: walletSecret}, client, zap.NewNop())
	require.NoError(t, err)
	return w
}

func TestNewWalletRequiresWalletID(t *testing.T) {
	_, err := NewWallet(Config{}, nil, zap.NewNop())
	require.Error(t, err)
}

func TestWalletCapability(t *testing.T) {
	assert.Equal(t, entity.CapabilityReadOnly, newCustodialWallet(t, "http://127.0.0.1:1", "").Capability())
	assert.Equal(t, entity.CapabilityReadWrite, newCustodialWallet(t, "http://127.0.0.1:1", "s").Capability())
}

func TestFetchBalanceMissingAssetIsZero(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"balances":[{"asset":"eth","amount":"2"}]}`))
	})

	w := newCustodialWallet(t, srv.URL, "")
	balance, err := w.FetchBalance(context.Background(), "usdc")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestFetchBalanceRejectsUnsupportedAssetLocally(t *testing.T) {
	srv, hits := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"balances":[]}`))
	})

	w := newCustodialWallet(t, srv.URL, "")
	_, err := w.FetchBalance(context.Background(), "doge")
	require.Error(t, err)
	assert.True(t, entity.IsKind(err, entity.KindUnsupportedAsset))
	assert.Equal(t, int64(0), hits.Load())
}

func TestTransferValidationOrder(t *testing.T) {
	srv, hits := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	})
	w := newCustodialWallet(t, srv.URL, "wallet-secret")
	ctx := context.Background()

	_, err := w.Transfer(ctx, "nonsense", decimal.Zero, "doge")
	assert.True(t, entity.IsKind(err, entity.KindInvalidAddress))

	_, err = w.Transfer(ctx, testRecipient, decimal.Zero, "doge")
	assert.True(t, entity.IsKind(err, entity.KindInvalidAmount))

	_, err = w.Transfer(ctx, testRecipient, decimal.NewFromInt(1), "doge")
	assert.True(t, entity.IsKind(err, entity.KindUnsupportedAsset))

	assert.Equal(t, int64(0), hits.Load())
}

func TestTransferReadOnlyNeverCallsAPI(t *testing.T) {
	srv, hits := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	})

	w := newCustodialWallet(t, srv.URL, "")
	res, err := w.Transfer(context.Background(), testRecipient, decimal.NewFromInt(1), "eth")
	require.Error(t, err)
	assert.True(t, entity.IsKind(err, entity.KindReadOnly))
	assert.Equal(t, entity.StatusFailed, res.Status)
	assert.Equal(t, int64(0), hits.Load())

	_, err = w.SignMessage(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, entity.IsKind(err, entity.KindReadOnly))
	assert.Equal(t, int64(0), hits.Load())
}

func TestTransferSuccess(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"transfer_id":"t-9","transaction_hash":"0xfeed","status":"pending"}`))
	})

	w := newCustodialWallet(t, srv.URL, "wallet-secret")
	res, err := w.Transfer(context.Background(), testRecipient, decimal.RequireFromString("0.25"), "usdc")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSuccess, res.Status)
	assert.Equal(t, "0xfeed", res.TxHash)
	assert.Equal(t, testWalletID, res.From)
}

func TestSignMessageRemote(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/wallets/wallet-123/sign", r.URL.Path)
		w.Write([]byte(`{"signature":"0xsig"}`))
	})

	w := newCustodialWallet(t, srv.URL, "wallet-secret")
	res, err := w.SignMessage(context.Background(), "prove it")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSuccess, res.Status)
	assert.Equal(t, "0xsig", res.Signature)
}
