package solana

import (
	"context"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"walletwatch/internal/domain/entity"
)

// Unreachable endpoint; rpc.New performs no network call so only actual RPC
// methods would fail against it.
const testEndpoint = "http://127.0.0.1:1"

func newTestWallet(t *testing.T, withKey bool) (*Wallet, solanago.PrivateKey) {
	t.Helper()
	account := solanago.NewWallet()
	cfg := Config{
		Address:  account.PublicKey().String(),
		Endpoint: testEndpoint,
	}
	if withKey {
		cfg.PrivateKey = account.PrivateKey.String()
	}
	w, err := NewWallet(cfg, zap.NewNop())
	require.NoError(t, err)
	return w, account.PrivateKey
}

func TestValidAddress(t *testing.T) {
	account := solanago.NewWallet()
	tests := []struct {
		name string
		addr string
		want bool
	}{
		{"generated key", account.PublicKey().String(), true},
		{"system program", "11111111111111111111111111111111", true},
		{"ethereum address", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", false},
		{"empty", "", false},
		{"garbage", "not-base58-0OIl", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidAddress(tt.addr))
		})
	}
}

func TestNewWalletRejectsInvalidAddress(t *testing.T) {
	_, err := NewWallet(Config{Address: "bogus", Endpoint: testEndpoint}, zap.NewNop())
	require.Error(t, err)
}

func TestNewWalletRejectsInvalidPrivateKey(t *testing.T) {
	account := solanago.NewWallet()
	_, err := NewWallet(Config{
		Address:    account.PublicKey().String(),
		Endpoint:   testEndpoint,
		PrivateKey: "bogus",
	}, zap.NewNop())
	require.Error(t, err)
}

func TestNewWalletCapability(t *testing.T) {
	ro, _ := newTestWallet(t, false)
	assert.Equal(t, entity.CapabilityReadOnly, ro.Capability())

	rw, _ := newTestWallet(t, true)
	assert.Equal(t, entity.CapabilityReadWrite, rw.Capability())
}

func TestFetchBalanceRejectsUnsupportedAsset(t *testing.T) {
	w, _ := newTestWallet(t, false)
	_, err := w.FetchBalance(context.Background(), "eth")
	require.Error(t, err)
	assert.True(t, entity.IsKind(err, entity.KindUnsupportedAsset))
}

func TestTransferValidationOrder(t *testing.T) {
	w, _ := newTestWallet(t, true)
	ctx := context.Background()
	recipient := solanago.NewWallet().PublicKey().String()

	res, err := w.Transfer(ctx, "not-an-address", decimal.NewFromInt(-1), "doge")
	require.Error(t, err)
	assert.True(t, entity.IsKind(err, entity.KindInvalidAddress))
	assert.Equal(t, entity.StatusFailed, res.Status)

	_, err = w.Transfer(ctx, recipient, decimal.Zero, "doge")
	assert.True(t, entity.IsKind(err, entity.KindInvalidAmount))

	_, err = w.Transfer(ctx, recipient, decimal.NewFromInt(1), "eth")
	assert.True(t, entity.IsKind(err, entity.KindUnsupportedAsset))
}

func TestTransferReadOnly(t *testing.T) {
	w, _ := newTestWallet(t, false)
	recipient := solanago.NewWallet().PublicKey().String()

	res, err := w.Transfer(context.Background(), recipient, decimal.NewFromInt(1), "sol")
	require.Error(t, err)
	assert.True(t, entity.IsKind(err, entity.KindReadOnly))
	assert.Equal(t, entity.StatusFailed, res.Status)
}

func TestSignMessageReadOnly(t *testing.T) {
	w, _ := newTestWallet(t, false)
	res, err := w.SignMessage(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, entity.IsKind(err, entity.KindReadOnly))
	assert.Equal(t, entity.StatusFailed, res.Status)
}

func TestSignMessageVerifiable(t *testing.T) {
	w, key := newTestWallet(t, true)
	message := "walletwatch ownership proof"

	res, err := w.SignMessage(context.Background(), message)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSuccess, res.Status)
	assert.Equal(t, key.PublicKey().String(), res.Address)

	sig, err := solanago.SignatureFromBase58(res.Signature)
	require.NoError(t, err)
	assert.True(t, sig.Verify(key.PublicKey(), []byte(message)))
}
