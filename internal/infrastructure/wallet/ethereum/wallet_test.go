package ethereum

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"walletwatch/internal/domain/entity"
)

const (
	testAddress = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	// Throwaway key, funds must never be sent to it.
	testPrivateKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	// Unreachable endpoint; the http dialer is lazy so construction succeeds
	// and only network calls would fail.
	testEndpoint = "http://127.0.0.1:1"
)

func newTestWallet(t *testing.T, privateKey string) *Wallet {
	t.Helper()
	w, err := NewWallet(Config{
		Address:    testAddress,
		Endpoint:   testEndpoint,
		PrivateKey: privateKey,
	}, zap.NewNop())
	require.NoError(t, err)
	return w
}

func TestValidAddress(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want bool
	}{
		{"checksummed", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", true},
		{"all lowercase", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"all uppercase hex", "0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED", true},
		{"bad checksum", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1Beaed", false},
		{"too short", "0x5aaeb6053f3e94c9", false},
		{"not hex", "0xZZZeb6053f3e94c9b9a09f33669435e7ef1beaed", false},
		{"empty", "", false},
		{"solana address", "4Nd1mYrK3VPbFhVD9PuKsLYocz2kRTJ8a5Y5ZsdZnhF1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidAddress(tt.addr))
		})
	}
}

func TestNewWalletRejectsInvalidAddress(t *testing.T) {
	_, err := NewWallet(Config{Address: "nonsense", Endpoint: testEndpoint}, zap.NewNop())
	require.Error(t, err)
}

func TestNewWalletRejectsInvalidPrivateKey(t *testing.T) {
	_, err := NewWallet(Config{
		Address:    testAddress,
		Endpoint:   testEndpoint,
		PrivateKey: "not-a-key",
	}, zap.NewNop())
	require.Error(t, err)
}

func TestNewWalletCapability(t *testing.T) {
	assert.Equal(t, entity.CapabilityReadOnly, newTestWallet(t, "").Capability())
	assert.Equal(t, entity.CapabilityReadWrite, newTestWallet(t, testPrivateKey).Capability())
}

func TestSupportedAssets(t *testing.T) {
	assert.Equal(t, []string{"eth"}, newTestWallet(t, "").SupportedAssets())
}

func TestFetchBalanceRejectsUnsupportedAsset(t *testing.T) {
	w := newTestWallet(t, "")
	_, err := w.FetchBalance(context.Background(), "sol")
	require.Error(t, err)
	assert.True(t, entity.IsKind(err, entity.KindUnsupportedAsset))
}

func TestTransferValidationOrder(t *testing.T) {
	w := newTestWallet(t, testPrivateKey)
	ctx := context.Background()

	// Recipient address wins over everything else.
	res, err := w.Transfer(ctx, "bogus", decimal.NewFromInt(-1), "doge")
	require.Error(t, err)
	assert.True(t, entity.IsKind(err, entity.KindInvalidAddress))
	assert.Equal(t, entity.StatusFailed, res.Status)

	// Then the amount.
	_, err = w.Transfer(ctx, testAddress, decimal.Zero, "doge")
	assert.True(t, entity.IsKind(err, entity.KindInvalidAmount))

	// Then the asset.
	_, err = w.Transfer(ctx, testAddress, decimal.NewFromInt(1), "doge")
	assert.True(t, entity.IsKind(err, entity.KindUnsupportedAsset))
}

func TestTransferReadOnly(t *testing.T) {
	w := newTestWallet(t, "")
	res, err := w.Transfer(context.Background(), testAddress, decimal.NewFromInt(1), "eth")
	require.Error(t, err)
	assert.True(t, entity.IsKind(err, entity.KindReadOnly))
	assert.Equal(t, entity.StatusFailed, res.Status)
	assert.NotEmpty(t, res.Error)
}

func TestSignMessageReadOnly(t *testing.T) {
	w := newTestWallet(t, "")
	res, err := w.SignMessage(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, entity.IsKind(err, entity.KindReadOnly))
	assert.Equal(t, entity.StatusFailed, res.Status)
}

func TestSignMessageRecoverable(t *testing.T) {
	w := newTestWallet(t, testPrivateKey)
	message := "walletwatch ownership proof"

	res, err := w.SignMessage(context.Background(), message)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSuccess, res.Status)
	assert.Equal(t, message, res.Message)

	sig, err := hexutil.Decode(res.Signature)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	// Undo the Ethereum recovery-id convention and recover the signer.
	sig[64] -= 27
	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	require.NoError(t, err)
	assert.Equal(t, res.Address, crypto.PubkeyToAddress(*pub).Hex())
}
