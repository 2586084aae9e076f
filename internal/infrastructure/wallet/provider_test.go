package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"walletwatch/internal/config"
	"walletwatch/internal/domain/entity"
)

func testProvider() *Provider {
	cfg := &config.Config{}
	cfg.Coinbase.BaseURL = "http://127.0.0.1:1"
	cfg.Coinbase.RequestTimeoutMillis = 1000
	cfg.Coinbase.RateLimitPerSecond = 10
	cfg.Coinbase.RateBurst = 5
	return NewProvider(cfg, zap.NewNop())
}

func TestBuildEthereumWallet(t *testing.T) {
	w, err := testProvider().Build(config.WalletConfig{
		Name:     "eth-main",
		Chain:    config.ChainEthereum,
		Address:  "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		Endpoint: "http://127.0.0.1:1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.CapabilityReadOnly, w.Capability())
	assert.Equal(t, []string{"eth"}, w.SupportedAssets())
}

func TestBuildSolanaWallet(t *testing.T) {
	w, err := testProvider().Build(config.WalletConfig{
		Name:     "sol-main",
		Chain:    config.ChainSolana,
		Address:  "11111111111111111111111111111111",
		Endpoint: "http://127.0.0.1:1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sol"}, w.SupportedAssets())
}

func TestBuildCoinbaseWalletRequiresCredentials(t *testing.T) {
	_, err := testProvider().Build(config.WalletConfig{
		Name:    "custodial",
		Chain:   config.ChainCoinbase,
		Address: "wallet-123",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials")
}

func TestBuildCoinbaseWallet(t *testing.T) {
	p := testProvider()
	w, err := p.Build(config.WalletConfig{
		Name:      "custodial",
		Chain:     config.ChainCoinbase,
		Address:   "wallet-123",
		APIKey:    "key",
		APISecret: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "wallet-123", w.Address())
	assert.Equal(t, entity.CapabilityReadOnly, w.Capability())

	// Same key pair shares one API client.
	_, err = p.Build(config.WalletConfig{
		Name:      "custodial-2",
		Chain:     config.ChainCoinbase,
		Address:   "wallet-456",
		APIKey:    "key",
		APISecret: "secret",
	})
	require.NoError(t, err)
	assert.Len(t, p.coinbaseClients, 1)
}

func TestBuildUnknownChain(t *testing.T) {
	_, err := testProvider().Build(config.WalletConfig{Name: "x", Chain: "dogecoin"})
	require.Error(t, err)
}
