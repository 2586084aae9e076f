// Package wallet wires configuration to concrete adapter implementations.
package wallet

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"walletwatch/internal/app/port"
	"walletwatch/internal/config"
	"walletwatch/internal/infrastructure/wallet/coinbase"
	"walletwatch/internal/infrastructure/wallet/ethereum"
	"walletwatch/internal/infrastructure/wallet/solana"
)

// Provider constructs wallet adapters from configuration. The custodial API
// client is shared between coinbase wallets using the same key pair.
type Provider struct {
	cfg             *config.Config
	logger          *zap.Logger
	coinbaseClients map[string]*coinbase.Client
}

// NewProvider creates an adapter provider.
func NewProvider(cfg *config.Config, logger *zap.Logger) *Provider {
	return &Provider{
		cfg:             cfg,
		logger:          logger,
		coinbaseClients: make(map[string]*coinbase.Client),
	}
}

// Build constructs the adapter for one wallet entry.
func (p *Provider) Build(wc config.WalletConfig) (port.Wallet, error) {
	switch wc.Chain {
	case config.ChainEthereum:
		return ethereum.NewWallet(ethereum.Config{
			Address:    wc.Address,
			Endpoint:   wc.Endpoint,
			PrivateKey: wc.PrivateKey,
		}, p.logger)

	case config.ChainSolana:
		return solana.NewWallet(solana.Config{
			Address:    wc.Address,
			Endpoint:   wc.Endpoint,
			PrivateKey: wc.PrivateKey,
		}, p.logger)

	case config.ChainCoinbase:
		if wc.APIKey == "" || wc.APISecret == "" {
			return nil, fmt.Errorf("wallet %q: coinbase API credentials are required", wc.Name)
		}
		client, ok := p.coinbaseClients[wc.APIKey]
		if !ok {
			client = coinbase.NewClient(coinbase.ClientConfig{
				BaseURL:   p.cfg.Coinbase.BaseURL,
				APIKey:    wc.APIKey,
				APISecret: wc.APISecret,
				Timeout:   time.Duration(p.cfg.Coinbase.RequestTimeoutMillis) * time.Millisecond,
				RateLimit: rate.Limit(p.cfg.Coinbase.RateLimitPerSecond),
				RateBurst: p.cfg.Coinbase.RateBurst,
			}, p.logger)
			p.coinbaseClients[wc.APIKey] = client
		}
		return coinbase.NewWallet(coinbase.Config{
			WalletID:     wc.Address,
			WalletSecret: wc.WalletSecret,
		}, client, p.logger)

	default:
		return nil, fmt.Errorf("wallet %q: unknown chain %q", wc.Name, wc.Chain)
	}
}
