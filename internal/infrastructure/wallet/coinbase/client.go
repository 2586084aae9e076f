package coinbase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"walletwatch/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ClientConfig configures the custodial API client.
type ClientConfig struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
	RateLimit rate.Limit
	RateBurst int
}

// Client is a thin HTTP client for the custodial wallet API. Requests are
// HMAC-signed and rate limited; the client never retries, retry policy
// belongs to the caller.
type Client struct {
	client    *fasthttp.Client
	baseURL   string
	apiKey    string
	apiSecret string
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// NewClient creates a custodial API client.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		client:    &fasthttp.Client{},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		timeout:   cfg.Timeout,
		limiter:   rate.NewLimiter(cfg.RateLimit, cfg.RateBurst),
		logger:    logger.Named("CoinbaseClient"),
	}
}

type balanceEntry struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

type balancesResponse struct {
	Balances []balanceEntry `json:"balances"`
}

type transferRequest struct {
	ToAddress string `json:"to_address"`
	Amount    string `json:"amount"`
	Asset     string `json:"asset"`
}

type transferResponse struct {
	TransferID      string `json:"transfer_id"`
	TransactionHash string `json:"transaction_hash"`
	Status          string `json:"status"`
}

type signRequest struct {
	Payload string `json:"payload"`
}

type signResponse struct {
	Signature string `json:"signature"`
}

// Balances fetches all asset balances of the wallet, keyed by lower-case
// asset symbol.
func (c *Client) Balances(ctx context.Context, walletID string) (map[string]decimal.Decimal, error) {
	path := fmt.Sprintf("/v1/wallets/%s/balances", walletID)
	body, err := c.do(ctx, fasthttp.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}

	var parsed balancesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, entity.NewWalletError(entity.KindProtocol, "fetch_balance", "",
			fmt.Errorf("malformed balances response: %w", err))
	}

	out := make(map[string]decimal.Decimal, len(parsed.Balances))
	for _, b := range parsed.Balances {
		amount, err := decimal.NewFromString(b.Amount)
		if err != nil {
			return nil, entity.NewWalletError(entity.KindProtocol, "fetch_balance", b.Asset,
				fmt.Errorf("malformed amount %q: %w", b.Amount, err))
		}
		out[strings.ToLower(b.Asset)] = amount
	}
	return out, nil
}

// Transfer submits a transfer through the custodial API. walletSecret
// authorizes the write; the API acknowledges submission, confirmation depth
// is not awaited here.
func (c *Client) Transfer(ctx context.Context, walletID, toAddress string, amount decimal.Decimal, asset, walletSecret string) (transferResponse, error) {
	path := fmt.Sprintf("/v1/wallets/%s/transfers", walletID)
	payload, err := json.Marshal(transferRequest{
		ToAddress: toAddress,
		Amount:    amount.String(),
		Asset:     asset,
	})
	if err != nil {
		return transferResponse{}, entity.NewWalletError(entity.KindProtocol, "transfer", asset, err)
	}

	body, err := c.do(ctx, fasthttp.MethodPost, path, payload, walletSecret)
	if err != nil {
		return transferResponse{}, err
	}

	var parsed transferResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return transferResponse{}, entity.NewWalletError(entity.KindProtocol, "transfer", asset,
			fmt.Errorf("malformed transfer response: %w", err))
	}
	return parsed, nil
}

// SignPayload asks the custodial API to sign an arbitrary payload with the
// wallet's key.
func (c *Client) SignPayload(ctx context.Context, walletID, payload, walletSecret string) (string, error) {
	path := fmt.Sprintf("/v1/wallets/%s/sign", walletID)
	reqBody, err := json.Marshal(signRequest{Payload: payload})
	if err != nil {
		return "", entity.NewWalletError(entity.KindProtocol, "sign_message", "", err)
	}

	body, err := c.do(ctx, fasthttp.MethodPost, path, reqBody, walletSecret)
	if err != nil {
		return "", err
	}

	var parsed signResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", entity.NewWalletError(entity.KindProtocol, "sign_message", "",
			fmt.Errorf("malformed sign response: %w", err))
	}
	if parsed.Signature == "" {
		return "", entity.NewWalletError(entity.KindProtocol, "sign_message", "",
			fmt.Errorf("sign response missing signature"))
	}
	return parsed.Signature, nil
}

// do executes one signed request and returns the response body. Transport
// failures and 5xx/429 statuses classify as network errors, other non-200
// statuses as protocol errors.
func (c *Client) do(ctx context.Context, method, path string, body []byte, walletSecret string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, entity.NewWalletError(entity.KindNetwork, "coinbase_api", "", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if len(body) > 0 {
		req.SetBody(body)
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("X-Api-Timestamp", timestamp)
	req.Header.Set("X-Api-Signature", c.sign(timestamp, method, path, body))
	if walletSecret != "" {
		req.Header.Set("X-Wallet-Auth", walletSecret)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Warn("Custodial API request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, entity.NewWalletError(entity.KindNetwork, "coinbase_api", "", err)
	}

	status := resp.StatusCode()
	respBody := append([]byte(nil), resp.Body()...)
	if status != fasthttp.StatusOK {
		c.logger.Warn("Custodial API returned error status",
			zap.String("method", method), zap.String("path", path),
			zap.Int("statusCode", status), zap.ByteString("responseBody", respBody))
		kind := entity.KindProtocol
		if status >= fasthttp.StatusInternalServerError || status == fasthttp.StatusTooManyRequests {
			kind = entity.KindNetwork
		}
		return nil, entity.NewWalletError(kind, "coinbase_api", "",
			fmt.Errorf("request to %s failed with status %d", path, status))
	}
	return respBody, nil
}

// sign computes the request HMAC over timestamp, method, path and body.
func (c *Client) sign(timestamp, method, path string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte(method))
	mac.Write([]byte(path))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
