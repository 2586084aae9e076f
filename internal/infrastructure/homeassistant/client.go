// Package homeassistant translates the light-command vocabulary into Home
// Assistant REST service calls.
package homeassistant

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Command is one parsed light command.
type Command struct {
	// Service is the Home Assistant light service to call: "turn_on" or
	// "turn_off".
	Service string
	// BrightnessPct is set for set_brightness_<n> commands (0-100).
	BrightnessPct *int
}

// ParseCommand validates a raw command string against the fixed vocabulary:
// turn_on, turn_off and set_brightness_<0-100>.
func ParseCommand(raw string) (Command, error) {
	action := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case action == "turn_on":
		return Command{Service: "turn_on"}, nil
	case action == "turn_off":
		return Command{Service: "turn_off"}, nil
	case strings.HasPrefix(action, "set_brightness_"):
		pct, err := strconv.Atoi(strings.TrimPrefix(action, "set_brightness_"))
		if err != nil || pct < 0 || pct > 100 {
			return Command{}, fmt.Errorf("invalid brightness in command %q", raw)
		}
		// Brightness is applied through turn_on per the Home Assistant light
		// service contract.
		return Command{Service: "turn_on", BrightnessPct: &pct}, nil
	default:
		return Command{}, fmt.Errorf("unknown command %q", raw)
	}
}

// ClientConfig configures the Home Assistant REST client.
type ClientConfig struct {
	BaseURL  string
	Token    string
	EntityID string
	Timeout  time.Duration
}

// Client calls the Home Assistant REST API for a single light entity.
type Client struct {
	client   *fasthttp.Client
	baseURL  string
	token    string
	entityID string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewClient creates a Home Assistant client.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		client:   &fasthttp.Client{},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
		entityID: cfg.EntityID,
		timeout:  cfg.Timeout,
		logger:   logger.Named("HomeAssistantClient"),
	}
}

type servicePayload struct {
	EntityID      string `json:"entity_id"`
	BrightnessPct *int   `json:"brightness_pct,omitempty"`
}

// Call executes the parsed command against the configured entity.
func (c *Client) Call(ctx context.Context, cmd Command) error {
	if c.token == "" {
		return fmt.Errorf("home assistant token is not configured")
	}

	requestURL := fmt.Sprintf("%s/api/services/light/%s", c.baseURL, cmd.Service)
	body, err := json.Marshal(servicePayload{EntityID: c.entityID, BrightnessPct: cmd.BrightnessPct})
	if err != nil {
		return fmt.Errorf("failed to marshal service payload: %w", err)
	}

	c.logger.Debug("Calling Home Assistant service",
		zap.String("url", requestURL), zap.String("service", cmd.Service))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("failed to call home assistant at %s: %w", requestURL, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK && resp.StatusCode() != fasthttp.StatusCreated {
		c.logger.Error("Home Assistant request failed",
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", resp.Body()))
		return fmt.Errorf("home assistant returned status %d", resp.StatusCode())
	}
	return nil
}
