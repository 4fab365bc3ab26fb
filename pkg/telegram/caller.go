package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/raffleclub/backend/config"
)

// Caller is the outbound messaging surface the engine depends on. Every
// method is fire-and-forget from the engine's point of view: a failed
// delivery is reported as an error but never retried here.
type Caller interface {
	// SendDirectMessage delivers a private message to a single user.
	SendDirectMessage(ctx context.Context, userID, text string) error

	// PostGroupMessage publishes an announcement in a group chat and
	// returns the platform message id, so the announcement can be edited
	// later.
	PostGroupMessage(ctx context.Context, groupID, text string) (string, error)

	// EditGroupMessage replaces the text of a previously posted group
	// message.
	EditGroupMessage(ctx context.Context, groupID, messageID, text string) error
}

type apiCaller struct {
	client *http.Client
	cfg    config.TelegramConfigs
}

func NewCaller(cfg config.TelegramConfigs) *apiCaller {
	return &apiCaller{
		client: &http.Client{Timeout: 10 * time.Second},
		cfg:    cfg,
	}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

func (c *apiCaller) call(ctx context.Context, method string, body map[string]any) (*apiResponse, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.cfg.Endpoint, c.cfg.BotToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	var resp apiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, err
	}

	if !resp.OK {
		return nil, fmt.Errorf("telegram %s failed: %s", method, resp.Description)
	}

	return &resp, nil
}

func (c *apiCaller) SendDirectMessage(ctx context.Context, userID, text string) error {
	_, err := c.call(ctx, "sendMessage", map[string]any{
		"chat_id": userID,
		"text":    text,
	})
	return err
}

func (c *apiCaller) PostGroupMessage(ctx context.Context, groupID, text string) (string, error) {
	resp, err := c.call(ctx, "sendMessage", map[string]any{
		"chat_id": groupID,
		"text":    text,
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", resp.Result.MessageID), nil
}

func (c *apiCaller) EditGroupMessage(ctx context.Context, groupID, messageID, text string) error {
	_, err := c.call(ctx, "editMessageText", map[string]any{
		"chat_id":    groupID,
		"message_id": messageID,
		"text":       text,
	})
	return err
}
