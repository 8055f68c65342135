package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iudanet/stablehand/pkg/api"
)

// Ошибки, на которые CLI и синхронизатор реагируют по-разному:
// 401 лечится повторным логином, 402 — это просто нехватка валюты.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrPaymentRequired = errors.New("not enough funds")
)

// Client — HTTP-клиент серверного API
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:       30 * time.Second,
			CheckRedirect: keepAuthOnRedirect,
		},
	}
}

// keepAuthOnRedirect переносит Bearer-заголовок вслед за редиректом
// и обрезает цепочки длиннее десяти переходов
func keepAuthOnRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return fmt.Errorf("stopped after 10 redirects")
	}
	if auth := via[0].Header.Get("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}
	return nil
}

// Register регистрирует нового игрока
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", "", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh обменивает refresh token на новую пару токенов
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh", refreshToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Logout отзывает refresh токены пользователя на сервере
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", accessToken, nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Sync отправляет накопленный сессионный заработок на сверку.
// Ответ содержит авторитетные балансы, которыми клиент замещает свои.
func (c *Client) Sync(ctx context.Context, accessToken string, req api.SyncRequest) (*api.SyncResponse, error) {
	var resp api.SyncResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/user/sync", accessToken, req, &resp); err != nil {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}
	return &resp, nil
}

// OfflineEarnings запрашивает предпросмотр офлайн-наград без их зачисления
func (c *Client) OfflineEarnings(ctx context.Context, accessToken string) (*api.OfflineEarningsResponse, error) {
	var resp api.OfflineEarningsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/user/offline-earnings", accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("offline earnings request failed: %w", err)
	}
	return &resp, nil
}

// ClaimOffline зачисляет офлайн-награды, опционально с бонусом за рекламу
func (c *Client) ClaimOffline(
	ctx context.Context,
	accessToken string,
	req api.ClaimOfflineRequest,
) (*api.ClaimOfflineResponse, error) {
	var resp api.ClaimOfflineResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/user/claim-offline", accessToken, req, &resp); err != nil {
		return nil, fmt.Errorf("claim offline request failed: %w", err)
	}
	return &resp, nil
}

// Upgrade покупает апгрейд; при нехватке средств вернётся ErrPaymentRequired
func (c *Client) Upgrade(
	ctx context.Context,
	accessToken string,
	req api.UpgradeRequest,
) (*api.UpgradeResponse, error) {
	var resp api.UpgradeResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/user/upgrade", accessToken, req, &resp); err != nil {
		return nil, fmt.Errorf("upgrade request failed: %w", err)
	}
	return &resp, nil
}

// Leaderboard запрашивает таблицу лидеров; авторизация не нужна
func (c *Client) Leaderboard(ctx context.Context) (*api.LeaderboardResponse, error) {
	var resp api.LeaderboardResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/leaderboard", "", nil, &resp); err != nil {
		return nil, fmt.Errorf("leaderboard request failed: %w", err)
	}
	return &resp, nil
}

// doRequest выполняет запрос и декодирует ответ в result (если он не nil).
// Не-2xx ответы превращаются в ошибки, 401 и 402 — в сентинели.
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return apiError(resp.StatusCode, respBody)
	}

	// 204 приходит без тела
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// apiError достает сообщение из envelope ошибки, если сервер его прислал
func apiError(status int, body []byte) error {
	message := string(body)
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		message = errResp.Message
	}

	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, message)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: %s", ErrPaymentRequired, message)
	default:
		return fmt.Errorf("server error (%d): %s", status, message)
	}
}
