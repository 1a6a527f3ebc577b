package userservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент для работы с UserService (профили лояльности)
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента UserService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetLoyaltyProfile получает профиль лояльности пользователя
func (c *Client) GetLoyaltyProfile(ctx context.Context, userID int64) (*LoyaltyProfile, error) {
	url := fmt.Sprintf("%s/internal/users/%d/loyalty", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: invalid user ID format", ErrInvalidResponse)
	case http.StatusNotFound:
		return nil, ErrProfileNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var profile LoyaltyProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &profile, nil
}

// GetLoyaltyProfileWithGracefulDegradation получает профиль лояльности
// с graceful degradation: при недоступности UserService возвращает
// ErrServiceDegraded, и расчёт скидок переходит на VIP атрибуты,
// переданные вызывающей стороной
func (c *Client) GetLoyaltyProfileWithGracefulDegradation(ctx context.Context, userID int64) (*LoyaltyProfile, error) {
	profile, err := c.GetLoyaltyProfile(ctx, userID)
	if err != nil {
		// Отсутствие профиля - нормальная бизнес-ситуация, пробрасываем как есть
		if err == ErrProfileNotFound {
			c.log.Info("No loyalty profile found for user_id=%d", userID)
			return nil, err
		}

		// Для остальных ошибок (недоступность, timeout, ошибки парсинга)
		// применяем graceful degradation
		c.log.Error("UserService unavailable, applying graceful degradation for user_id=%d: %v", userID, err)
		return nil, fmt.Errorf("%w: user_id=%d, error=%v", ErrServiceDegraded, userID, err)
	}

	c.log.Info("Successfully fetched loyalty profile for user_id=%d, is_vip=%v", userID, profile.IsVIP)
	return profile, nil
}
