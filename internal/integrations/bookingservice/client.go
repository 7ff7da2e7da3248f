package bookingservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с BookingService (брони и бронирования)
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента BookingService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// CreateHold создает временную бронь корта на указанный интервал
// Возвращает ErrSlotConflict, если слот уже занят.
func (c *Client) CreateHold(ctx context.Context, req CreateHoldRequest) (*Hold, error) {
	endpoint := fmt.Sprintf("%s/internal/reservations", c.baseURL)

	resp, err := c.postJSON(ctx, endpoint, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		// Продолжаем обработку
	case http.StatusConflict:
		return nil, ErrSlotConflict
	default:
		return nil, unexpectedStatus(resp)
	}

	var hold Hold
	if err := json.NewDecoder(resp.Body).Decode(&hold); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if hold.ReservationID == "" || hold.ExpiresAt.IsZero() {
		return nil, fmt.Errorf("%w: hold without id or expiry", ErrInvalidResponse)
	}
	return &hold, nil
}

// CreateBooking создает финальное бронирование по удерживаемому корту/слоту
// Возвращает ErrSlotConflict (409), если слот заняли между удержанием и
// отправкой - ответ сервера авторитетен относительно клиентского отсчета.
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error) {
	endpoint := fmt.Sprintf("%s/internal/bookings", c.baseURL)

	resp, err := c.postJSON(ctx, endpoint, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		// Продолжаем обработку
	case http.StatusConflict:
		return nil, ErrSlotConflict
	default:
		return nil, unexpectedStatus(resp)
	}

	var booking Booking
	if err := json.NewDecoder(resp.Body).Decode(&booking); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return &booking, nil
}

// ReleaseHold снимает бронь раньше срока (best-effort)
// Протокол не требует явного освобождения - бронь истечет сама, поэтому
// ошибки освобождения только логируются вызывающей стороной.
func (c *Client) ReleaseHold(ctx context.Context, reservationID string) error {
	endpoint := fmt.Sprintf("%s/internal/reservations/%s", c.baseURL, reservationID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrReservationNotFound
	default:
		return unexpectedStatus(resp)
	}
}

// postJSON выполняет POST-запрос с JSON-телом
func (c *Client) postJSON(ctx context.Context, endpoint string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

// unexpectedStatus классифицирует неожиданный статус-код ответа
func unexpectedStatus(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status code %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}
	return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
}
