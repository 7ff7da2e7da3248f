package clubservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с ClubService (каталог клубов и кортов)
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента ClubService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// ListClubs возвращает список клубов для шага выбора клуба
func (c *Client) ListClubs(ctx context.Context) ([]ClubSummary, error) {
	endpoint := fmt.Sprintf("%s/internal/clubs", c.baseURL)

	var clubs []ClubSummary
	if err := c.getJSON(ctx, endpoint, &clubs); err != nil {
		return nil, err
	}
	return clubs, nil
}

// GetClub возвращает клуб с рабочими часами
func (c *Client) GetClub(ctx context.Context, clubID int64) (*Club, error) {
	endpoint := fmt.Sprintf("%s/internal/clubs/%d", c.baseURL, clubID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return nil, ErrClubNotFound
	default:
		return nil, unexpectedStatus(resp)
	}

	var club Club
	if err := json.NewDecoder(resp.Body).Decode(&club); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return &club, nil
}

// GetClubWithGracefulDegradation возвращает клуб с деградацией при недоступности
// Используется для best-effort префетча предвыбранного клуба: при любой ошибке,
// кроме "не найден", вызывающая сторона трактует клуб как невыбранный.
func (c *Client) GetClubWithGracefulDegradation(ctx context.Context, clubID int64) (*Club, error) {
	club, err := c.GetClub(ctx, clubID)
	if err != nil {
		if errors.Is(err, ErrClubNotFound) {
			c.log.Info("Club id=%d not found during prefetch", clubID)
			return nil, err
		}
		c.log.Error("ClubService unavailable during prefetch of club id=%d: %v", clubID, err)
		return nil, fmt.Errorf("%w: club prefetch failed: %v", ErrUnavailable, err)
	}
	return club, nil
}

// GetCourt возвращает корт клуба с тарифами
// Используется для префетча предвыбранного корта.
func (c *Client) GetCourt(ctx context.Context, clubID, courtID int64) (*Court, error) {
	endpoint := fmt.Sprintf("%s/internal/clubs/%d/courts/%d", c.baseURL, clubID, courtID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return nil, ErrCourtNotFound
	default:
		return nil, unexpectedStatus(resp)
	}

	var court Court
	if err := json.NewDecoder(resp.Body).Decode(&court); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return &court, nil
}

// GetAvailableCourts возвращает корты, доступные по запрошенному ключу
// При нулевом списке кортов ответ содержит предложения альтернатив.
func (c *Client) GetAvailableCourts(ctx context.Context, query domain.AvailabilityQuery) (*AvailableCourtsResponse, error) {
	params := url.Values{}
	params.Set("date", query.Date.Format(domain.DateFormat))
	params.Set("start_time", query.StartTime.String())
	params.Set("duration_minutes", fmt.Sprintf("%d", query.DurationMinutes))
	params.Set("court_format", string(query.CourtFormat))

	endpoint := fmt.Sprintf("%s/internal/clubs/%d/available-courts?%s",
		c.baseURL, query.ClubID, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return nil, ErrClubNotFound
	case http.StatusUnprocessableEntity:
		// Сервис различает "клуб закрыт" кодом в теле ответа
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Code == errCodeClubClosed {
			return nil, ErrClubClosed
		}
		return nil, fmt.Errorf("%w: unprocessable availability request", ErrInvalidResponse)
	default:
		return nil, unexpectedStatus(resp)
	}

	var result AvailableCourtsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return &result, nil
}

// getJSON выполняет GET-запрос и декодирует JSON-ответ
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unexpectedStatus(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return nil
}

// unexpectedStatus классифицирует неожиданный статус-код ответа
func unexpectedStatus(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status code %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}
	return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
}
