package calendarsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Client клиент для работы с CalendarService
// CalendarService агрегирует занятость внешних календарей хостов (Google/Outlook/CalDAV)
// и отдаёт её как список занятых интервалов; сама синхронизация вне зоны
// ответственности этого сервиса
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента CalendarService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetBusyIntervals получает занятые интервалы хоста за период [from, to)
func (c *Client) GetBusyIntervals(ctx context.Context, hostID int64, from, to time.Time) ([]domain.BusyInterval, error) {
	endpoint := fmt.Sprintf("%s/internal/hosts/%d/busy?%s", c.baseURL, hostID, url.Values{
		"from": []string{from.UTC().Format(time.RFC3339)},
		"to":   []string{to.UTC().Format(time.RFC3339)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
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
	case http.StatusNotFound:
		return nil, ErrHostNotFound
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: invalid busy intervals request", ErrInvalidResponse)
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	// Парсим ответ
	var payload busyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	intervals := make([]domain.BusyInterval, 0, len(payload.Intervals))
	for _, dto := range payload.Intervals {
		intervals = append(intervals, domain.BusyInterval{Start: dto.Start, End: dto.End})
	}

	return intervals, nil
}

// GetBusyIntervalsStrict получает занятые интервалы хоста, оборачивая
// недоступность сервиса в ErrServiceDegraded
// Занятость календарей - ground truth для конфликтов: при недоступности
// CalendarService запрос доступности должен завершиться ошибкой, иначе
// сервис предложит гостям уже занятые слоты
func (c *Client) GetBusyIntervalsStrict(ctx context.Context, hostID int64, from, to time.Time) ([]domain.BusyInterval, error) {
	intervals, err := c.GetBusyIntervals(ctx, hostID, from, to)
	if err != nil {
		// Бизнес-ошибку пробрасываем как есть
		if errors.Is(err, ErrHostNotFound) {
			c.log.Warn("CalendarService has no host id=%d", hostID)
			return nil, err
		}

		// Недоступность сервиса, timeout, ошибки парсинга - повышаем уровень
		// логирования до ERROR, чтобы быстрее заметить проблему
		c.log.Error("CalendarService unavailable for host id=%d: %v", hostID, err)
		return nil, fmt.Errorf("%w: host_id=%d, error=%v", ErrServiceDegraded, hostID, err)
	}

	return intervals, nil
}
