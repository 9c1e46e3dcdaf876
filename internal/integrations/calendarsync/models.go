package calendarsync

import "time"

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// busyIntervalDTO интервал занятости в ответе CalendarService
type busyIntervalDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// busyResponse ответ CalendarService на запрос занятости хоста
type busyResponse struct {
	HostID    int64             `json:"hostId"`
	Intervals []busyIntervalDTO `json:"intervals"`
}
