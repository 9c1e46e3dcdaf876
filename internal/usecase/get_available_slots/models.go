package get_available_slots

import "time"

// Request модель запроса на получение доступных слотов
type Request struct {
	EventTypeID int64     // ID типа события
	RangeStart  time.Time // Начало периода (включительно)
	RangeEnd    time.Time // Конец периода (включительно, дата)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	EventTypeID int64  // ID типа события
	Slots       []Slot // Слоты в хронологическом порядке
}

// Slot доступный слот с кандидатом-хостом
// Абсолютные моменты времени; конвертация в зону гостя - забота отображения
type Slot struct {
	Start    time.Time
	End      time.Time
	HostID   int64
	HostName string
}
