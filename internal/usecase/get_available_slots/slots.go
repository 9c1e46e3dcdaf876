package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/timewindow"
)

// hostLocalDays возвращает полуночи локальных календарных дней хоста,
// покрывающих период [rangeStart, rangeEnd]
// Запрошенный период сперва конвертируется в локальные дни хоста:
// раскрытие недельного расписания всегда происходит в зоне хоста
func hostLocalDays(rangeStart, rangeEnd time.Time, loc *time.Location) []time.Time {
	localStart := rangeStart.In(loc)
	// rangeEnd - полночь последнего календарного дня, сам день входит в период
	// целиком; последний локальный день хоста - тот, что содержит последний
	// момент периода, иначе для зон западнее UTC день rangeEnd теряется
	localEnd := rangeEnd.AddDate(0, 0, 1).Add(-time.Nanosecond).In(loc)

	day := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, loc)
	lastDay := time.Date(localEnd.Year(), localEnd.Month(), localEnd.Day(), 0, 0, 0, 0, loc)

	days := make([]time.Time, 0)
	for !day.After(lastDay) {
		days = append(days, day)
		day = day.AddDate(0, 0, 1)
	}

	return days
}

// resolveDayWindows возвращает окна доступности хоста на локальный день,
// суженные на буферы типа события
// День без окон в недельном расписании даёт пустой результат
func resolveDayWindows(host *domain.Host, et *domain.EventType, day time.Time, loc *time.Location) ([]timewindow.Window, error) {
	raw := host.Availability.WindowsFor(day.Weekday())
	if len(raw) == 0 {
		return nil, nil
	}

	bufferBefore := time.Duration(et.BufferBeforeMinutes) * time.Minute
	bufferAfter := time.Duration(et.BufferAfterMinutes) * time.Minute

	windows := make([]timewindow.Window, 0, len(raw))
	for _, w := range raw {
		start, err := w.Start.At(day, loc)
		if err != nil {
			return nil, err
		}

		end, err := w.End.At(day, loc)
		if err != nil {
			return nil, err
		}

		// Буферы вычитаются из краёв окна
		narrowed := timewindow.Window{
			Start: start.Add(bufferBefore),
			End:   end.Add(-bufferAfter),
		}

		if narrowed.IsValid() {
			windows = append(windows, narrowed)
		}
	}

	return windows, nil
}

// candidateSlots нарезает окна дня на слоты-кандидаты типа события
func candidateSlots(windows []timewindow.Window, et *domain.EventType) []timewindow.Window {
	slots := make([]timewindow.Window, 0)
	for _, w := range windows {
		slots = append(slots, timewindow.Slice(w.Start, w.End, et.Duration(), et.SlotInterval())...)
	}
	return slots
}

// withinNotice проверяет границы min-notice и max-advance
// Кандидаты раньше now+minNotice и позже now+maxAdvance отбрасываются
func withinNotice(slot timewindow.Window, now time.Time, et *domain.EventType) bool {
	if slot.Start.Before(now.Add(et.MinNotice())) {
		return false
	}
	if et.MaxAdvanceMinutes > 0 && slot.Start.After(now.Add(et.MaxAdvance())) {
		return false
	}
	return true
}

// conflictsWith проверяет пересечение слота с активными бронированиями хоста
// и занятостью его внешних календарей
// Пересечение полуоткрытое: граничащие интервалы не конфликтуют
func conflictsWith(start, end time.Time, bookings []*domain.Booking, busy []domain.BusyInterval) bool {
	for _, b := range bookings {
		// Отменённые бронирования не занимают время хоста
		if !b.IsActive() {
			continue
		}
		if timewindow.Overlaps(start, end, b.StartTime, b.EndTime) {
			return true
		}
	}

	for _, interval := range busy {
		if timewindow.Overlaps(start, end, interval.Start, interval.End) {
			return true
		}
	}

	return false
}

// countBookingsOnDay считает активные бронирования хоста в пределах локального дня
// Если eventTypeID задан, учитываются только бронирования этого типа события
func countBookingsOnDay(bookings []*domain.Booking, dayStart, dayEnd time.Time, eventTypeID *int64) int {
	count := 0
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		if eventTypeID != nil && b.EventTypeID != *eventTypeID {
			continue
		}
		if !b.StartTime.Before(dayStart) && b.StartTime.Before(dayEnd) {
			count++
		}
	}
	return count
}
