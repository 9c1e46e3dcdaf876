package timewindow

import "time"

// Window полуоткрытый временной интервал [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

// Duration возвращает длительность окна
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// IsValid возвращает true, если конец окна строго позже начала
func (w Window) IsValid() bool {
	return w.End.After(w.Start)
}

// Contains возвращает true, если окно other целиком лежит внутри w
func (w Window) Contains(other Window) bool {
	return !other.Start.Before(w.Start) && !other.End.After(w.End)
}

// Overlaps проверяет пересечение двух полуоткрытых интервалов [aStart, aEnd) и [bStart, bEnd)
// Используются строгие неравенства: граничащие интервалы НЕ пересекаются
//
// Примеры:
// - [11:30, 12:00) и [11:20, 11:40) → пересекаются
// - [11:30, 12:00) и [11:00, 11:30) → НЕ пересекаются (граничат)
// - [11:30, 12:00) и [12:00, 12:30) → НЕ пересекаются (граничат)
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// OverlapsAny возвращает true, если интервал [start, end) пересекается хотя бы с одним из окон
func OverlapsAny(start, end time.Time, windows []Window) bool {
	for _, w := range windows {
		if Overlaps(start, end, w.Start, w.End) {
			return true
		}
	}
	return false
}

// Slice нарезает окно [windowStart, windowEnd) на слоты длительностью slotDuration
// с шагом slotInterval: windowStart, windowStart+interval, windowStart+2*interval, ...
// Слот попадает в результат, только если целиком помещается в окно.
// Если slotDuration больше окна, возвращается пустой список.
func Slice(windowStart, windowEnd time.Time, slotDuration, slotInterval time.Duration) []Window {
	if slotDuration <= 0 || slotInterval <= 0 {
		return nil
	}
	if !windowEnd.After(windowStart) {
		return nil
	}

	slots := make([]Window, 0)
	for start := windowStart; !start.Add(slotDuration).After(windowEnd); start = start.Add(slotInterval) {
		slots = append(slots, Window{Start: start, End: start.Add(slotDuration)})
	}

	return slots
}
