package get_available_slots

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/timewindow"
)

// teamResolver назначает хоста на каждый слот-кандидат командного события
// Проверка конфликтов выполняется по-участнику в момент назначения, потому что
// набор конфликтов у каждого участника свой - отдельный глобальный проход
// фильтрации здесь невозможен
type teamResolver struct {
	eventType      *domain.EventType
	hostsByID      map[int64]*domain.Host
	locsByHost     map[int64]*time.Location
	bookingsByHost map[int64][]*domain.Booking
	busyByHost     map[int64][]domain.BusyInterval

	// memberSlots кандидаты каждого участника (по unix-времени начала слота):
	// участник может получить слот, только если его собственное расписание
	// этот слот порождает
	memberSlots map[int64]map[int64]struct{}

	// rotation персистентный счётчик прошлых назначений для round-robin
	rotation int64
}

// assign возвращает id хоста для слота
// Если ни один участник не подходит, слот отбрасывается целиком - слот без
// хоста никогда не попадает в результат
func (r *teamResolver) assign(slot timewindow.Window) (int64, bool) {
	for _, m := range r.orderedMembers(slot) {
		if r.qualifies(m, slot) {
			return m.HostID, true
		}
	}
	return 0, false
}

// orderedMembers возвращает участников в порядке опроса для слота
// согласно политике распределения
func (r *teamResolver) orderedMembers(slot timewindow.Window) []domain.TeamMember {
	members := make([]domain.TeamMember, len(r.eventType.Team.Members))
	copy(members, r.eventType.Team.Members)

	// Участники загружаются из хранилища упорядоченными по PriorityRank,
	// но сортируем явно - политики опираются на этот порядок
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].PriorityRank < members[j].PriorityRank
	})

	switch r.eventType.Team.Distribution {
	case domain.DistributionPriority:
		return members

	case domain.DistributionRoundRobin:
		// Стартовый участник ротируется по счётчику прошлых назначений,
		// внутри одного прохода участники перебираются в ротированном
		// порядке, пока не найдётся свободный
		n := int64(len(members))
		offset := int(r.rotation % n)
		rotated := make([]domain.TeamMember, 0, n)
		rotated = append(rotated, members[offset:]...)
		rotated = append(rotated, members[:offset]...)
		return rotated

	case domain.DistributionAvailability:
		// Меньше бронирований в этот день - выше в очереди;
		// тай-брейк по приоритету сохраняется стабильной сортировкой
		counts := make(map[int64]int, len(members))
		for _, m := range members {
			counts[m.HostID] = r.dayBookingCount(m.HostID, slot.Start, nil)
		}
		sort.SliceStable(members, func(i, j int) bool {
			return counts[members[i].HostID] < counts[members[j].HostID]
		})
		return members

	default:
		return members
	}
}

// qualifies проверяет, может ли участник получить слот
func (r *teamResolver) qualifies(m domain.TeamMember, slot timewindow.Window) bool {
	host, ok := r.hostsByID[m.HostID]
	if !ok || !host.IsActive {
		return false
	}

	// Слот должен порождаться расписанием самого участника
	slots, ok := r.memberSlots[m.HostID]
	if !ok {
		return false
	}
	if _, ok := slots[slot.Start.Unix()]; !ok {
		return false
	}

	// Дневной лимит участника в рамках этого типа события
	if m.DailyCap != nil && *m.DailyCap > 0 {
		if r.dayBookingCount(m.HostID, slot.Start, &r.eventType.ID) >= *m.DailyCap {
			return false
		}
	}

	// Конфликты с бронированиями и внешней занятостью участника
	if conflictsWith(slot.Start, slot.End, r.bookingsByHost[m.HostID], r.busyByHost[m.HostID]) {
		return false
	}

	return true
}

// dayBookingCount считает активные бронирования участника в его локальный день,
// содержащий момент t
func (r *teamResolver) dayBookingCount(hostID int64, t time.Time, eventTypeID *int64) int {
	loc, ok := r.locsByHost[hostID]
	if !ok {
		loc = time.UTC
	}

	local := t.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	return countBookingsOnDay(r.bookingsByHost[hostID], dayStart, dayEnd, eventTypeID)
}
