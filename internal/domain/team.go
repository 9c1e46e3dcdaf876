package domain

// DistributionPolicy политика распределения слотов между участниками команды
type DistributionPolicy string

const (
	// DistributionPriority участники перебираются по возрастанию PriorityRank,
	// первый свободный получает слот
	DistributionPriority DistributionPolicy = "priority"

	// DistributionRoundRobin стартовый участник ротируется по счётчику
	// прошлых назначений, нагрузка распределяется равномерно
	DistributionRoundRobin DistributionPolicy = "round_robin"

	// DistributionAvailability участники упорядочиваются по наименьшему числу
	// бронирований в этот день (тай-брейк - PriorityRank)
	DistributionAvailability DistributionPolicy = "availability"
)

// IsValid returns true for a known distribution policy
func (d DistributionPolicy) IsValid() bool {
	switch d {
	case DistributionPriority, DistributionRoundRobin, DistributionAvailability:
		return true
	default:
		return false
	}
}

// TeamMember участник команды в рамках одного типа события
type TeamMember struct {
	HostID       int64
	PriorityRank int  // Полный порядок, используется политикой priority и как тай-брейк
	DailyCap     *int // Лимит бронирований участника в день (nil = без лимита)
}

// TeamSettings конфигурация командного типа события
type TeamSettings struct {
	Distribution DistributionPolicy
	Members      []TeamMember // Упорядочены по PriorityRank при загрузке из хранилища
}

// MemberByHostID возвращает участника команды по id хоста
func (t *TeamSettings) MemberByHostID(hostID int64) (TeamMember, bool) {
	for _, m := range t.Members {
		if m.HostID == hostID {
			return m, true
		}
	}
	return TeamMember{}, false
}
