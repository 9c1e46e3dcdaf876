package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

func teamPairUseCase(
	policy domain.DistributionPolicy,
	bookings []*domain.Booking,
	busy map[int64][]domain.BusyInterval,
	rotation int64,
	members ...domain.TeamMember,
) *UseCase {
	if len(members) == 0 {
		members = []domain.TeamMember{
			{HostID: 10, PriorityRank: 1},
			{HostID: 20, PriorityRank: 2},
		}
	}

	hosts := make([]*domain.Host, 0, len(members))
	names := map[int64]string{10: "Анна", 20: "Борис", 30: "Вера"}
	for _, m := range members {
		hosts = append(hosts, workdayHost(m.HostID, names[m.HostID]))
	}

	uc := newTestUseCase(
		&mockBookingRepo{bookings: bookings},
		&mockEventTypeRepo{eventType: teamEventType(policy, members...), rotation: rotation},
		&mockHostRepo{hosts: hosts},
		&mockCalendarClient{busy: busy},
		monday.Add(7*time.Hour),
	)
	return uc
}

func TestTeam_PriorityAssignsTopRank(t *testing.T) {
	uc := teamPairUseCase(domain.DistributionPriority, nil, nil, 0)

	resp, err := uc.Execute(context.Background(), mondayRequest())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)

	// Оба свободны на каждом слоте: всё уходит участнику с рангом 1
	for _, s := range resp.Slots {
		assert.Equal(t, int64(10), s.HostID)
	}
}

func TestTeam_PriorityFallsBackWhenBusy(t *testing.T) {
	busy := map[int64][]domain.BusyInterval{
		10: {{Start: monday.Add(10 * time.Hour), End: monday.Add(11 * time.Hour)}},
	}
	uc := teamPairUseCase(domain.DistributionPriority, nil, busy, 0)

	resp, err := uc.Execute(context.Background(), mondayRequest())
	require.NoError(t, err)

	byStart := make(map[time.Time]int64, len(resp.Slots))
	for _, s := range resp.Slots {
		byStart[s.Start] = s.HostID
	}

	// Пока ранг-1 занят, слоты получает ранг-2; слоты не пропадают
	assert.Equal(t, int64(20), byStart[monday.Add(10*time.Hour)])
	assert.Equal(t, int64(20), byStart[monday.Add(10*time.Hour+30*time.Minute)])
	assert.Equal(t, int64(10), byStart[monday.Add(11*time.Hour)])
}

func TestTeam_SlotDroppedWhenNobodyFree(t *testing.T) {
	busy := map[int64][]domain.BusyInterval{
		10: {{Start: monday.Add(10 * time.Hour), End: monday.Add(10*time.Hour + 30*time.Minute)}},
		20: {{Start: monday.Add(10 * time.Hour), End: monday.Add(10*time.Hour + 30*time.Minute)}},
	}
	uc := teamPairUseCase(domain.DistributionPriority, nil, busy, 0)

	resp, err := uc.Execute(context.Background(), mondayRequest())
	require.NoError(t, err)

	for _, s := range resp.Slots {
		assert.NotEqual(t, monday.Add(10*time.Hour), s.Start, "slot without a free host must be dropped")
	}
}

func TestTeam_RoundRobinRotatesStart(t *testing.T) {
	// rotation=0: опрос начинается с ранга 1; rotation=1: с ранга 2
	for _, tc := range []struct {
		rotation int64
		wantHost int64
	}{
		{rotation: 0, wantHost: 10},
		{rotation: 1, wantHost: 20},
		{rotation: 2, wantHost: 10},
	} {
		uc := teamPairUseCase(domain.DistributionRoundRobin, nil, nil, tc.rotation)

		resp, err := uc.Execute(context.Background(), mondayRequest())
		require.NoError(t, err)
		require.NotEmpty(t, resp.Slots)

		for _, s := range resp.Slots {
			assert.Equal(t, tc.wantHost, s.HostID, "rotation=%d", tc.rotation)
		}
	}
}

func TestTeam_RoundRobinFallsThrough(t *testing.T) {
	busy := map[int64][]domain.BusyInterval{
		20: {{Start: monday.Add(9 * time.Hour), End: monday.Add(17 * time.Hour)}},
	}
	uc := teamPairUseCase(domain.DistributionRoundRobin, nil, busy, 1)

	resp, err := uc.Execute(context.Background(), mondayRequest())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)

	// Стартовый участник занят весь день: слоты достаются следующему
	for _, s := range resp.Slots {
		assert.Equal(t, int64(10), s.HostID)
	}
}

func TestTeam_AvailabilityPrefersLeastLoaded(t *testing.T) {
	// У ранга 1 два бронирования в этот день, у ранга 2 ни одного
	existing := []*domain.Booking{
		{ID: 1, EventTypeID: 1, HostID: 10, StartTime: monday.Add(9 * time.Hour), EndTime: monday.Add(9*time.Hour + 30*time.Minute), Status: domain.StatusConfirmed},
		{ID: 2, EventTypeID: 1, HostID: 10, StartTime: monday.Add(12 * time.Hour), EndTime: monday.Add(12*time.Hour + 30*time.Minute), Status: domain.StatusConfirmed},
	}
	uc := teamPairUseCase(domain.DistributionAvailability, existing, nil, 0)

	resp, err := uc.Execute(context.Background(), mondayRequest())
	require.NoError(t, err)

	byStart := make(map[time.Time]int64, len(resp.Slots))
	for _, s := range resp.Slots {
		byStart[s.Start] = s.HostID
	}

	assert.Equal(t, int64(20), byStart[monday.Add(10*time.Hour)])
}

func TestTeam_AvailabilityTieBreaksByRank(t *testing.T) {
	uc := teamPairUseCase(domain.DistributionAvailability, nil, nil, 0)

	resp, err := uc.Execute(context.Background(), mondayRequest())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)

	// Нагрузка равна: тай-брейк по приоритету
	for _, s := range resp.Slots {
		assert.Equal(t, int64(10), s.HostID)
	}
}

func TestTeam_MemberDailyCap(t *testing.T) {
	members := []domain.TeamMember{
		{HostID: 10, PriorityRank: 1, DailyCap: ptr.Ptr(1)},
		{HostID: 20, PriorityRank: 2},
	}
	existing := []*domain.Booking{
		{ID: 1, EventTypeID: 1, HostID: 10, StartTime: monday.Add(9 * time.Hour), EndTime: monday.Add(9*time.Hour + 30*time.Minute), Status: domain.StatusConfirmed},
	}
	uc := teamPairUseCase(domain.DistributionPriority, existing, nil, 0, members...)

	resp, err := uc.Execute(context.Background(), mondayRequest())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)

	// Лимит ранга 1 выбран: все оставшиеся слоты у ранга 2
	for _, s := range resp.Slots {
		assert.Equal(t, int64(20), s.HostID)
	}
}

func TestTeam_MemberScheduleRespected(t *testing.T) {
	// У Бориса укороченный день: после 12:00 может только Анна
	members := []domain.TeamMember{
		{HostID: 20, PriorityRank: 1},
		{HostID: 10, PriorityRank: 2},
	}

	hosts := []*domain.Host{workdayHost(10, "Анна")}
	boris := &domain.Host{ID: 20, DisplayName: "Борис", Timezone: "UTC", IsActive: true}
	boris.Availability[time.Monday] = []domain.AvailabilityWindow{
		{Start: types.TimeString("09:00"), End: types.TimeString("12:00")},
	}
	hosts = append(hosts, boris)

	uc := newTestUseCase(
		&mockBookingRepo{},
		&mockEventTypeRepo{eventType: teamEventType(domain.DistributionPriority, members...)},
		&mockHostRepo{hosts: hosts},
		&mockCalendarClient{},
		monday.Add(7*time.Hour),
	)

	resp, err := uc.Execute(context.Background(), mondayRequest())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)

	for _, s := range resp.Slots {
		if !s.Start.Before(monday.Add(12 * time.Hour)) {
			assert.Equal(t, int64(10), s.HostID, "slot %s is outside Boris's hours", s.Start)
		} else {
			assert.Equal(t, int64(20), s.HostID, "slot %s should go to rank 1", s.Start)
		}
	}
}

func TestTeam_DeactivatedMemberSkipped(t *testing.T) {
	members := []domain.TeamMember{
		{HostID: 10, PriorityRank: 1},
		{HostID: 20, PriorityRank: 2},
	}

	anna := workdayHost(10, "Анна")
	anna.IsActive = false

	uc := newTestUseCase(
		&mockBookingRepo{},
		&mockEventTypeRepo{eventType: teamEventType(domain.DistributionPriority, members...)},
		&mockHostRepo{hosts: []*domain.Host{anna, workdayHost(20, "Борис")}},
		&mockCalendarClient{},
		monday.Add(7*time.Hour),
	)

	resp, err := uc.Execute(context.Background(), mondayRequest())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)

	for _, s := range resp.Slots {
		assert.Equal(t, int64(20), s.HostID)
	}
}
