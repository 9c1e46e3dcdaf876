package hosts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	hostRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/host"
	"github.com/m04kA/SMC-SchedulingService/internal/service/hosts/models"
)

// --- fakes ---

type fakeHostRepo struct {
	byID   map[int64]*domain.Host
	nextID int64
}

func newFakeHostRepo() *fakeHostRepo {
	return &fakeHostRepo{byID: make(map[int64]*domain.Host)}
}

func (f *fakeHostRepo) Create(_ context.Context, h *domain.Host) (*domain.Host, error) {
	f.nextID++
	stored := *h
	stored.ID = f.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.byID[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeHostRepo) GetByID(_ context.Context, id int64) (*domain.Host, error) {
	h, ok := f.byID[id]
	if !ok {
		return nil, hostRepo.ErrHostNotFound
	}
	return h, nil
}

func (f *fakeHostRepo) UpdateAvailability(_ context.Context, hostID int64, availability domain.WeeklyAvailability) error {
	h, ok := f.byID[hostID]
	if !ok {
		return hostRepo.ErrHostNotFound
	}
	h.Availability = availability
	return nil
}

func (f *fakeHostRepo) Deactivate(_ context.Context, hostID int64) error {
	h, ok := f.byID[hostID]
	if !ok {
		return hostRepo.ErrHostNotFound
	}
	h.IsActive = false
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestService() (*Service, *fakeHostRepo) {
	repo := newFakeHostRepo()
	return NewService(repo, fakeTxManager{}, nopLogger{}), repo
}

func workweek() map[int][]models.WindowRequest {
	availability := make(map[int][]models.WindowRequest)
	for day := 1; day <= 5; day++ {
		availability[day] = []models.WindowRequest{{Start: "09:00", End: "17:00"}}
	}
	return availability
}

// --- tests ---

func TestService_Create(t *testing.T) {
	svc, repo := newTestService()

	resp, err := svc.Create(context.Background(), &models.CreateHostRequest{
		DisplayName:  "Анна Смирнова",
		Timezone:     "Europe/Moscow",
		Availability: workweek(),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "Анна Смирнова", resp.DisplayName)
	assert.Equal(t, "Europe/Moscow", resp.Timezone)
	assert.True(t, resp.IsActive)
	require.Len(t, resp.Availability[1], 1)
	assert.Equal(t, "09:00", resp.Availability[1][0].Start)
	assert.Equal(t, "17:00", resp.Availability[1][0].End)
	assert.Empty(t, resp.Availability[0])

	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
}

func TestService_Create_SplitDay(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.Create(context.Background(), &models.CreateHostRequest{
		DisplayName: "Борис",
		Timezone:    "UTC",
		Availability: map[int][]models.WindowRequest{
			3: {
				{Start: "09:00", End: "12:00"},
				{Start: "13:00", End: "17:00"},
			},
		},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Availability[3], 2)
}

func TestService_Create_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		req  *models.CreateHostRequest
	}{
		{
			name: "empty display name",
			req:  &models.CreateHostRequest{DisplayName: "   ", Timezone: "UTC"},
		},
		{
			name: "missing timezone",
			req:  &models.CreateHostRequest{DisplayName: "Анна"},
		},
		{
			name: "unknown timezone",
			req:  &models.CreateHostRequest{DisplayName: "Анна", Timezone: "Mars/Olympus"},
		},
		{
			name: "malformed window time",
			req: &models.CreateHostRequest{
				DisplayName: "Анна",
				Timezone:    "UTC",
				Availability: map[int][]models.WindowRequest{
					1: {{Start: "9am", End: "17:00"}},
				},
			},
		},
		{
			name: "window start after end",
			req: &models.CreateHostRequest{
				DisplayName: "Анна",
				Timezone:    "UTC",
				Availability: map[int][]models.WindowRequest{
					1: {{Start: "17:00", End: "09:00"}},
				},
			},
		},
		{
			name: "zero length window",
			req: &models.CreateHostRequest{
				DisplayName: "Анна",
				Timezone:    "UTC",
				Availability: map[int][]models.WindowRequest{
					1: {{Start: "09:00", End: "09:00"}},
				},
			},
		},
		{
			name: "overlapping windows same day",
			req: &models.CreateHostRequest{
				DisplayName: "Анна",
				Timezone:    "UTC",
				Availability: map[int][]models.WindowRequest{
					1: {
						{Start: "09:00", End: "13:00"},
						{Start: "12:00", End: "17:00"},
					},
				},
			},
		},
		{
			name: "weekday out of range",
			req: &models.CreateHostRequest{
				DisplayName: "Анна",
				Timezone:    "UTC",
				Availability: map[int][]models.WindowRequest{
					7: {{Start: "09:00", End: "17:00"}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService()
			_, err := svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestService_UpdateAvailability(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Create(context.Background(), &models.CreateHostRequest{
		DisplayName:  "Анна",
		Timezone:     "UTC",
		Availability: workweek(),
	})
	require.NoError(t, err)

	resp, err := svc.UpdateAvailability(context.Background(), created.ID, &models.UpdateAvailabilityRequest{
		Availability: map[int][]models.WindowRequest{
			6: {{Start: "10:00", End: "14:00"}},
		},
	})
	require.NoError(t, err)

	// Расписание заменяется целиком, рабочие дни пропадают
	assert.Empty(t, resp.Availability[1])
	require.Len(t, resp.Availability[6], 1)
	assert.Equal(t, "10:00", resp.Availability[6][0].Start)
}

func TestService_UpdateAvailability_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateAvailability(context.Background(), 404, &models.UpdateAvailabilityRequest{
		Availability: workweek(),
	})
	assert.ErrorIs(t, err, ErrHostNotFound)
}

func TestService_Deactivate(t *testing.T) {
	svc, repo := newTestService()

	created, err := svc.Create(context.Background(), &models.CreateHostRequest{
		DisplayName:  "Анна",
		Timezone:     "UTC",
		Availability: workweek(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), created.ID))

	stored, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	// Деактивированный хост остается читаемым
	resp, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
}

func TestService_Deactivate_NotFound(t *testing.T) {
	svc, _ := newTestService()

	err := svc.Deactivate(context.Background(), 404)
	assert.ErrorIs(t, err, ErrHostNotFound)
}

func TestService_GetByID_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrHostNotFound)
}
