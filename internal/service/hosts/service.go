package hosts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	hostRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/host"
	"github.com/m04kA/SMC-SchedulingService/internal/service/hosts/models"
)

const maxDisplayNameLength = 200

// Service сервис для работы с хостами
type Service struct {
	hostRepo  HostRepository
	txManager TransactionManager
	logger    Logger
}

// NewService создает новый экземпляр сервиса хостов
func NewService(hostRepo HostRepository, txManager TransactionManager, logger Logger) *Service {
	return &Service{
		hostRepo:  hostRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// Create создает нового хоста с недельным расписанием
func (s *Service) Create(ctx context.Context, req *models.CreateHostRequest) (*models.HostResponse, error) {
	s.logger.Info("Create: creating host displayName=%q", req.DisplayName)

	name := strings.TrimSpace(req.DisplayName)
	if err := s.validateHost(name, req.Timezone); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	availability, err := models.ToDomainAvailability(req.Availability)
	if err != nil {
		s.logger.Warn("Create: invalid availability: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.validateAvailability(availability); err != nil {
		s.logger.Warn("Create: invalid availability: %v", err)
		return nil, err
	}

	h := &domain.Host{
		DisplayName:  name,
		Timezone:     req.Timezone,
		IsActive:     true,
		Availability: availability,
	}

	// Хост и окна расписания пишутся в разные таблицы одной транзакцией
	var created *domain.Host
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		res, err := s.hostRepo.Create(txCtx, h)
		if err != nil {
			return err
		}
		created = res
		return nil
	})
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created host id=%d", created.ID)
	return models.FromDomainHost(created), nil
}

// GetByID получает хоста по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.HostResponse, error) {
	s.logger.Info("GetByID: fetching host id=%d", id)

	h, err := s.hostRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, hostRepo.ErrHostNotFound) {
			s.logger.Warn("GetByID: host id=%d not found", id)
			return nil, ErrHostNotFound
		}
		s.logger.Error("GetByID: repository error for host id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainHost(h), nil
}

// UpdateAvailability заменяет недельное расписание хоста целиком
// Уже созданные бронирования не пересматриваются
func (s *Service) UpdateAvailability(ctx context.Context, hostID int64, req *models.UpdateAvailabilityRequest) (*models.HostResponse, error) {
	s.logger.Info("UpdateAvailability: updating availability for host id=%d", hostID)

	availability, err := models.ToDomainAvailability(req.Availability)
	if err != nil {
		s.logger.Warn("UpdateAvailability: invalid availability for host id=%d: %v", hostID, err)
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.validateAvailability(availability); err != nil {
		s.logger.Warn("UpdateAvailability: invalid availability for host id=%d: %v", hostID, err)
		return nil, err
	}

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		return s.hostRepo.UpdateAvailability(txCtx, hostID, availability)
	})
	if err != nil {
		if errors.Is(err, hostRepo.ErrHostNotFound) {
			s.logger.Warn("UpdateAvailability: host id=%d not found", hostID)
			return nil, ErrHostNotFound
		}
		s.logger.Error("UpdateAvailability: repository error for host id=%d: %v", hostID, err)
		return nil, fmt.Errorf("%w: UpdateAvailability - repository error: %v", ErrInternal, err)
	}

	h, err := s.hostRepo.GetByID(ctx, hostID)
	if err != nil {
		s.logger.Error("UpdateAvailability: failed to reload host id=%d: %v", hostID, err)
		return nil, fmt.Errorf("%w: UpdateAvailability - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateAvailability: successfully updated availability for host id=%d", hostID)
	return models.FromDomainHost(h), nil
}

// Deactivate деактивирует хоста
// Хосты не удаляются: история бронирований должна оставаться читаемой
func (s *Service) Deactivate(ctx context.Context, hostID int64) error {
	s.logger.Info("Deactivate: deactivating host id=%d", hostID)

	err := s.hostRepo.Deactivate(ctx, hostID)
	if err != nil {
		if errors.Is(err, hostRepo.ErrHostNotFound) {
			s.logger.Warn("Deactivate: host id=%d not found", hostID)
			return ErrHostNotFound
		}
		s.logger.Error("Deactivate: repository error for host id=%d: %v", hostID, err)
		return fmt.Errorf("%w: Deactivate - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Deactivate: successfully deactivated host id=%d", hostID)
	return nil
}

// validateHost проверяет основные поля хоста
func (s *Service) validateHost(displayName, timezone string) error {
	if displayName == "" {
		return fmt.Errorf("%w: displayName is required", ErrValidation)
	}
	if len(displayName) > maxDisplayNameLength {
		return fmt.Errorf("%w: displayName must not exceed %d characters", ErrValidation, maxDisplayNameLength)
	}

	if timezone == "" {
		return fmt.Errorf("%w: timezone is required", ErrValidation)
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrValidation, timezone)
	}

	return nil
}

// validateAvailability проверяет окна недельного расписания
// Внутри одного дня окна не должны пересекаться
func (s *Service) validateAvailability(availability domain.WeeklyAvailability) error {
	for day := 0; day < 7; day++ {
		windows := availability[day]
		for i, w := range windows {
			if err := w.Start.Validate(); err != nil {
				return fmt.Errorf("%w: day %d: invalid window start: %v", ErrValidation, day, err)
			}
			if err := w.End.Validate(); err != nil {
				return fmt.Errorf("%w: day %d: invalid window end: %v", ErrValidation, day, err)
			}
			if !w.Start.IsBefore(w.End) {
				return fmt.Errorf("%w: day %d: window start must be before end", ErrValidation, day)
			}

			for j := 0; j < i; j++ {
				other := windows[j]
				if w.Start.IsBefore(other.End) && other.Start.IsBefore(w.End) {
					return fmt.Errorf("%w: day %d: overlapping availability windows", ErrValidation, day)
				}
			}
		}
	}

	return nil
}
