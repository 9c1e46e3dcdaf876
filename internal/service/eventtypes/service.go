package eventtypes

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	eventTypeRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/eventtype"
	"github.com/m04kA/SMC-SchedulingService/internal/service/eventtypes/models"
)

// Service сервис для работы с типами событий
type Service struct {
	eventTypeRepo EventTypeRepository
	hostRepo      HostRepository
	txManager     TransactionManager
	logger        Logger
}

// NewService создает новый экземпляр сервиса типов событий
func NewService(
	eventTypeRepo EventTypeRepository,
	hostRepo HostRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		eventTypeRepo: eventTypeRepo,
		hostRepo:      hostRepo,
		txManager:     txManager,
		logger:        logger,
	}
}

// Create создает новый тип события
// Некорректная конфигурация отклоняется здесь, на записи: запрос доступности
// работает только с уже валидными типами событий
func (s *Service) Create(ctx context.Context, req *models.CreateEventTypeRequest) (*models.EventTypeResponse, error) {
	s.logger.Info("Create: creating event type title=%q", req.Title)

	et := req.ToDomain()

	// 1. Валидируем конфигурацию
	if err := s.validateEventType(et); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем существование всех хостов конфигурации
	if err := s.checkHostsExist(ctx, et.HostIDs()); err != nil {
		return nil, err
	}

	// 3. Тип события, участники команды и состояние ротации
	// создаются в одной транзакции
	var created *domain.EventType
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		res, err := s.eventTypeRepo.Create(txCtx, et)
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

	s.logger.Info("Create: successfully created event type id=%d", created.ID)
	return models.FromDomainEventType(created), nil
}

// GetByID получает тип события по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.EventTypeResponse, error) {
	s.logger.Info("GetByID: fetching event type id=%d", id)

	et, err := s.eventTypeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, eventTypeRepo.ErrEventTypeNotFound) {
			s.logger.Warn("GetByID: event type id=%d not found", id)
			return nil, ErrEventTypeNotFound
		}
		s.logger.Error("GetByID: repository error for event type id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainEventType(et), nil
}

// Update обновляет тип события
// Конфигурация валидируется так же, как при создании
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateEventTypeRequest) (*models.EventTypeResponse, error) {
	s.logger.Info("Update: updating event type id=%d", id)

	existing, err := s.eventTypeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, eventTypeRepo.ErrEventTypeNotFound) {
			s.logger.Warn("Update: event type id=%d not found", id)
			return nil, ErrEventTypeNotFound
		}
		s.logger.Error("Update: repository error for event type id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	et := req.ToDomain()
	et.ID = existing.ID

	if err := s.validateEventType(et); err != nil {
		s.logger.Warn("Update: validation failed for event type id=%d: %v", id, err)
		return nil, err
	}

	if err := s.checkHostsExist(ctx, et.HostIDs()); err != nil {
		return nil, err
	}

	var updated *domain.EventType
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		res, err := s.eventTypeRepo.Update(txCtx, et)
		if err != nil {
			return err
		}
		updated = res
		return nil
	})
	if err != nil {
		if errors.Is(err, eventTypeRepo.ErrEventTypeNotFound) {
			return nil, ErrEventTypeNotFound
		}
		s.logger.Error("Update: repository error for event type id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully updated event type id=%d", id)
	return models.FromDomainEventType(updated), nil
}

// validateEventType проверяет инварианты конфигурации типа события
func (s *Service) validateEventType(et *domain.EventType) error {
	if et.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(et.Title) > domain.MaxTitleLength {
		return fmt.Errorf("%w: title must not exceed %d characters", ErrValidation, domain.MaxTitleLength)
	}

	if et.DurationMinutes < domain.MinDurationMinutes || et.DurationMinutes > domain.MaxDurationMinutes {
		return fmt.Errorf("%w: durationMinutes must be between %d and %d",
			ErrValidation, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}

	if et.SlotIntervalMinutes < domain.MinSlotIntervalMinutes || et.SlotIntervalMinutes > domain.MaxSlotIntervalMinutes {
		return fmt.Errorf("%w: slotIntervalMinutes must be between %d and %d",
			ErrValidation, domain.MinSlotIntervalMinutes, domain.MaxSlotIntervalMinutes)
	}

	if et.BufferBeforeMinutes < 0 || et.BufferBeforeMinutes > domain.MaxBufferMinutes ||
		et.BufferAfterMinutes < 0 || et.BufferAfterMinutes > domain.MaxBufferMinutes {
		return fmt.Errorf("%w: buffers must be between 0 and %d minutes", ErrValidation, domain.MaxBufferMinutes)
	}

	if et.MinNoticeMinutes < 0 || et.MinNoticeMinutes > domain.MaxNoticeMinutes {
		return fmt.Errorf("%w: minNoticeMinutes must be between 0 and %d", ErrValidation, domain.MaxNoticeMinutes)
	}

	if et.MaxAdvanceMinutes < 0 || et.MaxAdvanceMinutes > domain.MaxAdvanceMinutes {
		return fmt.Errorf("%w: maxAdvanceMinutes must be between 0 and %d", ErrValidation, domain.MaxAdvanceMinutes)
	}

	// maxAdvance = 0 означает "без горизонта", сравнение не требуется
	if et.MaxAdvanceMinutes > 0 && et.MinNoticeMinutes > et.MaxAdvanceMinutes {
		return fmt.Errorf("%w: minNoticeMinutes must not exceed maxAdvanceMinutes", ErrValidation)
	}

	if et.MaxPerDay != nil && *et.MaxPerDay <= 0 {
		return fmt.Errorf("%w: maxPerDay must be positive", ErrValidation)
	}

	// Ровно один владелец: либо один хост, либо команда
	if et.Team == nil && et.HostID == nil {
		return fmt.Errorf("%w: either hostId or team is required", ErrValidation)
	}
	if et.Team != nil && et.HostID != nil {
		return fmt.Errorf("%w: hostId and team are mutually exclusive", ErrValidation)
	}

	if et.Team != nil {
		return s.validateTeam(et.Team)
	}

	if *et.HostID <= 0 {
		return fmt.Errorf("%w: hostId must be positive", ErrValidation)
	}

	return nil
}

// validateTeam проверяет конфигурацию команды
func (s *Service) validateTeam(team *domain.TeamSettings) error {
	if !team.Distribution.IsValid() {
		return fmt.Errorf("%w: unknown distribution policy %q", ErrValidation, team.Distribution)
	}

	if len(team.Members) == 0 {
		return fmt.Errorf("%w: team must have at least one member", ErrValidation)
	}
	if len(team.Members) > domain.MaxTeamMembers {
		return fmt.Errorf("%w: team must not exceed %d members", ErrValidation, domain.MaxTeamMembers)
	}

	seen := make(map[int64]struct{}, len(team.Members))
	for _, m := range team.Members {
		if m.HostID <= 0 {
			return fmt.Errorf("%w: member hostId must be positive", ErrValidation)
		}
		if _, ok := seen[m.HostID]; ok {
			return fmt.Errorf("%w: duplicate team member hostId=%d", ErrValidation, m.HostID)
		}
		seen[m.HostID] = struct{}{}

		if m.DailyCap != nil && *m.DailyCap <= 0 {
			return fmt.Errorf("%w: member dailyCap must be positive", ErrValidation)
		}
	}

	return nil
}

// checkHostsExist проверяет, что все хосты конфигурации существуют
func (s *Service) checkHostsExist(ctx context.Context, ids []int64) error {
	hosts, err := s.hostRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("checkHostsExist: repository error: %v", err)
		return fmt.Errorf("%w: failed to get hosts: %v", ErrInternal, err)
	}

	found := make(map[int64]struct{}, len(hosts))
	for _, h := range hosts {
		found[h.ID] = struct{}{}
	}

	for _, id := range ids {
		if _, ok := found[id]; !ok {
			s.logger.Warn("checkHostsExist: host id=%d not found", id)
			return ErrHostNotFound
		}
	}

	return nil
}
