package eventtype

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

var eventTypeColumns = []string{
	"id",
	"host_id",
	"title",
	"duration_minutes",
	"buffer_before_minutes",
	"buffer_after_minutes",
	"slot_interval_minutes",
	"min_notice_minutes",
	"max_advance_minutes",
	"max_per_day",
	"requires_confirmation",
	"is_team",
	"distribution",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с типами событий и командными настройками
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория типов событий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает тип события вместе с участниками команды и состоянием ротации
// Вызывается внутри транзакции, чтобы тип события и команда появились атомарно
func (r *Repository) Create(ctx context.Context, et *domain.EventType) (*domain.EventType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var distribution *string
	if et.Team != nil {
		d := string(et.Team.Distribution)
		distribution = &d
	}

	query, args, err := psqlbuilder.Insert("event_types").
		Columns(
			"host_id",
			"title",
			"duration_minutes",
			"buffer_before_minutes",
			"buffer_after_minutes",
			"slot_interval_minutes",
			"min_notice_minutes",
			"max_advance_minutes",
			"max_per_day",
			"requires_confirmation",
			"is_team",
			"distribution",
		).
		Values(
			et.HostID,
			et.Title,
			et.DurationMinutes,
			et.BufferBeforeMinutes,
			et.BufferAfterMinutes,
			et.SlotIntervalMinutes,
			et.MinNoticeMinutes,
			et.MaxAdvanceMinutes,
			et.MaxPerDay,
			et.RequiresConfirmation,
			et.Team != nil,
			distribution,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&et.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	et.CreatedAt = createdAt.Time
	et.UpdatedAt = updatedAt.Time

	if et.Team != nil {
		if err := r.replaceMembers(ctx, executor, et.ID, et.Team.Members); err != nil {
			return nil, err
		}
		if err := r.initRotationState(ctx, executor, et.ID); err != nil {
			return nil, err
		}
	}

	return et, nil
}

// GetByID получает тип события по ID вместе с командными настройками
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.EventType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(eventTypeColumns...).
		From("event_types").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		et           domain.EventType
		isTeam       bool
		distribution sql.NullString
		createdAt    sql.NullTime
		updatedAt    sql.NullTime
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&et.ID,
		&et.HostID,
		&et.Title,
		&et.DurationMinutes,
		&et.BufferBeforeMinutes,
		&et.BufferAfterMinutes,
		&et.SlotIntervalMinutes,
		&et.MinNoticeMinutes,
		&et.MaxAdvanceMinutes,
		&et.MaxPerDay,
		&et.RequiresConfirmation,
		&isTeam,
		&distribution,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrEventTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan event type: %v", ErrScanRow, err)
	}

	et.CreatedAt = createdAt.Time
	et.UpdatedAt = updatedAt.Time

	if isTeam {
		members, err := r.getMembers(ctx, executor, et.ID)
		if err != nil {
			return nil, err
		}
		et.Team = &domain.TeamSettings{
			Distribution: domain.DistributionPolicy(distribution.String),
			Members:      members,
		}
	}

	return &et, nil
}

// Update обновляет тип события и пересоздаёт состав команды
func (r *Repository) Update(ctx context.Context, et *domain.EventType) (*domain.EventType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var distribution *string
	if et.Team != nil {
		d := string(et.Team.Distribution)
		distribution = &d
	}

	query, args, err := psqlbuilder.Update("event_types").
		Set("title", et.Title).
		Set("duration_minutes", et.DurationMinutes).
		Set("buffer_before_minutes", et.BufferBeforeMinutes).
		Set("buffer_after_minutes", et.BufferAfterMinutes).
		Set("slot_interval_minutes", et.SlotIntervalMinutes).
		Set("min_notice_minutes", et.MinNoticeMinutes).
		Set("max_advance_minutes", et.MaxAdvanceMinutes).
		Set("max_per_day", et.MaxPerDay).
		Set("requires_confirmation", et.RequiresConfirmation).
		Set("is_team", et.Team != nil).
		Set("distribution", distribution).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": et.ID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return nil, ErrEventTypeNotFound
	}

	if et.Team != nil {
		if err := r.replaceMembers(ctx, executor, et.ID, et.Team.Members); err != nil {
			return nil, err
		}
		if err := r.initRotationState(ctx, executor, et.ID); err != nil {
			return nil, err
		}
	}

	return r.GetByID(ctx, et.ID)
}

// GetRotationCounter читает счётчик ротации round-robin для типа события
// Внутри транзакции строка блокируется (FOR UPDATE), чтобы конкурирующие
// коммиты не прочитали одинаковое значение счётчика
func (r *Repository) GetRotationCounter(ctx context.Context, eventTypeID int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("counter").
		From("team_rotation_state").
		Where(squirrel.Eq{"event_type_id": eventTypeID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: GetRotationCounter - build select query: %v", ErrBuildQuery, err)
	}

	var counter int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&counter)
	if err == sql.ErrNoRows {
		// Состояние ротации создаётся вместе с командным типом события;
		// отсутствие строки означает, что тип события не командный
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: GetRotationCounter - scan counter: %v", ErrScanRow, err)
	}

	return counter, nil
}

// IncrementRotationCounter увеличивает счётчик ротации на единицу
// Вызывается в той же транзакции, что и вставка бронирования, поэтому
// справедливость ротации переживает перезапуски процесса
func (r *Repository) IncrementRotationCounter(ctx context.Context, eventTypeID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("team_rotation_state").
		Set("counter", squirrel.Expr("counter + 1")).
		Where(squirrel.Eq{"event_type_id": eventTypeID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: IncrementRotationCounter - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: IncrementRotationCounter - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// getMembers загружает участников команды, упорядоченных по приоритету
func (r *Repository) getMembers(ctx context.Context, executor DBExecutor, eventTypeID int64) ([]domain.TeamMember, error) {
	query, args, err := psqlbuilder.Select("host_id", "priority_rank", "daily_cap").
		From("team_members").
		Where(squirrel.Eq{"event_type_id": eventTypeID}).
		OrderBy("priority_rank ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getMembers - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getMembers - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	members := make([]domain.TeamMember, 0)
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.HostID, &m.PriorityRank, &m.DailyCap); err != nil {
			return nil, fmt.Errorf("%w: getMembers - scan row: %v", ErrScanRow, err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getMembers - rows error: %v", ErrScanRow, err)
	}

	return members, nil
}

// replaceMembers пересоздаёт состав команды
func (r *Repository) replaceMembers(ctx context.Context, executor DBExecutor, eventTypeID int64, members []domain.TeamMember) error {
	deleteQuery, deleteArgs, err := psqlbuilder.Delete("team_members").
		Where(squirrel.Eq{"event_type_id": eventTypeID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: replaceMembers - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: replaceMembers - execute delete: %v", ErrExecQuery, err)
	}

	insertBuilder := psqlbuilder.Insert("team_members").
		Columns("event_type_id", "host_id", "priority_rank", "daily_cap")

	for _, m := range members {
		insertBuilder = insertBuilder.Values(eventTypeID, m.HostID, m.PriorityRank, m.DailyCap)
	}

	insertQuery, insertArgs, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: replaceMembers - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("%w: replaceMembers - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// initRotationState создает строку счётчика ротации, если её ещё нет
func (r *Repository) initRotationState(ctx context.Context, executor DBExecutor, eventTypeID int64) error {
	query, args, err := psqlbuilder.Insert("team_rotation_state").
		Columns("event_type_id", "counter").
		Values(eventTypeID, 0).
		Suffix("ON CONFLICT (event_type_id) DO NOTHING").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: initRotationState - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: initRotationState - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}
