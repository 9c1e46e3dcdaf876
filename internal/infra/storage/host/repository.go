package host

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

// Repository репозиторий для работы с хостами и их недельным расписанием
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория хостов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает хоста вместе с окнами недельного расписания
func (r *Repository) Create(ctx context.Context, h *domain.Host) (*domain.Host, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("hosts").
		Columns("display_name", "timezone", "is_active").
		Values(h.DisplayName, h.Timezone, h.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&h.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	h.CreatedAt = createdAt.Time
	h.UpdatedAt = updatedAt.Time

	if err := r.replaceAvailability(ctx, executor, h.ID, h.Availability); err != nil {
		return nil, err
	}

	return h, nil
}

// GetByID получает хоста по ID вместе с недельным расписанием
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Host, error) {
	hosts, err := r.GetByIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(hosts) == 0 {
		return nil, ErrHostNotFound
	}
	return hosts[0], nil
}

// GetByIDs получает хостов по списку ID вместе с недельными расписаниями
// Порядок результата соответствует порядку переданных ID; неизвестные ID
// просто отсутствуют в результате
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Host, error) {
	if len(ids) == 0 {
		return []*domain.Host{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "display_name", "timezone", "is_active", "created_at", "updated_at").
		From("hosts").
		Where(squirrel.Eq{"id": ids}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	byID := make(map[int64]*domain.Host, len(ids))
	for rows.Next() {
		var h domain.Host
		var createdAt, updatedAt sql.NullTime

		if err := rows.Scan(&h.ID, &h.DisplayName, &h.Timezone, &h.IsActive, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: GetByIDs - scan row: %v", ErrScanRow, err)
		}

		h.CreatedAt = createdAt.Time
		h.UpdatedAt = updatedAt.Time
		byID[h.ID] = &h
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - rows error: %v", ErrScanRow, err)
	}

	if err := r.loadAvailability(ctx, executor, byID); err != nil {
		return nil, err
	}

	hosts := make([]*domain.Host, 0, len(byID))
	for _, id := range ids {
		if h, ok := byID[id]; ok {
			hosts = append(hosts, h)
		}
	}

	return hosts, nil
}

// UpdateAvailability заменяет недельное расписание хоста
func (r *Repository) UpdateAvailability(ctx context.Context, hostID int64, availability domain.WeeklyAvailability) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	// Проверяем существование хоста
	if _, err := r.GetByID(ctx, hostID); err != nil {
		return err
	}

	if err := r.replaceAvailability(ctx, executor, hostID, availability); err != nil {
		return err
	}

	query, args, err := psqlbuilder.Update("hosts").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": hostID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateAvailability - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpdateAvailability - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// Deactivate деактивирует хоста
// Хосты никогда не удаляются физически: история бронирований ссылается на них
func (r *Repository) Deactivate(ctx context.Context, hostID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("hosts").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": hostID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Deactivate - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Deactivate - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Deactivate - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrHostNotFound
	}

	return nil
}

// loadAvailability загружает окна недельного расписания для набора хостов
func (r *Repository) loadAvailability(ctx context.Context, executor DBExecutor, byID map[int64]*domain.Host) error {
	if len(byID) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	query, args, err := psqlbuilder.Select("host_id", "weekday", "start_time", "end_time").
		From("host_availability").
		Where(squirrel.Eq{"host_id": ids}).
		OrderBy("host_id ASC", "weekday ASC", "start_time ASC").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: loadAvailability - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadAvailability - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			hostID  int64
			weekday int
			window  domain.AvailabilityWindow
		)

		if err := rows.Scan(&hostID, &weekday, &window.Start, &window.End); err != nil {
			return fmt.Errorf("%w: loadAvailability - scan row: %v", ErrScanRow, err)
		}

		if h, ok := byID[hostID]; ok && weekday >= 0 && weekday < 7 {
			h.Availability[weekday] = append(h.Availability[weekday], window)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadAvailability - rows error: %v", ErrScanRow, err)
	}

	return nil
}

// replaceAvailability пересоздаёт окна недельного расписания хоста
func (r *Repository) replaceAvailability(ctx context.Context, executor DBExecutor, hostID int64, availability domain.WeeklyAvailability) error {
	deleteQuery, deleteArgs, err := psqlbuilder.Delete("host_availability").
		Where(squirrel.Eq{"host_id": hostID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: replaceAvailability - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: replaceAvailability - execute delete: %v", ErrExecQuery, err)
	}

	insertBuilder := psqlbuilder.Insert("host_availability").
		Columns("host_id", "weekday", "start_time", "end_time")

	hasWindows := false
	for weekday, windows := range availability {
		for _, w := range windows {
			insertBuilder = insertBuilder.Values(hostID, weekday, w.Start, w.End)
			hasWindows = true
		}
	}

	// Пустое расписание - допустимое состояние (хост временно недоступен)
	if !hasWindows {
		return nil
	}

	insertQuery, insertArgs, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: replaceAvailability - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("%w: replaceAvailability - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}
