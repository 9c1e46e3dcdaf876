package hosts

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// HostRepository интерфейс репозитория хостов
type HostRepository interface {
	Create(ctx context.Context, h *domain.Host) (*domain.Host, error)
	GetByID(ctx context.Context, id int64) (*domain.Host, error)
	UpdateAvailability(ctx context.Context, hostID int64, availability domain.WeeklyAvailability) error
	Deactivate(ctx context.Context, hostID int64) error
}

// TransactionManager интерфейс для управления транзакциями
// Хост и его недельное расписание пишутся в разные таблицы
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
