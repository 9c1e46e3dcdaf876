package eventtypes

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// EventTypeRepository интерфейс репозитория типов событий
type EventTypeRepository interface {
	Create(ctx context.Context, et *domain.EventType) (*domain.EventType, error)
	GetByID(ctx context.Context, id int64) (*domain.EventType, error)
	Update(ctx context.Context, et *domain.EventType) (*domain.EventType, error)
}

// HostRepository интерфейс репозитория хостов
type HostRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Host, error)
}

// TransactionManager интерфейс для управления транзакциями
// Создание типа события пишет в несколько таблиц и должно быть атомарным
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
