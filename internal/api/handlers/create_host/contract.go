package create_host

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/service/hosts/models"
)

type HostService interface {
	Create(ctx context.Context, req *models.CreateHostRequest) (*models.HostResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
