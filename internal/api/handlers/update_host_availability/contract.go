package update_host_availability

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/service/hosts/models"
)

type HostService interface {
	UpdateAvailability(ctx context.Context, hostID int64, req *models.UpdateAvailabilityRequest) (*models.HostResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
