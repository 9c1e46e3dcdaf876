package deactivate_host

import "context"

type HostService interface {
	Deactivate(ctx context.Context, hostID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
