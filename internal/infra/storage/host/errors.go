package host

import "errors"

var (
	// ErrHostNotFound возвращается, когда хост не найден
	ErrHostNotFound = errors.New("host.repository: host not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("host.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("host.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("host.repository: failed to scan row")
)
