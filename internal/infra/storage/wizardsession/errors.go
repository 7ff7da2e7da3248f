package wizardsession

import "errors"

var (
	// ErrSnapshotNotFound возвращается, когда снапшот сессии не найден
	ErrSnapshotNotFound = errors.New("wizardsession.repository: snapshot not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("wizardsession.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("wizardsession.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("wizardsession.repository: failed to scan row")
)
