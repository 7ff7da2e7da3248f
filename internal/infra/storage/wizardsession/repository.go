package wizardsession

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/pkg/psqlbuilder"
)

// SnapshotRecord сохраненный снапшот сессии мастера
// Payload - сериализованная проекция состояния; схема payload принадлежит
// сервису сессий, репозиторий хранит его как непрозрачный JSON.
type SnapshotRecord struct {
	SessionID string
	UserID    int64
	Payload   []byte
	UpdatedAt time.Time
}

// Repository репозиторий снапшотов сессий мастера
//
// Снапшоты - операционная видимость (последнее состояние сессии переживает
// рестарт процесса для диагностики), не источник истины: живое состояние
// сессии держится в памяти контроллера.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория снапшотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert сохраняет снапшот сессии, заменяя предыдущий
func (r *Repository) Upsert(ctx context.Context, record SnapshotRecord) error {
	query, args, err := psqlbuilder.Insert("wizard_session_snapshots").
		Columns("session_id", "user_id", "payload", "updated_at").
		Values(record.SessionID, record.UserID, record.Payload, record.UpdatedAt).
		Suffix("ON CONFLICT (session_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// GetByID получает снапшот сессии по идентификатору
// Используется диагностическим инструментарием; сервис сессий читает живое
// состояние из памяти.
func (r *Repository) GetByID(ctx context.Context, sessionID string) (*SnapshotRecord, error) {
	query, args, err := psqlbuilder.Select("session_id", "user_id", "payload", "updated_at").
		From("wizard_session_snapshots").
		Where("session_id = ?", sessionID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var record SnapshotRecord
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&record.SessionID,
		&record.UserID,
		&record.Payload,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("%w: GetByID - scan row: %v", ErrScanRow, err)
	}
	return &record, nil
}

// Delete удаляет снапшот сессии
func (r *Repository) Delete(ctx context.Context, sessionID string) error {
	query, args, err := psqlbuilder.Delete("wizard_session_snapshots").
		Where("session_id = ?", sessionID).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}
	return nil
}

// DeleteStale удаляет снапшоты, не обновлявшиеся с указанного момента
// Возвращает число удаленных записей.
func (r *Repository) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	query, args, err := psqlbuilder.Delete("wizard_session_snapshots").
		Where("updated_at < ?", olderThan).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteStale - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteStale - execute delete: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteStale - rows affected: %v", ErrExecQuery, err)
	}
	return affected, nil
}
