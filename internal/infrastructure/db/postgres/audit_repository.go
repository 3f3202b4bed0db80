package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

// AuditRepository appends account events to the account_events table.
type AuditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AccountEvent) error {
	actor := sql.NullInt64{Int64: event.ActorID, Valid: event.ActorID != 0}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO account_events (type, account_id, username, actor_id, at) VALUES ($1, $2, $3, $4, $5)`,
		string(event.Type), event.AccountID, event.Username, actor, event.At.UTC())
	if err != nil {
		return fmt.Errorf("insert account event: %w", err)
	}
	return nil
}
