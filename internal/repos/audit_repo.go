package repos

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"storelaunch/internal/domain"
)

type AuditRepo struct{ q sqlx.ExtContext }

func NewAuditRepo(q sqlx.ExtContext) *AuditRepo { return &AuditRepo{q: q} }

func (r *AuditRepo) Record(ctx context.Context, userID, action, entityType, entityID string, details map[string]any) error {
	raw := ""
	if len(details) > 0 {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		raw = string(b)
	}
	_, err := r.q.ExecContext(ctx, `
	  INSERT INTO audit_logs(user_id, action, entity_type, entity_id, details) VALUES(?,?,?,?,?)`,
		userID, action, entityType, entityID, raw)
	return err
}

func (r *AuditRepo) Latest(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 200
	}
	out := []domain.AuditEntry{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
	  SELECT id, user_id, action, entity_type, entity_id, details, created_at
	  FROM audit_logs ORDER BY id DESC LIMIT ?`, limit)
	return out, err
}
