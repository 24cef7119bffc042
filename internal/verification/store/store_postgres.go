package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"anchorid/internal/verification"
	"anchorid/pkg/platform/sentinel"
)

// Postgres persists requests and audit records as JSONB documents keyed by
// their ids. Schema lives in migrations.sql.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) SaveRequest(ctx context.Context, request verification.VerificationRequest) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal verification request: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO verification_requests (context_id, anchor_tx_hash, body, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (context_id) DO UPDATE SET anchor_tx_hash = $2, body = $3`,
		request.Context.ID, string(request.AnchorTransactionHash), body, request.Context.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save verification request: %w", err)
	}
	return nil
}

func (p *Postgres) GetRequest(ctx context.Context, contextID string) (verification.VerificationRequest, error) {
	var body []byte
	err := p.pool.QueryRow(ctx,
		`SELECT body FROM verification_requests WHERE context_id = $1`, contextID,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return verification.VerificationRequest{}, fmt.Errorf("verification request %s: %w", contextID, sentinel.ErrNotFound)
	}
	if err != nil {
		return verification.VerificationRequest{}, fmt.Errorf("get verification request: %w", err)
	}

	var request verification.VerificationRequest
	if err := json.Unmarshal(body, &request); err != nil {
		return verification.VerificationRequest{}, fmt.Errorf("unmarshal verification request: %w", err)
	}
	return request, nil
}

func (p *Postgres) SaveAuditRecord(ctx context.Context, record verification.AuditRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO audit_records (audit_record_id, result, body, verified_at)
		 VALUES ($1, $2, $3, $4)`,
		record.AuditRecordID, string(record.Result), body, record.VerifiedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique violation. Audit records are append-only.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("audit record %s: %w", record.AuditRecordID, sentinel.ErrConflict)
		}
		return fmt.Errorf("save audit record: %w", err)
	}
	return nil
}

func (p *Postgres) GetAuditRecord(ctx context.Context, auditRecordID string) (verification.AuditRecord, error) {
	var body []byte
	err := p.pool.QueryRow(ctx,
		`SELECT body FROM audit_records WHERE audit_record_id = $1`, auditRecordID,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return verification.AuditRecord{}, fmt.Errorf("audit record %s: %w", auditRecordID, sentinel.ErrNotFound)
	}
	if err != nil {
		return verification.AuditRecord{}, fmt.Errorf("get audit record: %w", err)
	}

	var record verification.AuditRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return verification.AuditRecord{}, fmt.Errorf("unmarshal audit record: %w", err)
	}
	return record, nil
}
