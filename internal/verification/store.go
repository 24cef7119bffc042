package verification

import "context"

// Store persists verification requests and audit records. Requests are kept
// so operators can correlate later verify calls; audit records are
// append-only. Implementations return sentinel.ErrNotFound (wrapped) on miss.
type Store interface {
	SaveRequest(ctx context.Context, request VerificationRequest) error
	GetRequest(ctx context.Context, contextID string) (VerificationRequest, error)
	SaveAuditRecord(ctx context.Context, record AuditRecord) error
	GetAuditRecord(ctx context.Context, auditRecordID string) (AuditRecord, error)
}
