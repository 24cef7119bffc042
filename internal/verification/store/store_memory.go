// Package store persists verification requests and audit records. The
// in-memory implementation backs tests and single-binary runs; the postgres
// implementation backs deployments.
package store

import (
	"context"
	"fmt"
	"sync"

	"anchorid/internal/verification"
	"anchorid/pkg/platform/sentinel"
)

// Memory is a mutex-guarded map store.
type Memory struct {
	mu       sync.RWMutex
	requests map[string]verification.VerificationRequest
	records  map[string]verification.AuditRecord
}

func NewMemory() *Memory {
	return &Memory{
		requests: make(map[string]verification.VerificationRequest),
		records:  make(map[string]verification.AuditRecord),
	}
}

func (m *Memory) SaveRequest(_ context.Context, request verification.VerificationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[request.Context.ID] = request
	return nil
}

func (m *Memory) GetRequest(_ context.Context, contextID string) (verification.VerificationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	request, ok := m.requests[contextID]
	if !ok {
		return verification.VerificationRequest{}, fmt.Errorf("verification request %s: %w", contextID, sentinel.ErrNotFound)
	}
	return request, nil
}

func (m *Memory) SaveAuditRecord(_ context.Context, record verification.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[record.AuditRecordID]; exists {
		return fmt.Errorf("audit record %s: %w", record.AuditRecordID, sentinel.ErrConflict)
	}
	m.records[record.AuditRecordID] = record
	return nil
}

func (m *Memory) GetAuditRecord(_ context.Context, auditRecordID string) (verification.AuditRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[auditRecordID]
	if !ok {
		return verification.AuditRecord{}, fmt.Errorf("audit record %s: %w", auditRecordID, sentinel.ErrNotFound)
	}
	return record, nil
}
