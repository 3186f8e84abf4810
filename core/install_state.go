package core

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"
)

const defaultInstallStateTTL = 15 * time.Minute

type InstallStateRecord struct {
	State       string
	RedirectURI string
	Scopes      []string
	Metadata    map[string]any
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

type MemoryInstallStateStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]InstallStateRecord
}

func NewMemoryInstallStateStore(ttl time.Duration) *MemoryInstallStateStore {
	if ttl <= 0 {
		ttl = defaultInstallStateTTL
	}
	return &MemoryInstallStateStore{
		ttl:     ttl,
		entries: map[string]InstallStateRecord{},
	}
}

func (s *MemoryInstallStateStore) Save(_ context.Context, record InstallStateRecord) error {
	if s == nil {
		return fmt.Errorf("core: install state store is not configured")
	}
	state := strings.TrimSpace(record.State)
	if state == "" {
		return fmt.Errorf("core: install state is required")
	}

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.ExpiresAt.IsZero() {
		record.ExpiresAt = record.CreatedAt.Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[state] = cloneInstallStateRecord(record)
	s.mu.Unlock()

	return nil
}

func (s *MemoryInstallStateStore) Consume(_ context.Context, state string) (InstallStateRecord, error) {
	if s == nil {
		return InstallStateRecord{}, fmt.Errorf("core: install state store is not configured")
	}
	state = strings.TrimSpace(state)
	if state == "" {
		return InstallStateRecord{}, fmt.Errorf("core: install state is required")
	}

	s.mu.Lock()
	record, ok := s.entries[state]
	if ok {
		delete(s.entries, state)
	}
	s.mu.Unlock()

	if !ok {
		return InstallStateRecord{}, fmt.Errorf("core: install state not found")
	}
	if !record.ExpiresAt.IsZero() && time.Now().UTC().After(record.ExpiresAt) {
		return InstallStateRecord{}, fmt.Errorf("core: install state expired")
	}

	return cloneInstallStateRecord(record), nil
}

func generateInstallState() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("core: generate install state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func cloneInstallStateRecord(record InstallStateRecord) InstallStateRecord {
	cloned := record
	cloned.Scopes = append([]string(nil), record.Scopes...)
	if record.Metadata == nil {
		cloned.Metadata = map[string]any{}
	} else {
		cloned.Metadata = copyAnyMap(record.Metadata)
	}
	return cloned
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
