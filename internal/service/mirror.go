package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"opscurator/internal/domain"
)

// mirrorProfile pushes user to the hosted mirror, if any. The local store is
// authoritative, so failures are only logged; HealthService reports them.
func mirrorProfile(ctx context.Context, mirror ProfileMirror, user *domain.User, logger *zap.Logger) {
	if mirror == nil {
		return
	}
	if err := mirror.UpsertProfile(ctx, user); err != nil {
		logger.Warn("failed to mirror profile", zap.String("user_id", user.ID), zap.Error(err))
	}
}

// MirrorMonitor remembers the outcome of the most recent profile upsert.
type MirrorMonitor struct {
	ProfileMirror

	mu      sync.Mutex
	lastErr error
}

func NewMirrorMonitor(mirror ProfileMirror) *MirrorMonitor {
	return &MirrorMonitor{ProfileMirror: mirror}
}

func (m *MirrorMonitor) UpsertProfile(ctx context.Context, user *domain.User) error {
	err := m.ProfileMirror.UpsertProfile(ctx, user)
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
	return err
}

// LastUpsertError is nil until an upsert fails and again after one succeeds.
func (m *MirrorMonitor) LastUpsertError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}
