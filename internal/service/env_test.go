package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"opscurator/internal/auth"
	"opscurator/internal/catalog"
	"opscurator/internal/domain"
	"opscurator/internal/executor"
	"opscurator/internal/repository"
	"opscurator/internal/service"
	"opscurator/internal/session"
)

type fakeMirror struct {
	mu      sync.Mutex
	upserts []domain.User
	err     error
}

func (m *fakeMirror) UpsertProfile(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.upserts = append(m.upserts, *user)
	return nil
}

func (m *fakeMirror) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *fakeMirror) last() domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts[len(m.upserts)-1]
}

type testEnv struct {
	repo      service.Repository
	mirror    *fakeMirror
	auth      *service.AuthService
	labs      *service.LabService
	progress  *service.ProgressService
	community *service.CommunityService
	admin     *service.AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	repo, err := repository.NewSQLiteRepository(filepath.Join(t.TempDir(), "svc.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	sessions, err := session.OpenInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })

	mirror := &fakeMirror{}
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	exec := executor.NewPatternExecutor(0, logger)

	env := &testEnv{
		repo:      repo,
		mirror:    mirror,
		auth:      service.NewAuthService(repo, sessions, tokens, mirror, []string{"Admin@Example.com"}, bcrypt.MinCost, logger),
		labs:      service.NewLabService(repo, exec, mirror, logger),
		progress:  service.NewProgressService(repo, mirror, logger),
		community: service.NewCommunityService(repo, logger),
		admin:     service.NewAdminService(repo),
	}

	labs, err := catalog.LoadEmbedded()
	require.NoError(t, err)
	require.NoError(t, env.labs.SeedCatalog(ctx, labs))
	return env
}

func (e *testEnv) register(t *testing.T, email string) *service.Session {
	t.Helper()
	sess, err := e.auth.Register(context.Background(), email, "secret123", "Tester")
	require.NoError(t, err)
	return sess
}

const bash1Solution = "#!/bin/bash\n\necho \"Hello DevOps!\" > hello.txt"
