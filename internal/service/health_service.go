package service

import (
	"context"
	"fmt"
	"os"
	"time"
)

type HealthStatus string

const (
	StatusOK          HealthStatus = "ok"
	StatusDegraded    HealthStatus = "degraded"
	StatusUnavailable HealthStatus = "unavailable"
)

type HealthCheckResponse struct {
	Status    HealthStatus      `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

type pinger interface {
	Ping(ctx context.Context) error
}

type upsertReporter interface {
	LastUpsertError() error
}

type HealthService struct {
	repo    pinger
	mirror  ProfileMirror
	dataDir string
}

// NewHealthService checks the database and that dataDir accepts writes.
// mirror may be nil when no hosted backend is configured.
func NewHealthService(repo pinger, mirror ProfileMirror, dataDir string) *HealthService {
	return &HealthService{
		repo:    repo,
		mirror:  mirror,
		dataDir: dataDir,
	}
}

func (s *HealthService) CheckHealth(ctx context.Context) HealthCheckResponse {
	checks := make(map[string]string)
	aggregatedStatus := StatusOK

	degrade := func() {
		if aggregatedStatus == StatusOK {
			aggregatedStatus = StatusDegraded
		}
	}

	// database is critical
	if err := s.repo.Ping(ctx); err != nil {
		checks["database"] = "error: " + err.Error()
		aggregatedStatus = StatusUnavailable
	} else {
		checks["database"] = "ok"
	}

	if err := s.checkDiskWritable(); err != nil {
		checks["disk"] = "error: " + err.Error()
		degrade()
	} else {
		checks["disk"] = "ok"
	}

	if s.mirror != nil {
		if err := s.checkMirror(ctx); err != nil {
			checks["hosted"] = "error: " + err.Error()
			degrade()
		} else {
			checks["hosted"] = "ok"
		}
	}

	return HealthCheckResponse{
		Status:    aggregatedStatus,
		Checks:    checks,
		Timestamp: time.Now().UTC(),
	}
}

func (s *HealthService) checkMirror(ctx context.Context) error {
	if err := s.mirror.Ping(ctx); err != nil {
		return err
	}
	if r, ok := s.mirror.(upsertReporter); ok {
		if err := r.LastUpsertError(); err != nil {
			return fmt.Errorf("last profile upsert failed: %w", err)
		}
	}
	return nil
}

func (s *HealthService) checkDiskWritable() error {
	f, err := os.CreateTemp(s.dataDir, ".healthcheck-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	return f.Close()
}
