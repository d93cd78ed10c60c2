package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/iqube/internal/logging"
	"github.com/dmitrijs2005/iqube/internal/server/repositories/repomanager"
)

// ConnectionStatus is the test_connection payload.
type ConnectionStatus struct {
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	ServerTime time.Time `json:"serverTime"`
}

type SystemService struct {
	repomanager   repomanager.RepositoryManager
	serverName    string
	serverVersion string
	log           logging.Logger
	now           func() time.Time
}

func NewSystemService(m repomanager.RepositoryManager, serverName, serverVersion string, log logging.Logger) *SystemService {
	return &SystemService{
		repomanager:   m,
		serverName:    serverName,
		serverVersion: serverVersion,
		log:           log.With("module", "services"),
		now:           time.Now,
	}
}

// TestConnection round-trips to the store and reports both clocks.
func (s *SystemService) TestConnection(ctx context.Context) (*ConnectionStatus, error) {
	serverTime, err := s.repomanager.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("error pinging store: %w", err)
	}

	return &ConnectionStatus{
		Status:     "connected",
		Message:    fmt.Sprintf("%s %s is connected to the database", s.serverName, s.serverVersion),
		Timestamp:  s.now().UTC(),
		ServerTime: serverTime,
	}, nil
}

// InitializeSchema creates missing tables and indexes.
func (s *SystemService) InitializeSchema(ctx context.Context) (*repomanager.SchemaReport, error) {
	report, err := s.repomanager.EnsureSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}
	s.log.Info(ctx, "schema ensured", "applied", report.AppliedVersions, "version", report.CurrentVersion)
	return report, nil
}
