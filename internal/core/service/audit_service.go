package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/primeshop/account-service/internal/api/metrics"
	"github.com/primeshop/account-service/internal/core/domain"
	"github.com/primeshop/account-service/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that persists security events.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists a single security event and updates the trail counters.
func (s *auditService) Record(ctx context.Context, event domain.SecurityEvent) error {
	if err := s.repo.Insert(ctx, &event); err != nil {
		metrics.AuditErrorsTotal.Inc()
		return fmt.Errorf("record security event: %w", err)
	}

	metrics.AuditEventsTotal.WithLabelValues(string(event.Type)).Inc()
	s.log.Debug().
		Str("type", string(event.Type)).
		Str("username", event.Username).
		Msg("security event recorded")
	return nil
}
