// Package scheduler runs the periodic expiration scan: secrets that recently
// expired or are about to expire produce notification jobs for their owners
// plus an audit record.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/avasilkov/keyvault/internal/logging"
	"github.com/avasilkov/keyvault/internal/server/mailer"
	"github.com/avasilkov/keyvault/internal/server/notifications"
	"github.com/avasilkov/keyvault/internal/server/secrets"
	"github.com/robfig/cron/v3"
)

const (
	// lookBehind bounds how far into the past a secret still triggers a
	// notification: recently expired secrets are reported for a week.
	lookBehind = 7 * 24 * time.Hour

	// emitDelay paces job emission so a large scan cannot overwhelm the
	// mail transport.
	emitDelay = 500 * time.Millisecond
)

type Scheduler struct {
	spec      string
	secrets   secrets.Repository
	audits    notifications.Repository
	queue     *mailer.Queue
	logger    logging.Logger
	cron      *cron.Cron
	emitDelay time.Duration
}

func New(spec string, secretRepo secrets.Repository, auditRepo notifications.Repository,
	queue *mailer.Queue, logger logging.Logger) *Scheduler {
	return &Scheduler{
		spec:      spec,
		secrets:   secretRepo,
		audits:    auditRepo,
		queue:     queue,
		logger:    logger.With("module", "expiry_scheduler"),
		emitDelay: emitDelay,
	}
}

// Run installs the cron entry and blocks until ctx is canceled, then stops
// the cron runner and waits for an in-flight tick to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(s.spec, func() {
		s.Tick(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid scheduler spec %q: %w", s.spec, err)
	}

	s.cron = c
	c.Start()
	s.logger.Info(ctx, "expiry scheduler started", "spec", s.spec)

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	s.logger.Info(ctx, "expiry scheduler stopped")

	return nil
}

// Tick performs one scan-and-enqueue pass. Errors are logged, never fatal:
// the scheduler must survive to the next tick.
func (s *Scheduler) Tick(ctx context.Context) {
	now := time.Now()

	expiring, err := s.secrets.ListExpiringWithOwner(ctx, now.Add(-lookBehind))
	if err != nil {
		s.logger.Error(ctx, "error querying expiring secrets", "error", err)
		return
	}

	for i := range expiring {
		sec := &expiring[i]

		s.queue.Enqueue(ctx, mailer.Job{
			Recipient: sec.Email,
			Subject:   "Key Expiration Notification",
			Body:      expiryMailBody(sec),
		})

		// Best-effort notification takes priority over best-effort
		// auditing: a failed insert does not stop the delivery.
		if _, err := s.audits.Create(ctx, sec.UserID, notifications.TypeKeyExpiration, auditMessage(sec, now)); err != nil {
			s.logger.Error(ctx, "error inserting notification record",
				"user_id", sec.UserID, "error", err)
		}

		if i < len(expiring)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.emitDelay):
			}
		}
	}

	s.logger.Info(ctx, "expiry scan finished", "matches", len(expiring))
}

func expiryMailBody(sec *secrets.ExpiringSecret) string {
	description := ""
	if sec.Description != nil {
		description = *sec.Description
	}

	return fmt.Sprintf(
		"Your key '%s'.\nType '%s' \nDescription: '%s' \nCreated on %s has expired on %s. \n\nPlease take action to renew or replace it.",
		sec.Name, sec.TypeName, description,
		sec.CreatedAt.Format("2006-01-02 15:04:05"),
		sec.ExpirationDate.Format("2006-01-02 15:04:05"),
	)
}

func auditMessage(sec *secrets.ExpiringSecret, now time.Time) string {
	if sec.ExpirationDate.After(now) {
		return fmt.Sprintf("Key '%s' is about to expire", sec.Name)
	}
	return fmt.Sprintf("Key '%s' expired", sec.Name)
}
