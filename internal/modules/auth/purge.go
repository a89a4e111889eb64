package auth

import (
	"context"
	"log/slog"

	"github.com/delordemm1/dealer-dashboard/internal/metrics"
)

// PurgeJob deletes stale credentials. It satisfies schedule.Job.
type PurgeJob struct {
	credentials   *Credentials
	retentionDays int
	metrics       *metrics.Auth
	log           *slog.Logger
}

func NewPurgeJob(credentials *Credentials, retentionDays int, m *metrics.Auth, log *slog.Logger) *PurgeJob {
	return &PurgeJob{credentials: credentials, retentionDays: retentionDays, metrics: m, log: log}
}

func (j *PurgeJob) Name() string { return "credential_purge" }

func (j *PurgeJob) Run(ctx context.Context) error {
	res, err := j.credentials.PurgeExpired(ctx, j.retentionDays)
	if err != nil {
		return err
	}
	j.metrics.Purged("codes", res.CodesDeleted)
	j.metrics.Purged("magic_links", res.MagicLinksDeleted)
	j.log.Info("credentials purged",
		"codes_deleted", res.CodesDeleted,
		"magic_links_deleted", res.MagicLinksDeleted,
		"total_deleted", res.Total(),
	)
	return nil
}
