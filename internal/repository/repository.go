package repository

import (
	"context"

	"shareaudit/internal/domain"
	"shareaudit/internal/recon"
)

// Sink persists the results of a single run
type Sink interface {
	// SaveReport writes the whole report in one transaction
	SaveReport(ctx context.Context, report *recon.Report) error

	// Permissions reads back the permission table ordered by path then principal
	Permissions(ctx context.Context) ([]domain.PermissionRecord, error)

	// Close releases resources
	Close() error
}
