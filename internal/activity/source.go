// Package activity retrieves raw wallet activity from swap data providers.
package activity

import (
	"context"

	"degenscore-lab/internal/domain"
)

// Source retrieves the full swap activity history for one wallet. The
// records come back provider-ordered; downstream extraction re-sorts them.
type Source interface {
	WalletActivities(ctx context.Context, wallet string) ([]domain.RawActivity, error)
}
