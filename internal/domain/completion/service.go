package completion

import (
	"context"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
)

type CompletionService interface {
	SiteProgress(ctx context.Context, actor membership.Actor, req ProgressRequest) (Progress, error)
	OrganizationProgress(ctx context.Context, actor membership.Actor, req ProgressRequest) (Progress, error)
}
