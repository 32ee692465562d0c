package roster

import (
	"context"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
)

// CatalogService passes the shift catalog through to the timesheet editor
type CatalogService interface {
	ListShiftCatalog(ctx context.Context, actor membership.Actor, req ListCatalogRequest) ([]ShiftTypeResponse, error)
}
