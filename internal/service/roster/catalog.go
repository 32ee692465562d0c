package roster

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/roster"
)

type catalogServiceImpl struct {
	catalogRepo roster.ShiftCatalogRepository
}

func NewCatalogService(catalogRepo roster.ShiftCatalogRepository) roster.CatalogService {
	return &catalogServiceImpl{catalogRepo: catalogRepo}
}

// ListShiftCatalog implements roster.CatalogService. Only platform admins may
// read another organisation's catalog.
func (s *catalogServiceImpl) ListShiftCatalog(ctx context.Context, actor membership.Actor, req roster.ListCatalogRequest) ([]roster.ShiftTypeResponse, error) {
	orgID := actor.OrgID
	if req.OrgID != "" && req.OrgID != actor.OrgID {
		if !actor.IsAdmin() {
			return nil, membership.ErrForbidden
		}
		orgID = req.OrgID
	}
	if orgID == "" {
		return nil, membership.ErrMembershipNotFound
	}

	types, err := s.catalogRepo.ListShiftCatalog(ctx, orgID, req.ActiveOnly)
	if err != nil {
		return nil, fmt.Errorf("list shift catalog: %w", err)
	}

	resp := make([]roster.ShiftTypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, roster.NewShiftTypeResponse(t))
	}
	return resp, nil
}
