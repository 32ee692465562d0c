package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/rota-backend-go/internal/handler/http/response"
)

type CatalogHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type catalogHandlerImpl struct {
	catalogService roster.CatalogService
}

func NewCatalogHandler(catalogService roster.CatalogService) CatalogHandler {
	return &catalogHandlerImpl{
		catalogService: catalogService,
	}
}

// List handles GET /shift-catalog?active_only&org_id
func (h *catalogHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	req := roster.ListCatalogRequest{OrgID: r.URL.Query().Get("org_id")}
	if v := r.URL.Query().Get("active_only"); v != "" {
		activeOnly, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, "invalid active_only parameter", nil)
			return
		}
		req.ActiveOnly = activeOnly
	}

	types, err := h.catalogService.ListShiftCatalog(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, types)
}
