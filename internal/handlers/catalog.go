// internal/handlers/catalog.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"visa-checker-backend/internal/catalog"
	"visa-checker-backend/internal/models"
	"visa-checker-backend/pkg/utils"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{
		catalog: cat,
	}
}

func (h *CatalogHandler) ListDestinations(w http.ResponseWriter, r *http.Request) {
	utils.SendJSONResponse(w, http.StatusOK, models.DestinationsResponse{
		Destinations: h.catalog.Destinations(),
	})
}

// GetRequirements answers unknown destinations with an empty list.
func (h *CatalogHandler) GetRequirements(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")
	visaType := chi.URLParam(r, "visaType")

	utils.SendJSONResponse(w, http.StatusOK, models.RequirementsResponse{
		Country:      country,
		VisaType:     visaType,
		Requirements: h.catalog.Lookup(country, visaType),
	})
}
