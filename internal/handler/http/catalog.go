package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/vfgl/storefront/pkg/errors"
	"github.com/vfgl/storefront/pkg/httpclient"
	"github.com/vfgl/storefront/pkg/httputil"

	"github.com/vfgl/storefront/internal/catalog"
	"github.com/vfgl/storefront/internal/domain"
)

// CatalogHandler serves the read-only catalog routes through the cached
// catalog client, preserving the commerce API envelopes.
type CatalogHandler struct {
	catalog catalog.Client
	logger  *slog.Logger
}

// NewCatalogHandler creates the catalog HTTP handler.
func NewCatalogHandler(c catalog.Client, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: c,
		logger:  logger,
	}
}

type productsEnvelope struct {
	Products []domain.Product `json:"products"`
}

type categoriesEnvelope struct {
	Categories []domain.Category `json:"categories"`
}

// ListProducts handles GET /api/products.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.GetProducts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, productsEnvelope{Products: emptyIfNil(products)})
}

// GetProduct handles GET /api/products/{id}. A missing product is an
// absence: a plain 404, not an internal failure.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.catalog.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Product not found")
			return
		}
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}

// ListCategories handles GET /api/categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.GetCategories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	httputil.WriteJSON(w, http.StatusOK, categoriesEnvelope{Categories: categories})
}

// ProductsByCategory handles GET /api/categories/{name}/products.
func (h *CatalogHandler) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	products, err := h.catalog.GetProductsByCategory(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, productsEnvelope{Products: emptyIfNil(products)})
}

// SearchProducts handles GET /api/search?q=. Queries shorter than two
// characters match nothing.
func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	products, err := catalog.Search(r.Context(), h.catalog, query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, productsEnvelope{Products: emptyIfNil(products)})
}

// writeError relays upstream failures verbatim and maps everything else to
// the fixed 500 shape.
func (h *CatalogHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var upErr *httpclient.UpstreamError
	if errors.As(err, &upErr) {
		relay(w, upErr.Status, upErr.Body)
		return
	}

	h.logger.ErrorContext(r.Context(), "catalog request failed",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
	writeDetail(w, http.StatusInternalServerError, detailInternalError)
}

func emptyIfNil(products []domain.Product) []domain.Product {
	if products == nil {
		return []domain.Product{}
	}
	return products
}
