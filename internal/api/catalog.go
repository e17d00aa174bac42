// ABOUTME: Guarded product and color endpoints
// ABOUTME: Product descriptions are Markdown and are rendered to HTML in responses

package api

import (
	"bytes"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/nubarmory/internal/store"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ProductRequest is the JSON body for creating or replacing a product.
type ProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents"`
	Stock       int      `json:"stock"`
	Active      *bool    `json:"active,omitempty"`
	ColorIDs    []string `json:"color_ids"`
}

// ProductResponse is the JSON view of a product.
type ProductResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	DescriptionHTML string   `json:"description_html"`
	PriceCents      int64    `json:"price_cents"`
	Stock           int      `json:"stock"`
	Active          bool     `json:"active"`
	ColorIDs        []string `json:"color_ids"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

// ListProductsResponse is the JSON response for GET /api/admin/products.
type ListProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

// ColorRequest is the JSON body for POST /api/admin/colors.
type ColorRequest struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// ColorResponse is the JSON view of a color.
type ColorResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Hex       string `json:"hex"`
	CreatedAt string `json:"created_at"`
}

// ListColorsResponse is the JSON response for GET /api/admin/colors.
type ListColorsResponse struct {
	Colors []ColorResponse `json:"colors"`
}

func (req *ProductRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if req.PriceCents < 0 {
		return "price_cents must not be negative"
	}
	if req.Stock < 0 {
		return "stock must not be negative"
	}
	return ""
}

func (h *Handler) renderMarkdown(src string) string {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(src), &buf); err != nil {
		h.logger.Warn("failed to render description", "error", err)
		return ""
	}
	return buf.String()
}

func (h *Handler) toProductResponse(p *store.Product) ProductResponse {
	colorIDs := p.ColorIDs
	if colorIDs == nil {
		colorIDs = []string{}
	}
	return ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		DescriptionHTML: h.renderMarkdown(p.Description),
		PriceCents:      p.PriceCents,
		Stock:           p.Stock,
		Active:          p.Active,
		ColorIDs:        colorIDs,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
	}
}

func toColorResponse(c *store.Color) ColorResponse {
	return ColorResponse{
		ID:        c.ID,
		Name:      c.Name,
		Hex:       c.Hex,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

// handleListProducts handles GET /api/admin/products.
func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		h.sendInternalError(w, "failed to list products", err)
		return
	}

	resp := ListProductsResponse{Products: make([]ProductResponse, 0, len(products))}
	for _, p := range products {
		resp.Products = append(resp.Products, h.toProductResponse(p))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleCreateProduct handles POST /api/admin/products.
func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		h.sendJSONError(w, http.StatusBadRequest, msg)
		return
	}

	p := &store.Product{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		Active:      req.Active == nil || *req.Active,
		ColorIDs:    req.ColorIDs,
	}

	if err := h.store.CreateProduct(r.Context(), p); err != nil {
		if errors.Is(err, store.ErrUnknownColor) {
			h.sendJSONError(w, http.StatusBadRequest, "unknown color")
			return
		}
		h.sendInternalError(w, "failed to create product", err)
		return
	}

	h.logger.Info("product created", "id", p.ID, "admin_id", adminID(r))
	h.writeJSON(w, http.StatusCreated, h.toProductResponse(p))
}

// handleGetProduct handles GET /api/admin/products/{id}.
func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetProduct(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		h.sendJSONError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		h.sendInternalError(w, "failed to get product", err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.toProductResponse(p))
}

// handleUpdateProduct handles PUT /api/admin/products/{id}.
func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		h.sendJSONError(w, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()
	existing, err := h.store.GetProduct(ctx, r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		h.sendJSONError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		h.sendInternalError(w, "failed to get product", err)
		return
	}

	existing.Name = strings.TrimSpace(req.Name)
	existing.Description = req.Description
	existing.PriceCents = req.PriceCents
	existing.Stock = req.Stock
	if req.Active != nil {
		existing.Active = *req.Active
	}
	existing.ColorIDs = req.ColorIDs

	if err := h.store.UpdateProduct(ctx, existing); err != nil {
		switch {
		case errors.Is(err, store.ErrUnknownColor):
			h.sendJSONError(w, http.StatusBadRequest, "unknown color")
		case errors.Is(err, store.ErrNotFound):
			h.sendJSONError(w, http.StatusNotFound, "product not found")
		default:
			h.sendInternalError(w, "failed to update product", err, "id", existing.ID)
		}
		return
	}

	h.logger.Info("product updated", "id", existing.ID, "admin_id", adminID(r))
	h.writeJSON(w, http.StatusOK, h.toProductResponse(existing))
}

// handleDeleteProduct handles DELETE /api/admin/products/{id}.
func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.store.DeleteProduct(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.sendJSONError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		h.sendInternalError(w, "failed to delete product", err, "id", id)
		return
	}

	h.logger.Info("product deleted", "id", id, "admin_id", adminID(r))
	w.WriteHeader(http.StatusNoContent)
}

// handleListColors handles GET /api/admin/colors.
func (h *Handler) handleListColors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.store.ListColors(r.Context())
	if err != nil {
		h.sendInternalError(w, "failed to list colors", err)
		return
	}

	resp := ListColorsResponse{Colors: make([]ColorResponse, 0, len(colors))}
	for _, c := range colors {
		resp.Colors = append(resp.Colors, toColorResponse(c))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleCreateColor handles POST /api/admin/colors.
func (h *Handler) handleCreateColor(w http.ResponseWriter, r *http.Request) {
	var req ColorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		h.sendJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !hexColorRegex.MatchString(req.Hex) {
		h.sendJSONError(w, http.StatusBadRequest, "hex must look like #RRGGBB")
		return
	}

	c := &store.Color{
		ID:   uuid.New().String(),
		Name: name,
		Hex:  strings.ToUpper(req.Hex),
	}
	if err := h.store.CreateColor(r.Context(), c); err != nil {
		if errors.Is(err, store.ErrColorNameExists) {
			h.sendJSONError(w, http.StatusConflict, "color name already exists")
			return
		}
		h.sendInternalError(w, "failed to create color", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toColorResponse(c))
}

// handleDeleteColor handles DELETE /api/admin/colors/{id}.
func (h *Handler) handleDeleteColor(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.store.DeleteColor(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.sendJSONError(w, http.StatusNotFound, "color not found")
		return
	}
	if err != nil {
		h.sendInternalError(w, "failed to delete color", err, "id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
