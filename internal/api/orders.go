// ABOUTME: Guarded order endpoints for listing, inspecting and advancing orders
// ABOUTME: Orders are created by the storefront; admins only read them and change status

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2389/nubarmory/internal/auth"
	"github.com/2389/nubarmory/internal/store"
)

// OrderItemResponse is one line of an order.
type OrderItemResponse struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	ColorID        string `json:"color_id,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// OrderResponse is the JSON view of an order.
type OrderResponse struct {
	ID            string              `json:"id"`
	CustomerEmail string              `json:"customer_email"`
	CustomerName  string              `json:"customer_name"`
	TotalCents    int64               `json:"total_cents"`
	Status        string              `json:"status"`
	Custom        bool                `json:"custom"`
	Notes         string              `json:"notes,omitempty"`
	Items         []OrderItemResponse `json:"items,omitempty"`
	CreatedAt     string              `json:"created_at"`
	UpdatedAt     string              `json:"updated_at"`
}

// ListOrdersResponse is the JSON response for GET /api/admin/orders.
type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}

// UpdateOrderStatusRequest is the JSON body for PATCH /api/admin/orders/{id}/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

func toOrderResponse(o *store.Order) OrderResponse {
	resp := OrderResponse{
		ID:            o.ID,
		CustomerEmail: o.CustomerEmail,
		CustomerName:  o.CustomerName,
		TotalCents:    o.TotalCents,
		Status:        string(o.Status),
		Custom:        o.Custom,
		Notes:         o.Notes,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     o.UpdatedAt.Format(time.RFC3339),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			ColorID:        item.ColorID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return resp
}

// handleListOrders handles GET /api/admin/orders?status=X&limit=N.
func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	var filter store.OrderFilter

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = store.OrderStatus(s)
		if !filter.Status.Valid() {
			h.sendJSONError(w, http.StatusBadRequest, "invalid status")
			return
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			h.sendJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	orders, err := h.store.ListOrders(r.Context(), filter)
	if err != nil {
		h.sendInternalError(w, "failed to list orders", err)
		return
	}

	resp := ListOrdersResponse{Orders: make([]OrderResponse, 0, len(orders))}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(o))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleGetOrder handles GET /api/admin/orders/{id}.
func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.store.GetOrder(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		h.sendJSONError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		h.sendInternalError(w, "failed to get order", err)
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// handleUpdateOrderStatus handles PATCH /api/admin/orders/{id}/status.
func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id := r.PathValue("id")
	err := h.store.UpdateOrderStatus(r.Context(), id, store.OrderStatus(req.Status))
	switch {
	case errors.Is(err, store.ErrInvalidStatus):
		h.sendJSONError(w, http.StatusBadRequest, "invalid status")
		return
	case errors.Is(err, store.ErrNotFound):
		h.sendJSONError(w, http.StatusNotFound, "order not found")
		return
	case err != nil:
		h.sendInternalError(w, "failed to update order status", err, "id", id)
		return
	}

	o, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		h.sendInternalError(w, "failed to reload order", err, "id", id)
		return
	}

	h.logger.Info("order status changed", "id", id, "status", req.Status, "admin_id", adminID(r))
	h.writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// adminID returns the guard-verified admin for logging.
func adminID(r *http.Request) string {
	return auth.MustFromContext(r.Context()).ID
}
