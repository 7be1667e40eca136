// Package catalogapi serves the storefront catalog and admin API over an in-memory catalog.
package catalogapi

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/abgdnv/storefront/internal/admin"
	"github.com/abgdnv/storefront/internal/analytics"
	"github.com/abgdnv/storefront/internal/catalog"
	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/filter"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// pageEnvelope is the paginated listing returned when the request carries a page parameter.
type pageEnvelope struct {
	Products   []catalog.Product `json:"products"`
	Page       int               `json:"page"`
	TotalCount int               `json:"totalCount"`
	TotalPages int               `json:"totalPages"`
	HasMore    bool              `json:"hasMore"`
}

type roleUpdateDto struct {
	Role admin.Role `json:"role" validate:"required,oneof=user admin"`
}

type Handler struct {
	products  ProductStore
	directory *Directory
	tokens    *TokenMaker
	recorder  *analytics.Recorder
	validate  *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandler builds the API handler. A nil recorder drops product change events.
func NewHandler(products ProductStore, directory *Directory, tokens *TokenMaker, recorder *analytics.Recorder, logger *slog.Logger) *Handler {
	if recorder == nil {
		recorder = analytics.NewRecorder(nil, logger)
	}
	return &Handler{
		products:  products,
		directory: directory,
		tokens:    tokens,
		recorder:  recorder,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger.With("component", "catalogapi"),
		now:       time.Now,
	}
}

// RegisterRoutes registers the public catalog routes and the admin routes under /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.FindByID)

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin(h.tokens, h.logger))

			r.Get("/dashboard/stats", h.Stats)

			r.Get("/products", h.ListProducts)
			r.Post("/products", h.CreateProduct)
			r.Put("/products/{id}", h.UpdateProduct)
			r.Delete("/products/{id}", h.DeleteProduct)

			r.Get("/orders", h.Orders)
			r.Put("/orders/{id}/status", h.UpdateOrderStatus)

			r.Get("/users", h.Users)
			r.Put("/users/{id}/role", h.UpdateUserRole)
			r.Delete("/users/{id}", h.DeleteUser)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// ListProducts filters the catalog. With a page parameter it answers with a
// paginated envelope, without one it returns the legacy bare array.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	spec, err := filter.FromValues(query)
	if err == nil {
		err = spec.Validate()
	}
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid product filter", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if !query.Has("page") {
		list, _, err := h.products.Find(r.Context(), Query{Filter: spec})
		if err != nil {
			h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
			web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
			return
		}
		web.RespondJSON(w, h.logger, http.StatusOK, list)
		return
	}

	page := web.QueryInt(query, "page", 1, 1, math.MaxInt32)
	limit := web.QueryInt(query, "limit", catalog.DefaultPageSize, 1, catalog.MaxPageSize)
	skip := (page - 1) * limit
	list, total, err := h.products.Find(r.Context(), Query{Filter: spec, Skip: skip, Limit: limit})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product page", "page", page, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(r.Context(), "Served product page", "page", page, "limit", limit, "count", len(list), "total", total)
	web.RespondJSON(w, h.logger, http.StatusOK, pageEnvelope{
		Products:   list,
		Page:       page,
		TotalCount: total,
		TotalPages: (total + limit - 1) / limit,
		HasMore:    skip+len(list) < total,
	})
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	found, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, r, err, "Product not found", "Failed to retrieve product")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in admin.ProductInput
	if !h.decodeProduct(w, r, &in) {
		return
	}
	created, err := h.products.Create(r.Context(), apply(catalog.Product{InStock: true}, in))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	h.recorder.Record(r.Context(), analytics.NewProductChanged(analytics.ProductCreated, created.ID, h.now()))
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	var in admin.ProductInput
	if !h.decodeProduct(w, r, &in) {
		return
	}
	updated, err := h.products.Update(r.Context(), id, func(p *catalog.Product) { *p = apply(*p, in) })
	if err != nil {
		h.respondStoreError(w, r, err, "Product not found", "Failed to update product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	h.recorder.Record(r.Context(), analytics.NewProductChanged(analytics.ProductUpdated, updated.ID, h.now()))
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.products.DeleteByID(r.Context(), id); err != nil {
		h.respondStoreError(w, r, err, "Product not found", "Failed to delete product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	h.recorder.Record(r.Context(), analytics.NewProductChanged(analytics.ProductDeleted, id, h.now()))
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"message": "Product removed"})
}

func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.directory.Users())
}

func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	var dto roleUpdateDto
	if !web.DecodeValid(w, r, h.logger, h.validate, &dto) {
		return
	}
	updated, err := h.directory.UpdateUserRole(id, dto.Role)
	if err != nil {
		h.respondStoreError(w, r, err, "User not found", "Failed to update user")
		return
	}
	h.logger.InfoContext(r.Context(), "User role updated", "ID", id, "role", dto.Role)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.directory.DeleteUser(id); err != nil {
		h.respondStoreError(w, r, err, "User not found", "Failed to delete user")
		return
	}
	h.logger.InfoContext(r.Context(), "User deleted", "ID", id)
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"message": "User removed"})
}

func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.directory.Orders())
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	var status admin.OrderStatus
	if !web.DecodeValid(w, r, h.logger, h.validate, &status) {
		return
	}
	updated, err := h.directory.UpdateOrderStatus(id, status, h.now().UTC())
	if err != nil {
		h.respondStoreError(w, r, err, "Order not found", "Failed to update order")
		return
	}
	h.logger.InfoContext(r.Context(), "Order status updated", "ID", id, "paid", updated.IsPaid, "delivered", updated.IsDelivered)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := h.products.Count(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error counting products", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, h.directory.Stats(total))
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) decodeProduct(w http.ResponseWriter, r *http.Request, in *admin.ProductInput) bool {
	if !web.DecodeValid(w, r, h.logger, h.validate, in) {
		return false
	}
	if !in.Price.IsPositive() {
		web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{
			"message":           "Validation failed",
			"validation_errors": map[string]string{"Price": "failed on rule: gt"},
		})
		return false
	}
	return true
}

func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, err error, notFound, failed string) {
	if errors.Is(err, sferrors.ErrProductNotFound) || errors.Is(err, sferrors.ErrRecordNotFound) {
		h.logger.WarnContext(r.Context(), notFound, "path", r.URL.Path)
		web.RespondError(w, h.logger, http.StatusNotFound, notFound)
		return
	}
	h.logger.ErrorContext(r.Context(), failed, "error", err)
	web.RespondError(w, h.logger, http.StatusInternalServerError, failed)
}

// apply copies the editable fields of in onto p.
func apply(p catalog.Product, in admin.ProductInput) catalog.Product {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Category = in.Category
	p.Department = in.Department
	p.Sizes = in.Sizes
	p.Colors = in.Colors
	p.Images = in.Images
	p.IsTrending = in.IsTrending
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	return p
}
