// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers exposes the category service as a JSON API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"repairshop/internal/category"
	"repairshop/internal/models"
)

// maxBodyBytes caps request bodies on write routes.
const maxBodyBytes = 1 << 20

// CategoryService is the subset of category.Service the handlers call.
type CategoryService interface {
	Create(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, patch models.CategoryPatch) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	BulkDelete(ctx context.Context, ids []uuid.UUID) (int, error)
	FindMany(ctx context.Context, includeInactive bool) ([]models.Category, error)
	FindByIDOrSlug(ctx context.Context, key string) (*models.Category, error)
	FindManyForNavbar(ctx context.Context) ([]models.Category, error)
	CheckUniqueness(ctx context.Context, name, slug string, excludeID *uuid.UUID) (category.Uniqueness, error)
}

// Categories groups the /api/categories handlers.
type Categories struct {
	svc CategoryService
}

// NewCategories creates the category handler group.
func NewCategories(svc CategoryService) *Categories {
	return &Categories{svc: svc}
}

// List returns the flat category list. Inactive categories are included
// only with ?include_inactive=true.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := false
	if v := r.URL.Query().Get("include_inactive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "include_inactive must be a boolean", "include_inactive")
			return
		}
		includeInactive = b
	}

	items, err := h.svc.FindMany(r.Context(), includeInactive)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Navbar returns the public navigation tree.
func (h *Categories) Navbar(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.FindManyForNavbar(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// Check reports whether a proposed name and slug are free.
func (h *Categories) Check(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var excludeID *uuid.UUID
	if v := q.Get("exclude_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "exclude_id must be a UUID", "exclude_id")
			return
		}
		excludeID = &id
	}

	res, err := h.svc.CheckUniqueness(r.Context(), q.Get("name"), q.Get("slug"), excludeID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Get returns one category by id or slug, with its parent and children.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.FindByIDOrSlug(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Create inserts a new category.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if !decodeBody(w, r, &in) {
		return
	}

	created, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/categories/"+created.ID.String())
	writeJSON(w, http.StatusCreated, created)
}

// Update applies a partial update. Sending "parent_id": null makes the
// category a root; omitting it leaves the parent unchanged.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var patch models.CategoryPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	updated, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a category. Its children become roots.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bulkDeleteRequest is the body of POST /api/categories/bulk-delete.
type bulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// BulkDelete removes several categories at once.
func (h *Categories) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	n, err := h.svc.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// parseID reads the {id} URL parameter, writing a 400 when it is not a UUID.
func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id", "id")
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody decodes a JSON request body into dst, rejecting unknown
// fields and trailing data. It writes a 400 and returns false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err), "")
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "request body must contain a single JSON object", "")
		return false
	}
	return true
}

// writeServiceError maps category errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *category.ValidationError
	switch {
	case errors.Is(err, category.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, category.ErrSelfParent), errors.Is(err, category.ErrCircularHierarchy):
		writeError(w, http.StatusBadRequest, err.Error(), "parent_id")
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error(), ve.Field)
	case errors.Is(err, category.ErrConflict):
		writeError(w, http.StatusConflict, category.ErrConflict.Error(), "")
	default:
		slog.Error("category request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

// writeError writes a JSON error body, naming the offending field when known.
func writeError(w http.ResponseWriter, status int, msg, field string) {
	body := map[string]string{"error": msg}
	if field != "" {
		body["field"] = field
	}
	writeJSON(w, status, body)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
