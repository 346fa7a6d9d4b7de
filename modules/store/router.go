package store

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shopgrid/shopgrid/pkg/session"
	"github.com/shopgrid/shopgrid/pkg/tenant"
)

// Router exposes the storefront API. It expects the tenant, rate limit and
// guard middlewares to have run already; handlers only parse, call the
// service, and encode.
func Router(svc *Service) chi.Router {
	r := chi.NewRouter()

	r.Post("/stores", createStore(svc))
	r.Group(func(r chi.Router) {
		r.Use(tenant.RequireTenant)
		r.Get("/storefront", getStorefront(svc))
		r.Post("/products", addProduct(svc))
		r.Post("/orders", placeOrder(svc))
	})

	return r
}

func createStore(svc *Service) http.HandlerFunc {
	type request struct {
		Slug string `json:"slug"`
		Name string `json:"name"`
		Tier string `json:"tier"`
	}
	type response struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
		Name string `json:"name"`
		Tier string `json:"tier"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body")
			return
		}

		ownerID := uuid.Nil
		if sess, ok := session.FromContext(r.Context()); ok {
			if id, err := uuid.Parse(sess.UserID); err == nil {
				ownerID = id
			}
		}

		st, err := svc.CreateStore(r.Context(), CreateStoreInput{
			OwnerID: ownerID,
			Slug:    req.Slug,
			Name:    req.Name,
			Tier:    tenant.Tier(req.Tier),
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, response{
			ID:   st.ID.String(),
			Slug: st.Slug,
			Name: st.Name,
			Tier: string(st.Tier),
		})
	}
}

func getStorefront(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := svc.Storefront(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

func addProduct(svc *Service) http.HandlerFunc {
	type request struct {
		Name       string `json:"name"`
		PriceCents int64  `json:"price_cents"`
	}
	type response struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		PriceCents int64  `json:"price_cents"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body")
			return
		}

		p, err := svc.AddProduct(r.Context(), AddProductInput{
			Name:       req.Name,
			PriceCents: req.PriceCents,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, response{
			ID:         p.ID.String(),
			Name:       p.Name,
			PriceCents: p.PriceCents,
		})
	}
}

func placeOrder(svc *Service) http.HandlerFunc {
	type request struct {
		TotalCents int64 `json:"total_cents"`
	}
	type response struct {
		ID         string `json:"id"`
		TotalCents int64  `json:"total_cents"`
		Status     string `json:"status"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body")
			return
		}

		o, err := svc.PlaceOrder(r.Context(), PlaceOrderInput{TotalCents: req.TotalCents})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, response{
			ID:         o.ID.String(),
			TotalCents: o.TotalCents,
			Status:     o.Status,
		})
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidSlug):
		writeError(w, http.StatusUnprocessableEntity, "invalid_slug")
	case errors.Is(err, ErrSlugReserved):
		writeError(w, http.StatusUnprocessableEntity, "slug_reserved")
	case errors.Is(err, ErrInvalidTier):
		writeError(w, http.StatusUnprocessableEntity, "invalid_tier")
	case errors.Is(err, ErrSlugTaken):
		writeError(w, http.StatusConflict, "slug_taken")
	case errors.Is(err, ErrLimitExceeded):
		writeError(w, http.StatusForbidden, "plan_limit_exceeded")
	case errors.Is(err, ErrNoTenant), errors.Is(err, ErrStoreNotFound):
		writeError(w, http.StatusNotFound, "store_not_found")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
