package controllers

import (
	"net/http"
	"strings"

	"github.com/coupleshub/backend/api/middleware"
	"github.com/coupleshub/backend/api/responses"
	"github.com/coupleshub/backend/api/validators"
	"github.com/coupleshub/backend/internal/groceries"
	"github.com/coupleshub/backend/pkg/enums"
	pkgerrors "github.com/coupleshub/backend/pkg/errors"
	"github.com/coupleshub/backend/pkg/logger"
)

func groceryListFilter(r *http.Request) (groceries.ListFilter, error) {
	filter := groceries.ListFilter{
		HideChecked: validators.ParseQueryBool(r, "hide_checked"),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		category, err := enums.ParseGroceryCategory(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		filter.Category = &category
	}
	return filter, nil
}

// GroceriesList returns a flat list, or category groups when ?grouped=1.
func GroceriesList(svc groceries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := groceryListFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		coupleID := middleware.CoupleIDFromContext(ctx)
		if validators.ParseQueryBool(r, "grouped") {
			groups, err := svc.ListGrouped(ctx, coupleID, filter)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			responses.WriteSuccess(w, groups)
			return
		}

		rows, err := svc.List(ctx, coupleID, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func GroceriesCreate(svc groceries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body groceries.CreateGroceryItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		dto, err := svc.Create(ctx, middleware.CoupleIDFromContext(ctx), middleware.UserIDFromContext(ctx), body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func GroceriesToggle(svc groceries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		dto, err := svc.Toggle(ctx, middleware.CoupleIDFromContext(ctx), middleware.UserIDFromContext(ctx), id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// GroceriesClearChecked removes every checked item in one sweep.
func GroceriesClearChecked(svc groceries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		removed, err := svc.ClearChecked(ctx, middleware.CoupleIDFromContext(ctx), middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"removed": removed})
	}
}

func GroceriesDelete(svc groceries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if err := svc.Delete(ctx, middleware.CoupleIDFromContext(ctx), middleware.UserIDFromContext(ctx), id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
