package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/ankitpatil/kharcha/internal/api/middleware"
	"github.com/ankitpatil/kharcha/internal/api/response"
	"github.com/ankitpatil/kharcha/internal/store"
	"github.com/ankitpatil/kharcha/internal/tool"
	"github.com/google/uuid"
)

// Dispatcher is the slice of the gateway dispatcher the invoke handler
// depends on.
type Dispatcher interface {
	Dispatch(ctx context.Context, tenantID uuid.UUID, name string, args tool.Args) (any, error)
}

// NewInvokeHandler returns an http.HandlerFunc for POST /api/v1/invoke.
// The request body carries the operation name and free-form argument
// mapping produced by the natural-language front end; neither is trusted.
func NewInvokeHandler(d Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		var req struct {
			Tool string         `json:"tool"`
			Args map[string]any `json:"args"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
			return
		}
		if req.Tool == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "tool is required")
			return
		}

		result, err := d.Dispatch(r.Context(), tenantID, req.Tool, tool.Args(req.Args))
		if err != nil {
			writeDispatchError(w, r, req.Tool, err)
			return
		}

		response.JSON(w, result)
	}
}

// writeDispatchError maps dispatch-chain errors onto the wire taxonomy.
// Messages come from the tool layer's caller-safe errors; anything
// unrecognized is reported as a store availability problem with the detail
// kept in the server log.
func writeDispatchError(w http.ResponseWriter, r *http.Request, toolName string, err error) {
	msg := func(fallback string) string {
		var te *tool.Error
		if errors.As(err, &te) {
			return te.Msg
		}
		return fallback
	}

	switch {
	case errors.Is(err, tool.ErrUnknownTool):
		response.Error(w, http.StatusNotFound, "UNKNOWN_TOOL", msg("Unknown tool"))
	case errors.Is(err, tool.ErrSchemaViolation):
		response.Error(w, http.StatusBadRequest, "SCHEMA_VIOLATION", msg("Invalid arguments"))
	case errors.Is(err, tool.ErrForbidden):
		response.Error(w, http.StatusForbidden, "FORBIDDEN", msg("Operation not permitted"))
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", msg("Resource not found"))
	case errors.Is(err, store.ErrDuplicateMember):
		response.Error(w, http.StatusConflict, "DUPLICATE_MEMBER", msg("Already a member"))
	default:
		slog.Error("tool dispatch failed", "tool", toolName, "error", err, "path", r.URL.Path)
		response.Error(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "The data store is unavailable, try again later")
	}
}
