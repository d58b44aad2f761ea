package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankitpatil/kharcha/internal/api/handler"
	mw "github.com/ankitpatil/kharcha/internal/api/middleware"
	"github.com/ankitpatil/kharcha/internal/store"
	"github.com/ankitpatil/kharcha/internal/tool"
)

type stubDispatcher struct {
	result any
	err    error

	gotTenant uuid.UUID
	gotName   string
	gotArgs   tool.Args
}

func (d *stubDispatcher) Dispatch(_ context.Context, tenantID uuid.UUID, name string, args tool.Args) (any, error) {
	d.gotTenant, d.gotName, d.gotArgs = tenantID, name, args
	return d.result, d.err
}

func invokeRequest(tenantID uuid.UUID, body string) *http.Request {
	req := httptest.NewRequest("POST", "/api/v1/invoke", strings.NewReader(body))
	return req.WithContext(mw.SetTenantID(req.Context(), tenantID))
}

func TestInvokeHandler_Success(t *testing.T) {
	d := &stubDispatcher{result: map[string]any{"id": "abc"}}
	h := handler.NewInvokeHandler(d)
	tenantID := uuid.New()

	req := invokeRequest(tenantID, `{"tool":"add_expense","args":{"date":"2026-08-01","amount":42.5,"category":"food"}}`)
	w := httptest.NewRecorder()
	h(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tenantID, d.gotTenant)
	assert.Equal(t, "add_expense", d.gotName)
	assert.Equal(t, 42.5, d.gotArgs["amount"])

	var envelope map[string]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "abc", envelope["data"]["id"])
}

func TestInvokeHandler_NoIdentityInContext(t *testing.T) {
	h := handler.NewInvokeHandler(&stubDispatcher{})

	req := httptest.NewRequest("POST", "/api/v1/invoke", strings.NewReader(`{"tool":"summarize"}`))
	w := httptest.NewRecorder()
	h(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	code, _ := decodeError(t, w.Body.Bytes())
	assert.Equal(t, "UNAUTHORIZED", code)
}

func TestInvokeHandler_MissingTool(t *testing.T) {
	h := handler.NewInvokeHandler(&stubDispatcher{})

	req := invokeRequest(uuid.New(), `{"args":{}}`)
	w := httptest.NewRecorder()
	h(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, _ := decodeError(t, w.Body.Bytes())
	assert.Equal(t, "INVALID_REQUEST", code)
}

func TestInvokeHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "unknown tool",
			err:        &tool.Error{Kind: tool.ErrUnknownTool, Msg: `unknown tool "frobnicate"`},
			wantStatus: http.StatusNotFound,
			wantCode:   "UNKNOWN_TOOL",
			wantMsg:    `unknown tool "frobnicate"`,
		},
		{
			name:       "schema violation",
			err:        &tool.Error{Kind: tool.ErrSchemaViolation, Msg: "missing required argument: amount"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "SCHEMA_VIOLATION",
			wantMsg:    "missing required argument: amount",
		},
		{
			name:       "forbidden",
			err:        &tool.Error{Kind: tool.ErrForbidden, Msg: "admin role required"},
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
			wantMsg:    "admin role required",
		},
		{
			name:       "not found",
			err:        &tool.Error{Kind: store.ErrNotFound, Msg: "expense not found"},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "expense not found",
		},
		{
			name:       "duplicate member",
			err:        &tool.Error{Kind: store.ErrDuplicateMember, Msg: "already a member of this group"},
			wantStatus: http.StatusConflict,
			wantCode:   "DUPLICATE_MEMBER",
		},
		{
			name:       "bare sentinel still maps",
			err:        store.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "Resource not found",
		},
		{
			name:       "store failure is masked",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "STORE_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewInvokeHandler(&stubDispatcher{err: tt.err})

			req := invokeRequest(uuid.New(), `{"tool":"delete_expense","args":{"expense_id":"x"}}`)
			w := httptest.NewRecorder()
			h(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			code, msg := decodeError(t, w.Body.Bytes())
			assert.Equal(t, tt.wantCode, code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, msg)
			}
			// Internal detail never reaches the caller.
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}
