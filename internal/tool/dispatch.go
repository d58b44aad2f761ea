package tool

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ankitpatil/kharcha/internal/metrics"
	"github.com/ankitpatil/kharcha/internal/store"
	"github.com/google/uuid"
)

// reservedArgs are identity fields a caller might try to smuggle into the
// argument mapping. They are dropped before schema validation, never merged,
// so the only tenant identity a handler ever sees is the one derived from
// the authenticated session.
var reservedArgs = map[string]bool{
	"tenant":     true,
	"tenant_id":  true,
	"user_id":    true,
	"account_id": true,
}

// Dispatcher routes validated operation requests to catalog handlers. It is
// the single place where the tenant identity is injected into a call.
type Dispatcher struct {
	catalog *Catalog
}

func NewDispatcher(c *Catalog) *Dispatcher {
	return &Dispatcher{catalog: c}
}

// Dispatch runs one operation for the authenticated tenant. The chain is:
// catalog lookup, identity-field stripping, schema check, handler call.
// A failure at any stage aborts before any store access.
func (d *Dispatcher) Dispatch(ctx context.Context, tenantID uuid.UUID, name string, args Args) (any, error) {
	t, ok := d.catalog.Get(name)
	if !ok {
		metrics.DispatchTotal.WithLabelValues(name, "unknown_tool").Inc()
		return nil, failf(ErrUnknownTool, "unknown tool %q", name)
	}

	cleaned := make(Args, len(args))
	for k, v := range args {
		if reservedArgs[k] {
			slog.Warn("discarded caller-supplied identity field", "tool", name, "field", k)
			continue
		}
		cleaned[k] = v
	}

	if err := checkSchema(t, cleaned); err != nil {
		metrics.DispatchTotal.WithLabelValues(name, "schema_violation").Inc()
		return nil, err
	}

	result, err := t.Handler(ctx, Tenant{ID: tenantID}, cleaned)
	if err != nil {
		metrics.DispatchTotal.WithLabelValues(name, outcome(err)).Inc()
		return nil, err
	}
	metrics.DispatchTotal.WithLabelValues(name, "ok").Inc()
	return result, nil
}

// checkSchema validates the cleaned argument mapping against the catalog
// entry: required arguments present, declared types respected, nothing
// undeclared.
func checkSchema(t Tool, args Args) error {
	specs := make(map[string]ArgSpec, len(t.Args))
	for _, spec := range t.Args {
		specs[spec.Name] = spec
		if !spec.Required {
			continue
		}
		if _, present := args[spec.Name]; !present {
			return failf(ErrSchemaViolation, "%s: missing required argument %q", t.Name, spec.Name)
		}
	}

	for name, value := range args {
		spec, declared := specs[name]
		if !declared {
			return failf(ErrSchemaViolation, "%s: unexpected argument %q", t.Name, name)
		}
		switch spec.Type {
		case ArgString:
			if _, ok := value.(string); !ok {
				return failf(ErrSchemaViolation, "%s: argument %q must be a string", t.Name, name)
			}
		case ArgNumber:
			if _, ok := value.(float64); !ok {
				return failf(ErrSchemaViolation, "%s: argument %q must be a number", t.Name, name)
			}
		}
	}
	return nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrSchemaViolation):
		return "schema_violation"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrDuplicateMember):
		return "duplicate_member"
	default:
		return "error"
	}
}
