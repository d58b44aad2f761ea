// Package tool holds the fixed catalog of tenant-scoped operations and the
// dispatcher that binds an authenticated tenant identity to each call.
package tool

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Tenant is the authenticated tenant identity, injected by the dispatcher.
// It is deliberately a distinct type from the free-form Args map: a handler
// receives exactly one tenant identity and it can never arrive through the
// argument mapping.
type Tenant struct {
	ID uuid.UUID
}

// Args is the free-form argument mapping decoded from the request. Values
// follow encoding/json conventions: strings and float64 numbers.
type Args map[string]any

// String returns the named string argument, or "" when absent.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Number returns the named numeric argument, or 0 when absent.
func (a Args) Number(name string) float64 {
	f, _ := a[name].(float64)
	return f
}

// ArgType enumerates the wire types a catalog entry may declare.
type ArgType string

const (
	ArgString ArgType = "string"
	ArgNumber ArgType = "number"
)

// ArgSpec declares one argument of a catalog entry.
type ArgSpec struct {
	Name     string
	Type     ArgType
	Required bool
}

// HandlerFunc executes one operation for the bound tenant. Implementations
// must validate argument semantics before any store write.
type HandlerFunc func(ctx context.Context, tenant Tenant, args Args) (any, error)

// Tool is one catalog entry.
type Tool struct {
	Name    string
	Args    []ArgSpec
	Handler HandlerFunc
}

// Catalog is the closed registry of operations. It is built once at startup
// from the Service and validated; there is no way to register tools at
// runtime.
type Catalog struct {
	tools map[string]Tool
	names []string
}

// NewCatalog builds and validates the full tool registry.
func NewCatalog(svc *Service) (*Catalog, error) {
	entries := []Tool{
		{
			Name: "add_expense",
			Args: []ArgSpec{
				{Name: "date", Type: ArgString, Required: true},
				{Name: "amount", Type: ArgNumber, Required: true},
				{Name: "category", Type: ArgString, Required: true},
				{Name: "subcategory", Type: ArgString},
				{Name: "note", Type: ArgString},
			},
			Handler: svc.addExpense,
		},
		{
			Name: "list_expenses",
			Args: []ArgSpec{
				{Name: "start_date", Type: ArgString, Required: true},
				{Name: "end_date", Type: ArgString, Required: true},
			},
			Handler: svc.listExpenses,
		},
		{
			Name: "summarize",
			Args: []ArgSpec{
				{Name: "start_date", Type: ArgString, Required: true},
				{Name: "end_date", Type: ArgString, Required: true},
				{Name: "category", Type: ArgString},
			},
			Handler: svc.summarize,
		},
		{
			Name: "delete_expense",
			Args: []ArgSpec{
				{Name: "expense_id", Type: ArgString, Required: true},
			},
			Handler: svc.deleteExpense,
		},
		{
			Name: "create_group",
			Args: []ArgSpec{
				{Name: "name", Type: ArgString, Required: true},
				{Name: "description", Type: ArgString},
			},
			Handler: svc.createGroup,
		},
		{
			Name:    "list_groups",
			Args:    nil,
			Handler: svc.listGroups,
		},
		{
			Name: "get_group",
			Args: []ArgSpec{
				{Name: "group_id", Type: ArgString, Required: true},
			},
			Handler: svc.getGroup,
		},
		{
			Name: "update_group",
			Args: []ArgSpec{
				{Name: "group_id", Type: ArgString, Required: true},
				{Name: "name", Type: ArgString},
				{Name: "description", Type: ArgString},
			},
			Handler: svc.updateGroup,
		},
		{
			Name: "delete_group",
			Args: []ArgSpec{
				{Name: "group_id", Type: ArgString, Required: true},
			},
			Handler: svc.deleteGroup,
		},
		{
			Name: "add_group_member",
			Args: []ArgSpec{
				{Name: "group_id", Type: ArgString, Required: true},
				{Name: "member_email", Type: ArgString, Required: true},
				{Name: "role", Type: ArgString},
			},
			Handler: svc.addGroupMember,
		},
		{
			Name: "remove_group_member",
			Args: []ArgSpec{
				{Name: "group_id", Type: ArgString, Required: true},
				{Name: "member_id", Type: ArgString, Required: true},
			},
			Handler: svc.removeGroupMember,
		},
		{
			Name: "leave_group",
			Args: []ArgSpec{
				{Name: "group_id", Type: ArgString, Required: true},
			},
			Handler: svc.leaveGroup,
		},
	}

	c := &Catalog{tools: make(map[string]Tool, len(entries))}
	for _, t := range entries {
		if err := validateEntry(t); err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", t.Name, err)
		}
		if _, dup := c.tools[t.Name]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate name", t.Name)
		}
		c.tools[t.Name] = t
		c.names = append(c.names, t.Name)
	}
	return c, nil
}

func validateEntry(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("empty name")
	}
	if t.Handler == nil {
		return fmt.Errorf("nil handler")
	}
	seen := make(map[string]bool, len(t.Args))
	for _, spec := range t.Args {
		if spec.Name == "" {
			return fmt.Errorf("empty argument name")
		}
		if reservedArgs[spec.Name] {
			return fmt.Errorf("argument %q collides with injected identity", spec.Name)
		}
		if spec.Type != ArgString && spec.Type != ArgNumber {
			return fmt.Errorf("argument %q: unknown type %q", spec.Name, spec.Type)
		}
		if seen[spec.Name] {
			return fmt.Errorf("argument %q declared twice", spec.Name)
		}
		seen[spec.Name] = true
	}
	return nil
}

// Get looks up a catalog entry by name.
func (c *Catalog) Get(name string) (Tool, bool) {
	t, ok := c.tools[name]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}
