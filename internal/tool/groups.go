package tool

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ankitpatil/kharcha/internal/auth"
	"github.com/ankitpatil/kharcha/internal/store"
	"github.com/ankitpatil/kharcha/pkg/models"
	"github.com/google/uuid"
)

const (
	maxGroupNameLen = 100
	maxGroupDescLen = 500
)

func (s *Service) createGroup(ctx context.Context, tenant Tenant, args Args) (any, error) {
	name := strings.TrimSpace(args.String("name"))
	if name == "" {
		return nil, failf(ErrSchemaViolation, "group name must not be empty")
	}
	if len(name) > maxGroupNameLen {
		return nil, failf(ErrSchemaViolation, "group name must be %d characters or less", maxGroupNameLen)
	}
	description := strings.TrimSpace(args.String("description"))
	if len(description) > maxGroupDescLen {
		return nil, failf(ErrSchemaViolation, "description must be %d characters or less", maxGroupDescLen)
	}

	now := time.Now().UTC()
	group := &models.Group{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedBy:   tenant.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}
	group.MemberCount = 1
	group.YourRole = models.RoleAdmin
	return group, nil
}

func (s *Service) listGroups(ctx context.Context, tenant Tenant, _ Args) (any, error) {
	groups, err := s.store.ListGroups(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []*models.Group{}
	}
	return groups, nil
}

func (s *Service) getGroup(ctx context.Context, tenant Tenant, args Args) (any, error) {
	groupID, err := parseGroupID(args)
	if err != nil {
		return nil, err
	}
	// Membership is part of the store query; non-members get ErrNotFound.
	return s.store.GetGroup(ctx, tenant.ID, groupID)
}

func (s *Service) updateGroup(ctx context.Context, tenant Tenant, args Args) (any, error) {
	groupID, err := parseGroupID(args)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, groupID, tenant.ID, "only admins can update group details"); err != nil {
		return nil, err
	}

	var name, description *string
	if _, present := args["name"]; present {
		n := strings.TrimSpace(args.String("name"))
		if n == "" {
			return nil, failf(ErrSchemaViolation, "group name must not be empty")
		}
		if len(n) > maxGroupNameLen {
			return nil, failf(ErrSchemaViolation, "group name must be %d characters or less", maxGroupNameLen)
		}
		name = &n
	}
	if _, present := args["description"]; present {
		d := strings.TrimSpace(args.String("description"))
		if len(d) > maxGroupDescLen {
			return nil, failf(ErrSchemaViolation, "description must be %d characters or less", maxGroupDescLen)
		}
		description = &d
	}
	if name == nil && description == nil {
		return nil, failf(ErrSchemaViolation, "nothing to update")
	}

	if err := s.store.UpdateGroup(ctx, tenant.ID, groupID, name, description); err != nil {
		return nil, err
	}
	return s.store.GetGroup(ctx, tenant.ID, groupID)
}

func (s *Service) deleteGroup(ctx context.Context, tenant Tenant, args Args) (any, error) {
	groupID, err := parseGroupID(args)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, groupID, tenant.ID, "only admins can delete groups"); err != nil {
		return nil, err
	}
	if err := s.store.DeleteGroup(ctx, tenant.ID, groupID); err != nil {
		return nil, err
	}
	return map[string]any{"id": groupID, "deleted": true}, nil
}

func (s *Service) addGroupMember(ctx context.Context, tenant Tenant, args Args) (any, error) {
	groupID, err := parseGroupID(args)
	if err != nil {
		return nil, err
	}
	memberEmail := auth.NormalizeEmail(args.String("member_email"))
	if !strings.Contains(memberEmail, "@") {
		return nil, failf(ErrSchemaViolation, "member_email must be a valid email address")
	}
	role := args.String("role")
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleAdmin && role != models.RoleMember {
		return nil, failf(ErrSchemaViolation, "role must be %q or %q", models.RoleAdmin, models.RoleMember)
	}

	if err := s.requireAdmin(ctx, groupID, tenant.ID, "only admins can add members"); err != nil {
		return nil, err
	}

	account, err := s.store.GetAccountByEmail(ctx, memberEmail)
	if errors.Is(err, store.ErrNotFound) {
		return nil, failf(store.ErrNotFound, "no account with that email")
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.AddGroupMember(ctx, groupID, account.ID, role); err != nil {
		if errors.Is(err, store.ErrDuplicateMember) {
			return nil, failf(store.ErrDuplicateMember, "account is already a member of this group")
		}
		return nil, err
	}

	return map[string]any{
		"group_id":   groupID,
		"account_id": account.ID,
		"role":       role,
	}, nil
}

func (s *Service) removeGroupMember(ctx context.Context, tenant Tenant, args Args) (any, error) {
	groupID, err := parseGroupID(args)
	if err != nil {
		return nil, err
	}
	memberID, err := uuid.Parse(args.String("member_id"))
	if err != nil {
		return nil, failf(ErrSchemaViolation, "member_id must be a UUID")
	}
	if memberID == tenant.ID {
		return nil, failf(ErrForbidden, "cannot remove yourself, use leave_group")
	}

	if err := s.requireAdmin(ctx, groupID, tenant.ID, "only admins can remove members"); err != nil {
		return nil, err
	}

	role, err := s.store.GetMemberRole(ctx, groupID, memberID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, failf(store.ErrNotFound, "member not found in this group")
	}
	if err != nil {
		return nil, err
	}
	if role == models.RoleAdmin {
		if err := s.requireAnotherAdmin(ctx, groupID, "cannot remove the last admin"); err != nil {
			return nil, err
		}
	}

	if err := s.store.RemoveGroupMember(ctx, groupID, memberID); err != nil {
		return nil, err
	}
	return map[string]any{"group_id": groupID, "account_id": memberID, "removed": true}, nil
}

func (s *Service) leaveGroup(ctx context.Context, tenant Tenant, args Args) (any, error) {
	groupID, err := parseGroupID(args)
	if err != nil {
		return nil, err
	}

	role, err := s.store.GetMemberRole(ctx, groupID, tenant.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, failf(store.ErrNotFound, "you are not a member of this group")
	}
	if err != nil {
		return nil, err
	}
	if role == models.RoleAdmin {
		if err := s.requireAnotherAdmin(ctx, groupID, "the last admin cannot leave, promote another member or delete the group"); err != nil {
			return nil, err
		}
	}

	if err := s.store.RemoveGroupMember(ctx, groupID, tenant.ID); err != nil {
		return nil, err
	}
	return map[string]any{"group_id": groupID, "left": true}, nil
}

// requireAdmin resolves the caller's role in the group. A non-member gets
// the same not-found as a missing group; a plain member gets forbidden.
func (s *Service) requireAdmin(ctx context.Context, groupID, accountID uuid.UUID, msg string) error {
	role, err := s.store.GetMemberRole(ctx, groupID, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return failf(store.ErrNotFound, "group not found")
	}
	if err != nil {
		return err
	}
	if role != models.RoleAdmin {
		return failf(ErrForbidden, "%s", msg)
	}
	return nil
}

func (s *Service) requireAnotherAdmin(ctx context.Context, groupID uuid.UUID, msg string) error {
	admins, err := s.store.CountGroupAdmins(ctx, groupID)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return failf(ErrForbidden, "%s", msg)
	}
	return nil
}

func parseGroupID(args Args) (uuid.UUID, error) {
	id, err := uuid.Parse(args.String("group_id"))
	if err != nil {
		return uuid.Nil, failf(ErrSchemaViolation, "group_id must be a UUID")
	}
	return id, nil
}
