package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ankitpatil/kharcha/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- Groups ---

// CreateGroup inserts the group and the creator's admin membership in one
// transaction, so a group can never exist without at least one admin.
func (s *PostgresStore) CreateGroup(ctx context.Context, group *models.Group) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create group: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO groups (id, name, description, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		group.ID, group.Name, group.Description, group.CreatedBy,
		group.CreatedAt, group.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO group_members (group_id, account_id, role, joined_at)
		 VALUES ($1, $2, $3, $4)`,
		group.ID, group.CreatedBy, models.RoleAdmin, group.CreatedAt)
	if err != nil {
		return fmt.Errorf("create group membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create group: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListGroups(ctx context.Context, accountID uuid.UUID) ([]*models.Group, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT g.id, g.name, g.description, g.created_by, g.created_at, g.updated_at, m.role,
		        (SELECT COUNT(*) FROM group_members gm
		         WHERE gm.group_id = g.id AND gm.left_at IS NULL)
		 FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		   AND m.account_id = $1 AND m.left_at IS NULL
		 WHERE g.deleted_at IS NULL
		 ORDER BY g.created_at DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy,
			&g.CreatedAt, &g.UpdatedAt, &g.YourRole, &g.MemberCount); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

// GetGroup returns the group with its member list. Membership of the caller
// is part of the query, so a non-member sees the same ErrNotFound as for a
// group that does not exist.
func (s *PostgresStore) GetGroup(ctx context.Context, accountID uuid.UUID, groupID uuid.UUID) (*models.Group, error) {
	var g models.Group
	err := s.pool.QueryRow(ctx,
		`SELECT g.id, g.name, g.description, g.created_by, g.created_at, g.updated_at, m.role
		 FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		   AND m.account_id = $1 AND m.left_at IS NULL
		 WHERE g.id = $2 AND g.deleted_at IS NULL`, accountID, groupID,
	).Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt, &g.UpdatedAt, &g.YourRole)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT gm.account_id, a.email, a.display_name, gm.role, gm.joined_at
		 FROM group_members gm
		 JOIN accounts a ON a.id = gm.account_id
		 WHERE gm.group_id = $1 AND gm.left_at IS NULL
		 ORDER BY (gm.role <> 'admin'), gm.joined_at`, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.AccountID, &m.Email, &m.DisplayName, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		g.Members = append(g.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	g.MemberCount = len(g.Members)
	return &g, nil
}

// UpdateGroup mutates name/description. The actor's admin membership is a
// predicate of the UPDATE itself, like the tenant predicate on expenses; a
// non-admin actor changes nothing and reads as not found.
func (s *PostgresStore) UpdateGroup(ctx context.Context, actorID uuid.UUID, groupID uuid.UUID, name *string, description *string) error {
	sets := []string{"updated_at = $2"}
	args := []any{groupID, time.Now().UTC()}
	argIdx := 3

	if name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *name)
		argIdx++
	}
	if description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *description)
		argIdx++
	}
	args = append(args, actorID)

	query := fmt.Sprintf(
		`UPDATE groups SET %s
		 WHERE id = $1 AND deleted_at IS NULL
		   AND EXISTS (SELECT 1 FROM group_members m
		               WHERE m.group_id = groups.id AND m.account_id = $%d
		                 AND m.role = 'admin' AND m.left_at IS NULL)`,
		strings.Join(sets, ", "), argIdx)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGroup soft-deletes the group and closes all active memberships.
// The actor's admin membership is part of the UPDATE predicate.
func (s *PostgresStore) DeleteGroup(ctx context.Context, actorID uuid.UUID, groupID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete group: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	tag, err := tx.Exec(ctx,
		`UPDATE groups SET deleted_at = $2, updated_at = $2
		 WHERE id = $1 AND deleted_at IS NULL
		   AND EXISTS (SELECT 1 FROM group_members m
		               WHERE m.group_id = groups.id AND m.account_id = $3
		                 AND m.role = 'admin' AND m.left_at IS NULL)`,
		groupID, now, actorID)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx,
		`UPDATE group_members SET left_at = $2
		 WHERE group_id = $1 AND left_at IS NULL`, groupID, now)
	if err != nil {
		return fmt.Errorf("close group memberships: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete group: %w", err)
	}
	return nil
}

// --- Memberships ---

func (s *PostgresStore) GetMemberRole(ctx context.Context, groupID uuid.UUID, accountID uuid.UUID) (string, error) {
	var role string
	err := s.pool.QueryRow(ctx,
		`SELECT m.role
		 FROM group_members m
		 JOIN groups g ON g.id = m.group_id AND g.deleted_at IS NULL
		 WHERE m.group_id = $1 AND m.account_id = $2 AND m.left_at IS NULL`,
		groupID, accountID,
	).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get member role: %w", err)
	}
	return role, nil
}

func (s *PostgresStore) AddGroupMember(ctx context.Context, groupID uuid.UUID, accountID uuid.UUID, role string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO group_members (group_id, account_id, role, joined_at)
		 VALUES ($1, $2, $3, $4)`,
		groupID, accountID, role, time.Now().UTC())
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateMember
		}
		return fmt.Errorf("add group member: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveGroupMember(ctx context.Context, groupID uuid.UUID, accountID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE group_members SET left_at = $3
		 WHERE group_id = $1 AND account_id = $2 AND left_at IS NULL`,
		groupID, accountID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("remove group member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountGroupAdmins(ctx context.Context, groupID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM group_members
		 WHERE group_id = $1 AND role = 'admin' AND left_at IS NULL`, groupID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count group admins: %w", err)
	}
	return count, nil
}
