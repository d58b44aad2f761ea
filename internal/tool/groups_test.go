package tool_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankitpatil/kharcha/internal/store"
	"github.com/ankitpatil/kharcha/internal/tool"
	"github.com/ankitpatil/kharcha/pkg/models"
)

func createTestGroup(t *testing.T, d *tool.Dispatcher, tenantID uuid.UUID, name string) *models.Group {
	t.Helper()
	result, err := d.Dispatch(context.Background(), tenantID, "create_group", tool.Args{"name": name})
	require.NoError(t, err)
	return result.(*models.Group)
}

func TestCreateGroup_CreatorBecomesAdmin(t *testing.T) {
	ms := newMemStore()
	d := newTestDispatcher(t, ms)
	alice := ms.addAccount("alice@example.com")

	group := createTestGroup(t, d, alice, "Flat 4B")

	assert.Equal(t, models.RoleAdmin, group.YourRole)
	assert.Equal(t, 1, group.MemberCount)
	assert.Equal(t, alice, group.CreatedBy)
	assert.Equal(t, models.RoleAdmin, ms.members[group.ID][alice])
}

func TestCreateGroup_Validation(t *testing.T) {
	d := newTestDispatcher(t, newMemStore())
	tenantID := uuid.New()

	longName := make([]byte, 101)
	for i := range longName {
		longName[i] = 'x'
	}

	tests := []struct {
		name string
		args tool.Args
	}{
		{"empty name", tool.Args{"name": "   "}},
		{"name too long", tool.Args{"name": string(longName)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Dispatch(context.Background(), tenantID, "create_group", tt.args)
			assert.ErrorIs(t, err, tool.ErrSchemaViolation)
		})
	}
}

func TestGetGroup_NonMemberSeesNotFound(t *testing.T) {
	ms := newMemStore()
	d := newTestDispatcher(t, ms)
	alice := ms.addAccount("alice@example.com")
	mallory := ms.addAccount("mallory@example.com")

	group := createTestGroup(t, d, alice, "Flat 4B")

	// A real group the caller does not belong to is indistinguishable
	// from a group that does not exist.
	_, memberErr := d.Dispatch(context.Background(), mallory, "get_group", tool.Args{
		"group_id": group.ID.String(),
	})
	_, ghostErr := d.Dispatch(context.Background(), mallory, "get_group", tool.Args{
		"group_id": uuid.NewString(),
	})

	assert.ErrorIs(t, memberErr, store.ErrNotFound)
	assert.ErrorIs(t, ghostErr, store.ErrNotFound)
}

func TestUpdateGroup_AdminOnly(t *testing.T) {
	ms := newMemStore()
	d := newTestDispatcher(t, ms)
	alice := ms.addAccount("alice@example.com")
	bob := ms.addAccount("bob@example.com")

	group := createTestGroup(t, d, alice, "Flat 4B")
	ms.members[group.ID][bob] = models.RoleMember

	_, err := d.Dispatch(context.Background(), bob, "update_group", tool.Args{
		"group_id": group.ID.String(), "name": "Hijacked",
	})
	assert.ErrorIs(t, err, tool.ErrForbidden)

	result, err := d.Dispatch(context.Background(), alice, "update_group", tool.Args{
		"group_id": group.ID.String(), "name": "Flat 5A",
	})
	require.NoError(t, err)
	assert.Equal(t, "Flat 5A", result.(*models.Group).Name)
}

func TestUpdateGroup_NothingToUpdate(t *testing.T) {
	ms := newMemStore()
	d := newTestDispatcher(t, ms)
	alice := ms.addAccount("alice@example.com")
	group := createTestGroup(t, d, alice, "Flat 4B")

	_, err := d.Dispatch(context.Background(), alice, "update_group", tool.Args{
		"group_id": group.ID.String(),
	})
	assert.ErrorIs(t, err, tool.ErrSchemaViolation)
}

func TestDeleteGroup_AdminOnly(t *testing.T) {
	ms := newMemStore()
	d := newTestDispatcher(t, ms)
	alice := ms.addAccount("alice@example.com")
	bob := ms.addAccount("bob@example.com")

	group := createTestGroup(t, d, alice, "Flat 4B")
	ms.members[group.ID][bob] = models.RoleMember

	_, err := d.Dispatch(context.Background(), bob, "delete_group", tool.Args{
		"group_id": group.ID.String(),
	})
	assert.ErrorIs(t, err, tool.ErrForbidden)

	_, err = d.Dispatch(context.Background(), alice, "delete_group", tool.Args{
		"group_id": group.ID.String(),
	})
	require.NoError(t, err)
	assert.Empty(t, ms.groups)
}

func TestAddGroupMember(t *testing.T) {
	ms := newMemStore()
	d := newTestDispatcher(t, ms)
	alice := ms.addAccount("alice@example.com")
	bob := ms.addAccount("bob@example.com")

	group := createTestGroup(t, d, alice, "Flat 4B")

	t.Run("admin adds by email", func(t *testing.T) {
		_, err := d.Dispatch(context.Background(), alice, "add_group_member", tool.Args{
			"group_id": group.ID.String(), "member_email": "Bob@Example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleMember, ms.members[group.ID][bob])
	})

	t.Run("duplicate member", func(t *testing.T) {
		_, err := d.Dispatch(context.Background(), alice, "add_group_member", tool.Args{
			"group_id": group.ID.String(), "member_email": "bob@example.com",
		})
		assert.ErrorIs(t, err, store.ErrDuplicateMember)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := d.Dispatch(context.Background(), alice, "add_group_member", tool.Args{
			"group_id": group.ID.String(), "member_email": "ghost@example.com",
		})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("bad role", func(t *testing.T) {
		_, err := d.Dispatch(context.Background(), alice, "add_group_member", tool.Args{
			"group_id": group.ID.String(), "member_email": "bob@example.com", "role": "owner",
		})
		assert.ErrorIs(t, err, tool.ErrSchemaViolation)
	})

	t.Run("member cannot add", func(t *testing.T) {
		_, err := d.Dispatch(context.Background(), bob, "add_group_member", tool.Args{
			"group_id": group.ID.String(), "member_email": "ghost@example.com",
		})
		assert.ErrorIs(t, err, tool.ErrForbidden)
	})
}

func TestRemoveGroupMember(t *testing.T) {
	ms := newMemStore()
	d := newTestDispatcher(t, ms)
	alice := ms.addAccount("alice@example.com")
	bob := ms.addAccount("bob@example.com")

	group := createTestGroup(t, d, alice, "Flat 4B")
	ms.members[group.ID][bob] = models.RoleMember

	t.Run("cannot remove self", func(t *testing.T) {
		_, err := d.Dispatch(context.Background(), alice, "remove_group_member", tool.Args{
			"group_id": group.ID.String(), "member_id": alice.String(),
		})
		assert.ErrorIs(t, err, tool.ErrForbidden)
	})

	t.Run("admin removes member", func(t *testing.T) {
		_, err := d.Dispatch(context.Background(), alice, "remove_group_member", tool.Args{
			"group_id": group.ID.String(), "member_id": bob.String(),
		})
		require.NoError(t, err)
		assert.NotContains(t, ms.members[group.ID], bob)
	})

	t.Run("member already gone", func(t *testing.T) {
		_, err := d.Dispatch(context.Background(), alice, "remove_group_member", tool.Args{
			"group_id": group.ID.String(), "member_id": bob.String(),
		})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRemoveGroupMember_AdminRemoval(t *testing.T) {
	ms := newMemStore()
	d := newTestDispatcher(t, ms)
	alice := ms.addAccount("alice@example.com")
	carol := ms.addAccount("carol@example.com")

	group := createTestGroup(t, d, carol, "Flat 4B")
	ms.members[group.ID][alice] = models.RoleAdmin

	// With two admins, removing one is allowed.
	_, err := d.Dispatch(context.Background(), alice, "remove_group_member", tool.Args{
		"group_id": group.ID.String(), "member_id": carol.String(),
	})
	require.NoError(t, err)
	assert.NotContains(t, ms.members[group.ID], carol)
}

func TestLeaveGroup(t *testing.T) {
	ms := newMemStore()
	d := newTestDispatcher(t, ms)
	alice := ms.addAccount("alice@example.com")
	bob := ms.addAccount("bob@example.com")

	group := createTestGroup(t, d, alice, "Flat 4B")
	ms.members[group.ID][bob] = models.RoleMember

	t.Run("member leaves", func(t *testing.T) {
		_, err := d.Dispatch(context.Background(), bob, "leave_group", tool.Args{
			"group_id": group.ID.String(),
		})
		require.NoError(t, err)
		assert.NotContains(t, ms.members[group.ID], bob)
	})

	t.Run("non-member cannot leave", func(t *testing.T) {
		_, err := d.Dispatch(context.Background(), bob, "leave_group", tool.Args{
			"group_id": group.ID.String(),
		})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("last admin cannot leave", func(t *testing.T) {
		_, err := d.Dispatch(context.Background(), alice, "leave_group", tool.Args{
			"group_id": group.ID.String(),
		})
		assert.ErrorIs(t, err, tool.ErrForbidden)
	})

	t.Run("admin leaves when another remains", func(t *testing.T) {
		carol := ms.addAccount("carol@example.com")
		ms.members[group.ID][carol] = models.RoleAdmin

		_, err := d.Dispatch(context.Background(), alice, "leave_group", tool.Args{
			"group_id": group.ID.String(),
		})
		require.NoError(t, err)
		assert.NotContains(t, ms.members[group.ID], alice)
	})
}

func TestListGroups(t *testing.T) {
	ms := newMemStore()
	d := newTestDispatcher(t, ms)
	alice := ms.addAccount("alice@example.com")
	bob := ms.addAccount("bob@example.com")

	createTestGroup(t, d, alice, "Flat 4B")
	createTestGroup(t, d, alice, "Goa Trip")

	aliceGroups, err := d.Dispatch(context.Background(), alice, "list_groups", nil)
	require.NoError(t, err)
	assert.Len(t, aliceGroups.([]*models.Group), 2)

	bobGroups, err := d.Dispatch(context.Background(), bob, "list_groups", nil)
	require.NoError(t, err)
	assert.Empty(t, bobGroups.([]*models.Group))
}
