package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotflare/slotflare/backend/internal/models"
	"github.com/slotflare/slotflare/backend/internal/services"
)

func TestHistoryRecordAndList(t *testing.T) {
	db := openTestDB(t)
	user := createTestUser(t, db)
	svc := services.NewHistoryService(db)

	svc.Record(user.ID, models.ActionCreate, models.EntityDomain, "uuid-1",
		models.Snapshot{Domain: &models.DomainSnapshot{ZoneName: "example.com", ZoneID: "z1", Status: "active"}},
		models.LogStatusSuccess, "")
	svc.Record(user.ID, models.ActionDelete, models.EntityScript, "uuid-2",
		models.Snapshot{Script: &models.ScriptSnapshot{ScriptName: "f", Keywords: []string{"x"}}},
		models.LogStatusError, "boom")

	entries, err := svc.List(user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "uuid-2", entries[0].EntityID)
	assert.Equal(t, models.LogStatusError, entries[0].Status)
	assert.Equal(t, "boom", entries[0].ErrorMessage)
	require.NotNil(t, entries[0].Snapshot.Script)
	assert.Equal(t, "f", entries[0].Snapshot.Script.ScriptName)

	require.NotNil(t, entries[1].Snapshot.Domain)
	assert.Equal(t, "example.com", entries[1].Snapshot.Domain.ZoneName)
}

func TestHistoryClearScopedToUser(t *testing.T) {
	db := openTestDB(t)
	user := createTestUser(t, db)
	other := &models.User{Email: "other@example.com"}
	require.NoError(t, other.SetPassword("long-enough-pw"))
	require.NoError(t, db.Create(other).Error)

	svc := services.NewHistoryService(db)
	svc.Record(user.ID, models.ActionCreate, models.EntityDomain, "a", models.Snapshot{}, models.LogStatusSuccess, "")
	svc.Record(other.ID, models.ActionCreate, models.EntityDomain, "b", models.Snapshot{}, models.LogStatusSuccess, "")

	require.NoError(t, svc.Clear(user.ID))

	mine, err := svc.List(user.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := svc.List(other.ID)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}
