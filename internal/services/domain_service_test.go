package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotflare/slotflare/backend/internal/models"
	"github.com/slotflare/slotflare/backend/internal/services"
)

func TestDomainCreateAdoptsMatchingZone(t *testing.T) {
	db := openTestDB(t)
	cf := newFakeCloudflare(t)
	cf.zones = []map[string]string{{"id": "z1", "name": "example.com", "status": "active"}}
	user := createTestUser(t, db)
	svc := services.NewDomainService(db, services.NewHistoryService(db), cf.factory())

	domain, err := svc.Create(context.Background(), user.ID, "example.com")
	require.NoError(t, err)
	assert.Equal(t, "z1", domain.ZoneID)
	assert.Equal(t, "active", domain.Status)
	assert.NotEmpty(t, domain.UUID)

	entry := lastLogEntry(t, db, user.ID)
	assert.Equal(t, models.EntityDomain, entry.EntityType)
	assert.Equal(t, models.LogStatusSuccess, entry.Status)
}

func TestDomainCreateUnknownZone(t *testing.T) {
	db := openTestDB(t)
	cf := newFakeCloudflare(t)
	user := createTestUser(t, db)
	svc := services.NewDomainService(db, services.NewHistoryService(db), cf.factory())

	_, err := svc.Create(context.Background(), user.ID, "missing.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrNotFound))

	var count int64
	require.NoError(t, db.Model(&models.Domain{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDomainCreateDuplicate(t *testing.T) {
	db := openTestDB(t)
	cf := newFakeCloudflare(t)
	cf.zones = []map[string]string{{"id": "z1", "name": "example.com", "status": "active"}}
	user := createTestUser(t, db)
	svc := services.NewDomainService(db, services.NewHistoryService(db), cf.factory())

	_, err := svc.Create(context.Background(), user.ID, "example.com")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), user.ID, "example.com")
	var conflict *services.ConflictError
	require.True(t, errors.As(err, &conflict))
}

func TestDomainDeleteRefusedWhileRoutesExist(t *testing.T) {
	db := openTestDB(t)
	cf := newFakeCloudflare(t)
	cf.zones = []map[string]string{{"id": "z1", "name": "example.com", "status": "active"}}
	user := createTestUser(t, db)
	svc := services.NewDomainService(db, services.NewHistoryService(db), cf.factory())

	domain, err := svc.Create(context.Background(), user.ID, "example.com")
	require.NoError(t, err)

	route := models.WorkerRoute{
		UserID: user.ID, DomainID: domain.ID, ScriptName: "f",
		RoutePattern: "example.com/*", Status: models.RouteStatusActive,
	}
	require.NoError(t, db.Create(&route).Error)

	err = svc.Delete(user.ID, domain.UUID)
	var conflict *services.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.EqualValues(t, 1, conflict.RoutesCount)

	// Deleting the route unblocks the domain.
	require.NoError(t, db.Delete(&route).Error)
	require.NoError(t, svc.Delete(user.ID, domain.UUID))
}

func TestSyncZoneStatuses(t *testing.T) {
	db := openTestDB(t)
	cf := newFakeCloudflare(t)
	cf.zones = []map[string]string{{"id": "z1", "name": "example.com", "status": "active"}}
	user := createTestUser(t, db)
	svc := services.NewDomainService(db, services.NewHistoryService(db), cf.factory())

	domain, err := svc.Create(context.Background(), user.ID, "example.com")
	require.NoError(t, err)

	cf.zones[0]["status"] = "moved"
	svc.SyncZoneStatuses(context.Background())

	var refreshed models.Domain
	require.NoError(t, db.First(&refreshed, domain.ID).Error)
	assert.Equal(t, "moved", refreshed.Status)
}
