package services_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/slotflare/slotflare/backend/internal/models"
	"github.com/slotflare/slotflare/backend/internal/services"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsnName := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_journal_mode=WAL&_busy_timeout=5000", dsnName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.WorkerScript{},
		&models.Domain{},
		&models.WorkerRoute{},
		&models.DeployLog{},
		&models.Alert{},
		&models.NotificationProvider{},
	))
	return db
}

// fakeCloudflare is an httptest-backed stand-in for the Cloudflare v4 API.
// It records call counts and can be told to fail specific operations.
type fakeCloudflare struct {
	srv *httptest.Server

	zones []map[string]string

	deploys        int
	lastDeployBody string
	scriptDeletes  int
	routeCreates   int
	routeUpdates   int
	routeDeletes   int

	failDeploys      bool
	failRouteCreates bool
	failRouteDeletes bool
}

func newFakeCloudflare(t *testing.T) *fakeCloudflare {
	t.Helper()
	f := &fakeCloudflare{}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeCloudflare) handle(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/zones" && r.Method == http.MethodGet:
		name := r.URL.Query().Get("name")
		var result []map[string]string
		for _, z := range f.zones {
			if name == "" || z["name"] == name {
				result = append(result, z)
			}
		}
		writeEnvelope(w, result)

	case strings.Contains(path, "/workers/scripts/") && r.Method == http.MethodPut:
		f.deploys++
		raw, _ := io.ReadAll(r.Body)
		f.lastDeployBody = string(raw)
		if f.failDeploys {
			http.Error(w, `{"success":false,"errors":[{"message":"deploy rejected"}]}`, http.StatusBadRequest)
			return
		}
		writeEnvelope(w, nil)

	case strings.Contains(path, "/workers/scripts/") && r.Method == http.MethodDelete:
		f.scriptDeletes++
		writeEnvelope(w, nil)

	case strings.HasSuffix(path, "/workers/routes") && r.Method == http.MethodPost:
		f.routeCreates++
		if f.failRouteCreates {
			http.Error(w, `{"success":false,"errors":[{"message":"route conflict"}]}`, http.StatusConflict)
			return
		}
		writeEnvelope(w, map[string]string{"id": fmt.Sprintf("route-%d", f.routeCreates)})

	case strings.Contains(path, "/workers/routes/") && r.Method == http.MethodPut:
		f.routeUpdates++
		writeEnvelope(w, nil)

	case strings.Contains(path, "/workers/routes/") && r.Method == http.MethodDelete:
		f.routeDeletes++
		if f.failRouteDeletes {
			http.Error(w, `{"success":false,"errors":[{"message":"route not found"}]}`, http.StatusNotFound)
			return
		}
		writeEnvelope(w, nil)

	default:
		http.NotFound(w, r)
	}
}

func writeEnvelope(w http.ResponseWriter, result interface{}) {
	payload := map[string]interface{}{"success": true}
	if result != nil {
		payload["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func (f *fakeCloudflare) factory() services.ClientFactory {
	return services.NewClientFactory(f.srv.URL)
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:               "owner@example.com",
		Name:                "Owner",
		CloudflareAPIToken:  "test-token",
		AccountID:           "acct-1",
		TriggerAlertEnabled: true,
	}
	require.NoError(t, user.SetPassword("long-enough-pw"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func lastLogEntry(t *testing.T, db *gorm.DB, userID uint) models.DeployLog {
	t.Helper()
	var entry models.DeployLog
	require.NoError(t, db.Where("user_id = ?", userID).Order("id desc").First(&entry).Error)
	return entry
}
