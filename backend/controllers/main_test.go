package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"academy/backend/config"
	"academy/backend/middleware"
	"academy/backend/models"
	"academy/backend/routes"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestApp builds the real app against a fresh in-memory SQLite database.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, utils.Migrate(db))

	cfg := &config.Config{JWTSecret: "testsecret", ServerPort: "8080"}
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})
	routes.SetupRoutes(app, db, cfg)

	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func doJSONList(t *testing.T, app *fiber.App, method, path string) (*http.Response, []map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func seedUser(t *testing.T, db *gorm.DB, name, email, role string) models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		Name:         name,
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, course models.Course) models.Course {
	t.Helper()
	if course.Slug == "" {
		course.Slug = utils.Slugify(course.Title)
	}
	if course.Status == "" {
		course.Status = "published"
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}
