package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/encore/internal/config"
	"github.com/example/encore/internal/database"
	"github.com/example/encore/internal/middleware"
	"github.com/example/encore/internal/routes"
)

const (
	testAdminKey = "admin-key"
	testSecret   = "cart-secret"
)

type testServer struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
	svc *routes.Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		AppPort:         "0",
		CartTokenSecret: testSecret,
		CartTTL:         24 * time.Hour,
		AdminKey:        testAdminKey,
		StoreCurrency:   "USD",
	}

	log := zap.NewNop()
	app := fiber.New()
	svc := routes.NewServices(db, cfg, log)
	routes.Register(app, db, cfg, log, svc)
	t.Cleanup(svc.Newsletter.Wait)

	return &testServer{t: t, app: app, db: db, svc: svc}
}

type request struct {
	method    string
	path      string
	body      interface{}
	admin     bool
	cartToken string
}

type envelope[T any] struct {
	Success    bool                   `json:"success"`
	Error      string                 `json:"error"`
	Data       T                      `json:"data"`
	Pagination map[string]interface{} `json:"pagination"`
}

func (s *testServer) do(r request) *http.Response {
	s.t.Helper()

	var body io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		require.NoError(s.t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if r.admin {
		req.Header.Set(middleware.AdminKeyHeader, testAdminKey)
	}
	if r.cartToken != "" {
		req.Header.Set(middleware.CartTokenHeader, r.cartToken)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) envelope[T] {
	t.Helper()
	defer resp.Body.Close()

	var out envelope[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// courseBody is a two-option course with three variants, one sold out.
func courseBody(collectionIDs ...string) map[string]interface{} {
	return map[string]interface{}{
		"title":            "Beethoven's Symphonies",
		"description":      "<p>Nine symphonies, one semester.</p>",
		"images":           []string{"/img/beethoven.jpg"},
		"featured":         true,
		"price_cents":      9000,
		"compare_at_cents": 12000,
		"currency":         "usd",
		"options": []map[string]interface{}{
			{"name": "Color", "values": []string{"Red", "Blue"}, "swatches": map[string]string{"Red": "#ff0000"}},
			{"name": "Size", "values": []string{"S", "M"}},
		},
		"variants": []map[string]interface{}{
			{"sku": "red-s", "option_values": map[string]string{"Color": "Red", "Size": "S"}, "price_cents": 8000, "compare_at_cents": 10000, "inventory_quantity": 0},
			{"sku": "red-m", "option_values": map[string]string{"Color": "Red", "Size": "M"}, "price_cents": 8500, "compare_at_cents": 10000, "inventory_quantity": 3},
			{"sku": "blue-s", "option_values": map[string]string{"Color": "Blue", "Size": "S"}, "price_cents": 7000, "inventory_quantity": 5},
		},
		"collection_ids": collectionIDs,
	}
}
