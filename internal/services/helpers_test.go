package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/encore/internal/database"
	"github.com/example/encore/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(conn))
	return conn
}

type seededCatalog struct {
	baroque    models.Collection
	jazz       models.Collection
	symphonies models.Product
	jazzIntro  models.Product
	opera      models.Product
}

func (s seededCatalog) variant(sku string) models.ProductVariant {
	for _, v := range s.symphonies.Variants {
		if v.SKU == sku {
			return v
		}
	}
	panic("unknown sku " + sku)
}

func intRef(v int) *int    { return &v }
func boolRef(v bool) *bool { return &v }

func seedCatalog(t *testing.T, db *gorm.DB) seededCatalog {
	t.Helper()

	s := seededCatalog{
		baroque: models.Collection{Name: "Baroque", Slug: "baroque", DisplayOrder: 1},
		jazz:    models.Collection{Name: "Jazz", Slug: "jazz", DisplayOrder: 2},
	}
	require.NoError(t, db.Create(&s.baroque).Error)
	require.NoError(t, db.Create(&s.jazz).Error)

	s.symphonies = models.Product{
		Slug:           "beethoven-symphonies",
		Title:          "Beethoven's Symphonies",
		Description:    "<p>Nine symphonies, one semester.</p>",
		Images:         []string{"/img/beethoven.jpg"},
		Featured:       true,
		PriceCents:     9000,
		CompareAtCents: 12000,
		Currency:       "USD",
		DisplayOrder:   1,
		Options: []models.ProductOption{
			{Name: "Color", Values: []string{"Red", "Blue"}, Swatches: datatypes.JSONMap{"Red": "#ff0000", "Blue": "#0000ff"}},
			{Name: "Size", Values: []string{"S", "M"}, DisplayOrder: 1},
		},
		Variants: []models.ProductVariant{
			{SKU: "red-s", OptionValues: datatypes.JSONMap{"Color": "Red", "Size": "S"}, PriceCents: 8000, CompareAtCents: 10000, InventoryQuantity: intRef(0)},
			{SKU: "red-m", OptionValues: datatypes.JSONMap{"Color": "Red", "Size": "M"}, PriceCents: 8500, CompareAtCents: 10000, InventoryQuantity: intRef(3), DisplayOrder: 1},
			{SKU: "blue-s", OptionValues: datatypes.JSONMap{"Color": "Blue", "Size": "S"}, PriceCents: 7000, InventoryQuantity: intRef(5), DisplayOrder: 2},
		},
		Collections: []models.Collection{s.baroque},
	}
	s.jazzIntro = models.Product{
		Slug:         "jazz-listening",
		Title:        "Jazz Listening Lab",
		PriceCents:   4900,
		Currency:     "USD",
		DisplayOrder: 2,
		Collections:  []models.Collection{s.jazz},
	}
	s.opera = models.Product{
		Slug:         "opera-basics",
		Title:        "Opera Basics",
		PriceCents:   3000,
		Currency:     "USD",
		Available:    boolRef(false),
		DisplayOrder: 3,
		Collections:  []models.Collection{s.baroque, s.jazz},
	}
	for _, p := range []*models.Product{&s.symphonies, &s.jazzIntro, &s.opera} {
		require.NoError(t, db.Create(p).Error)
	}
	return s
}
