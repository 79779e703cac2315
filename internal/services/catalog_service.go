package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/encore/internal/models"
	"github.com/example/encore/internal/storefront"
	"github.com/example/encore/internal/utils"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrCollectionNotFound = errors.New("collection not found")
)

// CatalogService reads collections and products for the storefront.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService constructs CatalogService.
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListCollections returns every collection in display order.
func (s *CatalogService) ListCollections(ctx context.Context) ([]storefront.Collection, error) {
	var rows []models.Collection
	if err := s.db.WithContext(ctx).Order("display_order asc, name asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	out := make([]storefront.Collection, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToStorefrontCollection(row))
	}
	return out, nil
}

// ListProducts returns the products matching filter. A collection id that
// is not a valid id yields an empty result, like an unknown one.
func (s *CatalogService) ListProducts(ctx context.Context, filter storefront.ProductFilter) ([]storefront.Product, error) {
	products, _, err := s.PageProducts(ctx, filter, -1, 0)
	return products, err
}

// PageProducts returns one page of products plus the total match count.
// A negative limit disables paging.
func (s *CatalogService) PageProducts(ctx context.Context, filter storefront.ProductFilter, limit, offset int) ([]storefront.Product, int64, error) {
	query, ok := s.productQuery(ctx, filter)
	if !ok {
		return []storefront.Product{}, 0, nil
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	var rows []models.Product
	q := preloadProduct(query).Order("display_order asc, created_at desc")
	if limit >= 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	out := make([]storefront.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToStorefrontProduct(row))
	}
	return out, total, nil
}

// ProductBySlug loads one product with its options, variants and collections.
func (s *CatalogService) ProductBySlug(ctx context.Context, slug string) (storefront.Product, error) {
	var row models.Product
	err := preloadProduct(s.db.WithContext(ctx)).First(&row, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storefront.Product{}, ErrProductNotFound
	}
	if err != nil {
		return storefront.Product{}, fmt.Errorf("load product %q: %w", slug, err)
	}
	return ToStorefrontProduct(row), nil
}

// ProductByID loads one product by id.
func (s *CatalogService) ProductByID(ctx context.Context, id string) (storefront.Product, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return storefront.Product{}, ErrProductNotFound
	}

	var row models.Product
	err = preloadProduct(s.db.WithContext(ctx)).First(&row, "id = ?", pid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storefront.Product{}, ErrProductNotFound
	}
	if err != nil {
		return storefront.Product{}, fmt.Errorf("load product %s: %w", id, err)
	}
	return ToStorefrontProduct(row), nil
}

// ProductsByIDs loads the given products keyed by id. Unknown ids are skipped.
func (s *CatalogService) ProductsByIDs(ctx context.Context, ids []string) (map[string]storefront.Product, error) {
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if pid, err := uuid.Parse(id); err == nil {
			parsed = append(parsed, pid)
		}
	}

	out := make(map[string]storefront.Product, len(parsed))
	if len(parsed) == 0 {
		return out, nil
	}

	var rows []models.Product
	if err := preloadProduct(s.db.WithContext(ctx)).Where("id IN ?", parsed).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	for _, row := range rows {
		p := ToStorefrontProduct(row)
		out[p.ID] = p
	}
	return out, nil
}

// CollectionByID loads one collection.
func (s *CatalogService) CollectionByID(ctx context.Context, id string) (storefront.Collection, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return storefront.Collection{}, ErrCollectionNotFound
	}

	var row models.Collection
	err = s.db.WithContext(ctx).First(&row, "id = ?", cid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storefront.Collection{}, ErrCollectionNotFound
	}
	if err != nil {
		return storefront.Collection{}, fmt.Errorf("load collection %s: %w", id, err)
	}
	return ToStorefrontCollection(row), nil
}

func (s *CatalogService) productQuery(ctx context.Context, filter storefront.ProductFilter) (*gorm.DB, bool) {
	query := s.db.WithContext(ctx).Model(&models.Product{})

	if filter.CollectionID != "" {
		cid, err := uuid.Parse(filter.CollectionID)
		if err != nil {
			return nil, false
		}
		members := s.db.Table("product_collections").Select("product_id").Where("collection_id = ?", cid)
		query = query.Where("id IN (?)", members)
	}
	if filter.FeaturedOnly {
		query = query.Where("featured = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(title) LIKE ? ESCAPE '"+utils.LikeEscape+"'", utils.ContainsPattern(strings.ToLower(search)))
	}
	return query.Session(&gorm.Session{}), true
}

func preloadProduct(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order asc")
		}).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order asc")
		}).
		Preload("Collections")
}

// ToStorefrontProduct converts a persisted product into its storefront form.
func ToStorefrontProduct(row models.Product) storefront.Product {
	p := storefront.Product{
		ID:          row.Key(),
		Title:       row.Title,
		Description: row.Description,
		Slug:        row.Slug,
		Images:      append([]string{}, row.Images...),
		Featured:    row.Featured,
		Price:       row.PriceCents,
		CompareAt:   row.CompareAtCents,
		Currency:    row.Currency,
		Stock:       row.InventoryQuantity,
		Available:   row.Available,
	}

	for _, opt := range row.Options {
		p.Options = append(p.Options, storefront.Option{
			Name:     opt.Name,
			Values:   append([]string{}, opt.Values...),
			Swatches: stringMap(opt.Swatches),
		})
	}
	for _, v := range row.Variants {
		p.Variants = append(p.Variants, storefront.Variant{
			ID:        v.Key(),
			Options:   stringMap(v.OptionValues),
			Price:     v.PriceCents,
			CompareAt: v.CompareAtCents,
			Stock:     v.InventoryQuantity,
			Available: v.Available,
			Image:     v.Image,
		})
	}
	for _, c := range row.Collections {
		p.CollectionIDs = append(p.CollectionIDs, c.Key())
	}
	return p
}

// ToStorefrontCollection converts a persisted collection.
func ToStorefrontCollection(row models.Collection) storefront.Collection {
	return storefront.Collection{
		ID:          row.Key(),
		Name:        row.Name,
		Slug:        row.Slug,
		Description: row.Description,
		Image:       row.Image,
	}
}

func stringMap(m map[string]interface{}) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
