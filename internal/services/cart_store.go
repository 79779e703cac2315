package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/encore/internal/models"
	"github.com/example/encore/internal/storefront"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrVariantNotFound = errors.New("variant not found")
	ErrNotPurchasable  = errors.New("selection cannot be added to the cart")
)

// CartStore is the process-wide owner of shopper carts. Carts are cached
// after their first load and every mutation is written through to the
// database before it becomes visible.
type CartStore struct {
	db      *gorm.DB
	catalog *CatalogService
	log     *zap.Logger
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	carts map[uuid.UUID]cachedCart
}

type cachedCart struct {
	cart    storefront.Cart
	touched time.Time
}

// NewCartStore constructs CartStore. Carts idle for longer than ttl expire.
func NewCartStore(db *gorm.DB, catalog *CatalogService, log *zap.Logger, ttl time.Duration) *CartStore {
	return &CartStore{
		db:      db,
		catalog: catalog,
		log:     log,
		ttl:     ttl,
		now:     time.Now,
		carts:   make(map[uuid.UUID]cachedCart),
	}
}

// Open creates a new empty cart.
func (s *CartStore) Open(ctx context.Context) (storefront.Cart, error) {
	now := s.now()
	row := models.Cart{LastActivityAt: now}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return storefront.Cart{}, fmt.Errorf("create cart: %w", err)
	}

	cart := storefront.Cart{ID: row.Key(), Lines: []storefront.CartLine{}}

	s.mu.Lock()
	s.carts[row.ID] = cachedCart{cart: cart, touched: now}
	s.mu.Unlock()

	s.log.Debug("cart opened", zap.String("cart_id", cart.ID))
	return cart, nil
}

// Load returns the cart with the given id.
func (s *CartStore) Load(ctx context.Context, id uuid.UUID) (storefront.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx, id)
}

// AddLine adds qty of a product variant to the cart, merging with an
// existing line. The selection must be purchasable.
func (s *CartStore) AddLine(ctx context.Context, id uuid.UUID, productID, variantID string, qty int) (storefront.Cart, error) {
	if qty < 1 {
		return storefront.Cart{}, storefront.ErrInvalidQuantity
	}
	if err := s.checkPurchasable(ctx, productID, variantID); err != nil {
		return storefront.Cart{}, err
	}

	return s.mutate(ctx, id, func(c storefront.Cart) (storefront.Cart, error) {
		return c.Add(productID, variantID, qty)
	})
}

// UpdateLine sets the quantity of a line; zero or less removes it.
func (s *CartStore) UpdateLine(ctx context.Context, id uuid.UUID, productID, variantID string, qty int) (storefront.Cart, error) {
	return s.mutate(ctx, id, func(c storefront.Cart) (storefront.Cart, error) {
		return c.SetQuantity(productID, variantID, qty)
	})
}

// RemoveLine drops a line from the cart.
func (s *CartStore) RemoveLine(ctx context.Context, id uuid.UUID, productID, variantID string) (storefront.Cart, error) {
	return s.mutate(ctx, id, func(c storefront.Cart) (storefront.Cart, error) {
		return c.Remove(productID, variantID)
	})
}

// TotalItems is the sum of line quantities of the cart.
func (s *CartStore) TotalItems(ctx context.Context, id uuid.UUID) (int, error) {
	cart, err := s.Load(ctx, id)
	if err != nil {
		return 0, err
	}
	return cart.TotalItems(), nil
}

// View prices the cart against the current catalog.
func (s *CartStore) View(ctx context.Context, id uuid.UUID, currency string) (storefront.CartView, error) {
	cart, err := s.Load(ctx, id)
	if err != nil {
		return storefront.CartView{}, err
	}

	ids := make([]string, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return storefront.CartView{}, err
	}
	return storefront.BuildCartView(cart, products, currency), nil
}

// Forget ends a cart session and deletes the cart.
func (s *CartStore) Forget(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&models.CartLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Cart{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("delete cart %s: %w", id, err)
	}

	delete(s.carts, id)
	return nil
}

// PurgeExpired deletes every cart idle for longer than the store's TTL and
// returns how many were removed.
func (s *CartStore) PurgeExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	var ids []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Cart{}).
		Where("last_activity_at < ?", cutoff).
		Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("find expired carts: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id IN ?", ids).Delete(&models.CartLine{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Cart{})
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("purge expired carts: %w", err)
	}

	for _, id := range ids {
		delete(s.carts, id)
	}
	return removed, nil
}

func (s *CartStore) checkPurchasable(ctx context.Context, productID, variantID string) error {
	p, err := s.catalog.ProductByID(ctx, productID)
	if err != nil {
		return err
	}

	sel := storefront.Selection{}
	if variantID != "" {
		v, ok := p.VariantByID(variantID)
		if !ok {
			return ErrVariantNotFound
		}
		sel = storefront.SelectionOf(v)
	}

	if !storefront.Resolve(p, sel).CanAddToCart {
		return ErrNotPurchasable
	}
	return nil
}

func (s *CartStore) mutate(ctx context.Context, id uuid.UUID, fn func(storefront.Cart) (storefront.Cart, error)) (storefront.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.loadLocked(ctx, id)
	if err != nil {
		return storefront.Cart{}, err
	}

	next, err := fn(cart)
	if err != nil {
		return cart, err
	}

	touched := s.now()
	if err := s.persist(ctx, id, next, touched); err != nil {
		return cart, err
	}
	s.carts[id] = cachedCart{cart: next, touched: touched}
	return next, nil
}

func (s *CartStore) loadLocked(ctx context.Context, id uuid.UUID) (storefront.Cart, error) {
	if cached, ok := s.carts[id]; ok {
		if s.expired(cached.touched) {
			delete(s.carts, id)
			return storefront.Cart{}, ErrCartNotFound
		}
		return cached.cart, nil
	}

	var row models.Cart
	err := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storefront.Cart{}, ErrCartNotFound
	}
	if err != nil {
		return storefront.Cart{}, fmt.Errorf("load cart %s: %w", id, err)
	}
	if s.expired(row.LastActivityAt) {
		return storefront.Cart{}, ErrCartNotFound
	}

	cart := storefront.Cart{ID: row.Key(), Lines: make([]storefront.CartLine, 0, len(row.Lines))}
	for _, l := range row.Lines {
		line := storefront.CartLine{ProductID: l.ProductID.String(), Quantity: l.Quantity}
		if l.VariantID != nil {
			line.VariantID = l.VariantID.String()
		}
		cart.Lines = append(cart.Lines, line)
	}
	s.carts[id] = cachedCart{cart: cart, touched: row.LastActivityAt}
	return cart, nil
}

// expired reports whether a cart last touched at t has been idle past the TTL.
func (s *CartStore) expired(t time.Time) bool {
	return s.ttl > 0 && t.Before(s.now().Add(-s.ttl))
}

// persist rewrites the cart's lines in one transaction.
func (s *CartStore) persist(ctx context.Context, id uuid.UUID, cart storefront.Cart, touched time.Time) error {
	rows := make([]models.CartLine, 0, len(cart.Lines))
	for i, l := range cart.Lines {
		productID, err := uuid.Parse(l.ProductID)
		if err != nil {
			return ErrProductNotFound
		}
		row := models.CartLine{CartID: id, ProductID: productID, Quantity: l.Quantity, Position: i}
		if l.VariantID != "" {
			variantID, err := uuid.Parse(l.VariantID)
			if err != nil {
				return ErrVariantNotFound
			}
			row.VariantID = &variantID
		}
		rows = append(rows, row)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&models.CartLine{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Cart{}).Where("id = ?", id).Update("last_activity_at", touched).Error
	})
	if err != nil {
		return fmt.Errorf("save cart %s: %w", id, err)
	}
	return nil
}
