package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/encore/internal/models"
	"github.com/example/encore/internal/storefront"
)

func newTestCartStore(t *testing.T) (*CartStore, seededCatalog) {
	t.Helper()
	db := newTestDB(t)
	seed := seedCatalog(t, db)
	return NewCartStore(db, NewCatalogService(db), zap.NewNop(), 24*time.Hour), seed
}

func TestCartStore_AddLineMergesAndPersists(t *testing.T) {
	store, seed := newTestCartStore(t)
	ctx := context.Background()

	cart, err := store.Open(ctx)
	require.NoError(t, err)
	id := uuid.MustParse(cart.ID)
	redM := seed.variant("red-m").Key()

	_, err = store.AddLine(ctx, id, seed.symphonies.Key(), redM, 1)
	require.NoError(t, err)
	_, err = store.AddLine(ctx, id, seed.jazzIntro.Key(), "", 2)
	require.NoError(t, err)
	cart, err = store.AddLine(ctx, id, seed.symphonies.Key(), redM, 2)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 2)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.Equal(t, 5, cart.TotalItems())

	// A fresh store reads the same cart back from the database.
	fresh := NewCartStore(store.db, store.catalog, zap.NewNop(), 24*time.Hour)
	loaded, err := fresh.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, cart, loaded)

	total, err := fresh.TotalItems(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestCartStore_AddLineRejections(t *testing.T) {
	store, seed := newTestCartStore(t)
	ctx := context.Background()
	cart, err := store.Open(ctx)
	require.NoError(t, err)
	id := uuid.MustParse(cart.ID)

	_, err = store.AddLine(ctx, id, seed.symphonies.Key(), seed.variant("red-s").Key(), 1)
	assert.ErrorIs(t, err, ErrNotPurchasable, "sold out variant")

	_, err = store.AddLine(ctx, id, seed.symphonies.Key(), "", 1)
	assert.ErrorIs(t, err, ErrNotPurchasable, "variant not chosen")

	_, err = store.AddLine(ctx, id, seed.opera.Key(), "", 1)
	assert.ErrorIs(t, err, ErrNotPurchasable, "product marked unavailable")

	_, err = store.AddLine(ctx, id, seed.symphonies.Key(), uuid.NewString(), 1)
	assert.ErrorIs(t, err, ErrVariantNotFound)

	_, err = store.AddLine(ctx, id, uuid.NewString(), "", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = store.AddLine(ctx, id, seed.jazzIntro.Key(), "", 0)
	assert.ErrorIs(t, err, storefront.ErrInvalidQuantity)

	_, err = store.AddLine(ctx, uuid.New(), seed.jazzIntro.Key(), "", 1)
	assert.ErrorIs(t, err, ErrCartNotFound)

	cart, err = store.Load(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCartStore_UpdateAndRemove(t *testing.T) {
	store, seed := newTestCartStore(t)
	ctx := context.Background()
	cart, err := store.Open(ctx)
	require.NoError(t, err)
	id := uuid.MustParse(cart.ID)
	jazz := seed.jazzIntro.Key()
	blueS := seed.variant("blue-s").Key()

	_, err = store.AddLine(ctx, id, jazz, "", 1)
	require.NoError(t, err)
	_, err = store.AddLine(ctx, id, seed.symphonies.Key(), blueS, 1)
	require.NoError(t, err)

	cart, err = store.UpdateLine(ctx, id, jazz, "", 4)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.TotalItems())

	cart, err = store.UpdateLine(ctx, id, jazz, "", 0)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, blueS, cart.Lines[0].VariantID)

	cart, err = store.RemoveLine(ctx, id, seed.symphonies.Key(), blueS)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	_, err = store.RemoveLine(ctx, id, jazz, "")
	assert.ErrorIs(t, err, storefront.ErrLineNotFound)
}

func TestCartStore_View(t *testing.T) {
	store, seed := newTestCartStore(t)
	ctx := context.Background()
	cart, err := store.Open(ctx)
	require.NoError(t, err)
	id := uuid.MustParse(cart.ID)

	_, err = store.AddLine(ctx, id, seed.symphonies.Key(), seed.variant("red-m").Key(), 2)
	require.NoError(t, err)

	view, err := store.View(ctx, id, "USD")
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "Beethoven's Symphonies", view.Lines[0].Title)
	assert.Equal(t, "$170.00", view.Subtotal.Display)
	assert.Equal(t, "2", view.Badge)
}

func TestCartStore_ConcurrentAddsAreSerialised(t *testing.T) {
	store, seed := newTestCartStore(t)
	ctx := context.Background()
	cart, err := store.Open(ctx)
	require.NoError(t, err)
	id := uuid.MustParse(cart.ID)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AddLine(ctx, id, seed.jazzIntro.Key(), "", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	total, err := store.TotalItems(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
}

func TestCartStore_ForgetAndPurge(t *testing.T) {
	store, seed := newTestCartStore(t)
	ctx := context.Background()

	kept, err := store.Open(ctx)
	require.NoError(t, err)
	forgotten, err := store.Open(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Forget(ctx, uuid.MustParse(forgotten.ID)))
	_, err = store.Load(ctx, uuid.MustParse(forgotten.ID))
	assert.ErrorIs(t, err, ErrCartNotFound)

	keptID := uuid.MustParse(kept.ID)
	_, err = store.AddLine(ctx, keptID, seed.jazzIntro.Key(), "", 1)
	require.NoError(t, err)

	removed, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)

	store.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	removed, err = store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = store.Load(ctx, keptID)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestCartStore_CachedCartExpires(t *testing.T) {
	store, seed := newTestCartStore(t)
	ctx := context.Background()

	cart, err := store.Open(ctx)
	require.NoError(t, err)
	id := uuid.MustParse(cart.ID)
	_, err = store.AddLine(ctx, id, seed.jazzIntro.Key(), "", 1)
	require.NoError(t, err)

	var before models.Cart
	require.NoError(t, store.db.First(&before, "id = ?", id).Error)

	store.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err = store.Load(ctx, id)
	assert.ErrorIs(t, err, ErrCartNotFound)

	// A write must not bring the idle cart back.
	_, err = store.AddLine(ctx, id, seed.jazzIntro.Key(), "", 1)
	assert.ErrorIs(t, err, ErrCartNotFound)

	var after models.Cart
	require.NoError(t, store.db.First(&after, "id = ?", id).Error)
	assert.True(t, before.LastActivityAt.Equal(after.LastActivityAt))

	fresh := NewCartStore(store.db, store.catalog, zap.NewNop(), 24*time.Hour)
	fresh.now = store.now
	_, err = fresh.Load(ctx, id)
	assert.ErrorIs(t, err, ErrCartNotFound)
}
