package cartstore

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/omanias/tienda-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Cart{}, &models.CartItem{}))
	return db
}

func seedProducts(t *testing.T, db *gorm.DB) {
	t.Helper()
	products := []models.Product{
		{ID: 1, TipoPrenda: "Camiseta", Talla: "M", Color: "Rojo", CantidadDisponible: 100, Precio50U: 10, Precio100U: 8.5, Precio200U: 7, Disponible: true, Categoria: "Ropa"},
		{ID: 2, TipoPrenda: "Pantalón", Talla: "L", Color: "Negro", CantidadDisponible: 5, Precio50U: 25, Precio100U: 22, Precio200U: 20, Disponible: true, Categoria: "Ropa"},
		{ID: 3, TipoPrenda: "Gorra", Talla: "U", Color: "Azul", CantidadDisponible: 50, Precio50U: 5, Precio100U: 4, Precio200U: 3, Disponible: false, Categoria: "Accesorios"},
	}
	require.NoError(t, db.Create(&products).Error)
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestCreateCart(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path prices lines by tier", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		detail, err := svc.CreateCart(ctx, []CartItemInput{
			{ProductID: 1, Qty: 100},
			{ProductID: 2, Qty: 2},
		})
		require.NoError(t, err)
		require.Len(t, detail.Items, 2)
		assert.Equal(t, 8.5, detail.Items[0].UnitPrice)
		assert.Equal(t, 850.0, detail.Items[0].Subtotal)
		assert.Equal(t, 25.0, detail.Items[1].UnitPrice)
		assert.Equal(t, 900.0, detail.Total)
		assert.Equal(t, 102, detail.ItemCount)
	})

	t.Run("empty input fails validation", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		_, err := svc.CreateCart(ctx, nil)
		assert.True(t, models.IsValidation(err))
	})

	t.Run("all-zero quantities fail validation", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		_, err := svc.CreateCart(ctx, []CartItemInput{{ProductID: 1, Qty: 0}, {ProductID: 2, Qty: 0}})
		assert.True(t, models.IsValidation(err))
		assert.Zero(t, countRows(t, db, &models.Cart{}))
	})

	t.Run("zero-quantity lines are filtered, positive ones kept", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		detail, err := svc.CreateCart(ctx, []CartItemInput{{ProductID: 1, Qty: 0}, {ProductID: 2, Qty: 3}})
		require.NoError(t, err)
		require.Len(t, detail.Items, 1)
		assert.Equal(t, uint(2), detail.Items[0].ProductID)
	})

	t.Run("unknown product fails with not found and no write", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		_, err := svc.CreateCart(ctx, []CartItemInput{{ProductID: 1, Qty: 1}, {ProductID: 999, Qty: 1}})
		assert.True(t, models.IsNotFound(err))
		assert.Zero(t, countRows(t, db, &models.Cart{}))
		assert.Zero(t, countRows(t, db, &models.CartItem{}))
	})

	t.Run("insufficient stock fails with validation and no write", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		_, err := svc.CreateCart(ctx, []CartItemInput{{ProductID: 2, Qty: 6}})
		assert.True(t, models.IsValidation(err))
		assert.Zero(t, countRows(t, db, &models.Cart{}))
	})

	t.Run("unavailable product fails validation", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		_, err := svc.CreateCart(ctx, []CartItemInput{{ProductID: 3, Qty: 1}})
		assert.True(t, models.IsValidation(err))
	})

	t.Run("repeated product ids collapse to one line, last wins", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		detail, err := svc.CreateCart(ctx, []CartItemInput{{ProductID: 1, Qty: 2}, {ProductID: 1, Qty: 4}})
		require.NoError(t, err)
		require.Len(t, detail.Items, 1)
		assert.Equal(t, 4, detail.Items[0].Qty)
	})
}

func TestUpdateCart(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces lines wholesale", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		detail, err := svc.CreateCart(ctx, []CartItemInput{{ProductID: 1, Qty: 2}})
		require.NoError(t, err)

		updated, err := svc.UpdateCart(ctx, detail.ID, []CartItemInput{{ProductID: 2, Qty: 3}})
		require.NoError(t, err)
		require.Len(t, updated.Items, 1)
		assert.Equal(t, uint(2), updated.Items[0].ProductID)
		assert.Equal(t, int64(1), countRows(t, db, &models.CartItem{}))
	})

	t.Run("empty list empties the cart without deleting it", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		detail, err := svc.CreateCart(ctx, []CartItemInput{{ProductID: 1, Qty: 2}})
		require.NoError(t, err)

		updated, err := svc.UpdateCart(ctx, detail.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, updated.Items)
		assert.Zero(t, updated.Total)
		assert.Equal(t, int64(1), countRows(t, db, &models.Cart{}))
	})

	t.Run("missing cart fails with not found", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		_, err := svc.UpdateCart(ctx, 42, []CartItemInput{{ProductID: 1, Qty: 1}})
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("mid-update validation failure preserves the original lines", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		detail, err := svc.CreateCart(ctx, []CartItemInput{{ProductID: 1, Qty: 2}})
		require.NoError(t, err)

		// the second line exceeds product 2's stock; the whole update must
		// roll back, including the delete step that precedes validation
		_, err = svc.UpdateCart(ctx, detail.ID, []CartItemInput{
			{ProductID: 1, Qty: 1},
			{ProductID: 2, Qty: 999},
		})
		require.True(t, models.IsValidation(err))

		after, err := svc.GetCartDetail(ctx, detail.ID)
		require.NoError(t, err)
		require.Len(t, after.Items, 1)
		assert.Equal(t, uint(1), after.Items[0].ProductID)
		assert.Equal(t, 2, after.Items[0].Qty)
	})
}

func TestGetCartDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("missing cart fails with not found", func(t *testing.T) {
		db := newTestDB(t)
		svc := New(db)

		_, err := svc.GetCartDetail(ctx, 1)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("re-fetch is idempotent", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		detail, err := svc.CreateCart(ctx, []CartItemInput{{ProductID: 1, Qty: 2}, {ProductID: 2, Qty: 1}})
		require.NoError(t, err)

		first, err := svc.GetCartDetail(ctx, detail.ID)
		require.NoError(t, err)
		second, err := svc.GetCartDetail(ctx, detail.ID)
		require.NoError(t, err)

		assert.Equal(t, first.Total, second.Total)
		assert.Equal(t, first.ItemCount, second.ItemCount)
		assert.Equal(t, len(first.Items), len(second.Items))
	})
}

func TestLineItemOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("update line quantity reprices the cart", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		detail, err := svc.CreateCart(ctx, []CartItemInput{{ProductID: 1, Qty: 2}})
		require.NoError(t, err)
		line := detail.Items[0]

		updated, err := svc.UpdateLineItem(ctx, detail.ID, line.ID, 100)
		require.NoError(t, err)
		assert.Equal(t, 100, updated.Items[0].Qty)
		assert.Equal(t, 8.5, updated.Items[0].UnitPrice)
	})

	t.Run("update line rejects non-positive quantity", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		detail, err := svc.CreateCart(ctx, []CartItemInput{{ProductID: 1, Qty: 2}})
		require.NoError(t, err)

		_, err = svc.UpdateLineItem(ctx, detail.ID, detail.Items[0].ID, 0)
		assert.True(t, models.IsValidation(err))
	})

	t.Run("update line checks stock", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		detail, err := svc.CreateCart(ctx, []CartItemInput{{ProductID: 2, Qty: 1}})
		require.NoError(t, err)

		_, err = svc.UpdateLineItem(ctx, detail.ID, detail.Items[0].ID, 6)
		assert.True(t, models.IsValidation(err))
	})

	t.Run("remove line leaves the rest of the cart", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		detail, err := svc.CreateCart(ctx, []CartItemInput{{ProductID: 1, Qty: 2}, {ProductID: 2, Qty: 1}})
		require.NoError(t, err)

		updated, err := svc.RemoveLineItem(ctx, detail.ID, detail.Items[0].ID)
		require.NoError(t, err)
		require.Len(t, updated.Items, 1)
		assert.Equal(t, uint(2), updated.Items[0].ProductID)
	})

	t.Run("remove missing line fails with not found", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		detail, err := svc.CreateCart(ctx, []CartItemInput{{ProductID: 1, Qty: 2}})
		require.NoError(t, err)

		_, err = svc.RemoveLineItem(ctx, detail.ID, 999)
		assert.True(t, models.IsNotFound(err))
	})
}

func TestDeleteCart(t *testing.T) {
	ctx := context.Background()

	t.Run("removes cart and lines", func(t *testing.T) {
		db := newTestDB(t)
		seedProducts(t, db)
		svc := New(db)

		detail, err := svc.CreateCart(ctx, []CartItemInput{{ProductID: 1, Qty: 2}})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteCart(ctx, detail.ID))
		assert.Zero(t, countRows(t, db, &models.Cart{}))
		assert.Zero(t, countRows(t, db, &models.CartItem{}))
	})

	t.Run("missing cart fails with not found", func(t *testing.T) {
		db := newTestDB(t)
		svc := New(db)
		assert.True(t, models.IsNotFound(svc.DeleteCart(ctx, 7)))
	})
}
