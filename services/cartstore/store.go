package cartstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/omanias/tienda-api/models"
)

// Service owns cart and cart-line persistence. Every mutating operation runs
// its validate-then-write sequence inside a single transaction, so a
// validation failure after the delete step cannot leave a cart half-updated.
//
// Stock is checked against the rows read in that transaction but never
// reserved; two concurrent mutations against the same product can still both
// pass validation and jointly oversell.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateCart persists a new cart from the qty > 0 lines of items. It fails
// with a ValidationError when no positive line remains, when a product is
// unavailable or when stock is insufficient, and with a NotFoundError when a
// referenced product does not exist.
func (s *Service) CreateCart(ctx context.Context, items []CartItemInput) (*CartDetail, error) {
	positive := dedupePositive(items)
	if len(positive) == 0 {
		return nil, models.NewValidationError("cart must have at least one item with qty > 0")
	}

	var cartID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateAgainstCatalog(tx, positive); err != nil {
			return err
		}
		cart := models.Cart{}
		for _, item := range positive {
			cart.Items = append(cart.Items, models.CartItem{ProductID: item.ProductID, Qty: item.Qty})
		}
		if err := tx.Create(&cart).Error; err != nil {
			return err
		}
		cartID = cart.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCartDetail(ctx, cartID)
}

// UpdateCart replaces the cart's lines wholesale: delete all, validate the
// new qty > 0 list exactly as in CreateCart, re-insert. An empty new list is
// allowed and yields an emptied cart.
func (s *Service) UpdateCart(ctx context.Context, cartID uint, items []CartItemInput) (*CartDetail, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.First(&cart, cartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("cart not found")
			}
			return err
		}
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		positive := dedupePositive(items)
		if len(positive) > 0 {
			if err := validateAgainstCatalog(tx, positive); err != nil {
				return err
			}
			newItems := make([]models.CartItem, 0, len(positive))
			for _, item := range positive {
				newItems = append(newItems, models.CartItem{CartID: cartID, ProductID: item.ProductID, Qty: item.Qty})
			}
			if err := tx.Create(&newItems).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Cart{}).Where("id = ?", cartID).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetCartDetail(ctx, cartID)
}

// GetCartDetail returns the priced projection of a cart.
func (s *Service) GetCartDetail(ctx context.Context, cartID uint) (*CartDetail, error) {
	var cart models.Cart
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id") }).
		Preload("Items.Product").
		First(&cart, cartID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("cart not found")
		}
		return nil, err
	}
	return buildDetail(&cart), nil
}

// UpdateLineItem sets the quantity of a single line, with the same stock and
// availability checks as a full update.
func (s *Service) UpdateLineItem(ctx context.Context, cartID, lineID uint, qty int) (*CartDetail, error) {
	if qty <= 0 {
		return nil, models.NewValidationError("qty must be positive; remove the line instead")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		if err := tx.Where("id = ? AND cart_id = ?", lineID, cartID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("cart item not found")
			}
			return err
		}
		if err := validateAgainstCatalog(tx, []CartItemInput{{ProductID: item.ProductID, Qty: qty}}); err != nil {
			return err
		}
		return tx.Model(&item).Update("qty", qty).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetCartDetail(ctx, cartID)
}

// RemoveLineItem deletes a single line from the cart.
func (s *Service) RemoveLineItem(ctx context.Context, cartID, lineID uint) (*CartDetail, error) {
	result := s.db.WithContext(ctx).Where("id = ? AND cart_id = ?", lineID, cartID).Delete(&models.CartItem{})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, models.NewNotFoundError("cart item not found")
	}
	return s.GetCartDetail(ctx, cartID)
}

// DeleteCart removes the cart and all of its lines.
func (s *Service) DeleteCart(ctx context.Context, cartID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.First(&cart, cartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("cart not found")
			}
			return err
		}
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cart).Error
	})
}

// dedupePositive drops qty <= 0 lines and collapses repeated product ids,
// last occurrence winning, preserving first-seen order.
func dedupePositive(items []CartItemInput) []CartItemInput {
	qtyByProduct := make(map[uint]int, len(items))
	order := make([]uint, 0, len(items))
	for _, item := range items {
		if item.Qty <= 0 {
			continue
		}
		if _, seen := qtyByProduct[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		qtyByProduct[item.ProductID] = item.Qty
	}
	out := make([]CartItemInput, 0, len(order))
	for _, id := range order {
		out = append(out, CartItemInput{ProductID: id, Qty: qtyByProduct[id]})
	}
	return out
}

// validateAgainstCatalog loads every referenced product inside the current
// transaction and checks existence, availability and stock.
func validateAgainstCatalog(tx *gorm.DB, items []CartItemInput) error {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	var products []models.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return err
	}
	if len(products) != len(ids) {
		return models.NewNotFoundError("some products not found")
	}
	byID := make(map[uint]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, item := range items {
		product := byID[item.ProductID]
		if !product.Disponible {
			return models.NewValidationError(fmt.Sprintf("product %d is not available", item.ProductID))
		}
		if product.CantidadDisponible < item.Qty {
			return models.NewValidationError(fmt.Sprintf("insufficient stock for product %d", item.ProductID))
		}
	}
	return nil
}
