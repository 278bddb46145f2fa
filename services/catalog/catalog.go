package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/omanias/tienda-api/models"
)

// Service owns read/write access to the product catalog.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CreateProductInput struct {
	TipoPrenda         string  `json:"tipo_prenda" binding:"required"`
	Talla              string  `json:"talla"`
	Color              string  `json:"color"`
	CantidadDisponible int     `json:"cantidad_disponible" binding:"min=0"`
	Precio50U          float64 `json:"precio_50_u" binding:"min=0"`
	Precio100U         float64 `json:"precio_100_u" binding:"min=0"`
	Precio200U         float64 `json:"precio_200_u" binding:"min=0"`
	Disponible         *bool   `json:"disponible"`
	Categoria          string  `json:"categoria"`
	Descripcion        string  `json:"descripcion"`
}

type UpdateProductInput struct {
	TipoPrenda         *string  `json:"tipo_prenda"`
	Talla              *string  `json:"talla"`
	Color              *string  `json:"color"`
	CantidadDisponible *int     `json:"cantidad_disponible" binding:"omitempty,min=0"`
	Precio50U          *float64 `json:"precio_50_u" binding:"omitempty,min=0"`
	Precio100U         *float64 `json:"precio_100_u" binding:"omitempty,min=0"`
	Precio200U         *float64 `json:"precio_200_u" binding:"omitempty,min=0"`
	Disponible         *bool    `json:"disponible"`
	Categoria          *string  `json:"categoria"`
	Descripcion        *string  `json:"descripcion"`
}

// FindAll returns the catalog, optionally filtered by a case-insensitive
// substring match across tipo_prenda, categoria, color and descripcion.
func (s *Service) FindAll(ctx context.Context, q string) ([]models.Product, error) {
	var products []models.Product
	tx := s.db.WithContext(ctx)
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where(
			"LOWER(tipo_prenda) LIKE ? OR LOWER(categoria) LIKE ? OR LOWER(color) LIKE ? OR LOWER(descripcion) LIKE ?",
			like, like, like, like,
		)
	}
	if err := tx.Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) FindOne(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("product not found")
		}
		return nil, err
	}
	return &product, nil
}

func (s *Service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	disponible := true
	if input.Disponible != nil {
		disponible = *input.Disponible
	}
	product := models.Product{
		TipoPrenda:         input.TipoPrenda,
		Talla:              input.Talla,
		Color:              input.Color,
		CantidadDisponible: input.CantidadDisponible,
		Precio50U:          input.Precio50U,
		Precio100U:         input.Precio100U,
		Precio200U:         input.Precio200U,
		Disponible:         disponible,
		Categoria:          input.Categoria,
		Descripcion:        input.Descripcion,
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Service) Update(ctx context.Context, id uint, input UpdateProductInput) (*models.Product, error) {
	product, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.TipoPrenda != nil {
		product.TipoPrenda = *input.TipoPrenda
	}
	if input.Talla != nil {
		product.Talla = *input.Talla
	}
	if input.Color != nil {
		product.Color = *input.Color
	}
	if input.CantidadDisponible != nil {
		product.CantidadDisponible = *input.CantidadDisponible
	}
	if input.Precio50U != nil {
		product.Precio50U = *input.Precio50U
	}
	if input.Precio100U != nil {
		product.Precio100U = *input.Precio100U
	}
	if input.Precio200U != nil {
		product.Precio200U = *input.Precio200U
	}
	if input.Disponible != nil {
		product.Disponible = *input.Disponible
	}
	if input.Categoria != nil {
		product.Categoria = *input.Categoria
	}
	if input.Descripcion != nil {
		product.Descripcion = *input.Descripcion
	}
	if err := s.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	product, err := s.FindOne(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(product).Error
}
