package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is one catalog row. The three prices are volume tiers: Precio50U
// applies to orders of 1-99 units, Precio100U to 100-199 and Precio200U to
// 200 and up.
type Product struct {
	ID                 uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	TipoPrenda         string         `gorm:"size:100;not null" json:"tipo_prenda"`
	Talla              string         `gorm:"size:50" json:"talla"`
	Color              string         `gorm:"size:50" json:"color"`
	CantidadDisponible int            `gorm:"not null;default:0" json:"cantidad_disponible"`
	Precio50U          float64        `gorm:"not null" json:"precio_50_u"`
	Precio100U         float64        `gorm:"not null" json:"precio_100_u"`
	Precio200U         float64        `gorm:"not null" json:"precio_200_u"`
	Disponible         bool           `gorm:"default:true" json:"disponible"`
	Categoria          string         `gorm:"size:100" json:"categoria"`
	Descripcion        string         `gorm:"type:text" json:"descripcion"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// PriceForQuantity returns the unit price for an order of qty units.
func (p *Product) PriceForQuantity(qty int) float64 {
	switch {
	case qty >= 200:
		return p.Precio200U
	case qty >= 100:
		return p.Precio100U
	default:
		return p.Precio50U
	}
}

// Label is the short human-readable form used in prompts and replies.
func (p *Product) Label() string {
	s := p.TipoPrenda
	if p.Color != "" {
		s += " " + p.Color
	}
	if p.Talla != "" {
		s += " " + p.Talla
	}
	return s
}
