package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceForQuantity(t *testing.T) {
	p := Product{
		TipoPrenda: "Camisa",
		Talla:      "M",
		Color:      "Azul",
		Precio50U:  10.00,
		Precio100U: 8.50,
		Precio200U: 7.00,
	}

	cases := []struct {
		qty  int
		want float64
	}{
		{1, 10.00},
		{50, 10.00},
		{99, 10.00},
		{100, 8.50},
		{150, 8.50},
		{199, 8.50},
		{200, 7.00},
		{500, 7.00},
		{1000, 7.00},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, p.PriceForQuantity(tc.qty), "qty=%d", tc.qty)
	}
}

func TestLabel(t *testing.T) {
	p := Product{TipoPrenda: "Camiseta", Color: "Rojo", Talla: "M"}
	assert.Equal(t, "Camiseta Rojo M", p.Label())

	bare := Product{TipoPrenda: "Gorra"}
	assert.Equal(t, "Gorra", bare.Label())
}
