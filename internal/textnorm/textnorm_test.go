package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"São Paulo":              "sao paulo",
		"sao paulo":              "sao paulo",
		"  MARÍTIMOS  2024 ":     "maritimos 2024",
		"Precio/Kg (USD)":        "preciokg (usd)",
		"Ñandú,\tcañón!":         "nandu canon",
		"USA & Canadá":           "usa canada",
		"40' HC":                 "40 hc",
		"":                       "",
		"Mínimo\nKG":             "minimo kg",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"São Paulo", "Aéreos 2024", "PVG - Shanghai (Pudong)", "Ürümqi!!"} {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("EZE - Buenos Aires", "eze"))
	assert.True(t, Contains("Marítimo LCL", "MARITIMO"))
	assert.False(t, Contains("Santos", ""))
	assert.False(t, Contains("Santos", "Valencia"))
}
