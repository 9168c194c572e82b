package core_test

import (
	"encoding/json"
	"testing"

	"billing-engine/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNonNegativeNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"100", "100"},
		{" 12.50 ", "12.5"},
		{"12.5kg", "12.5"},
		{"12.", "12"},
		{".5", "0.5"},
		{"+7", "7"},
		{"", "0"},
		{"abc", "0"},
		{"-3", "0"},
		{"-0.01", "0"},
		{".", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := core.ParseNonNegativeNumber(tt.input)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"3", 3},
		{"2.9", 2},
		{"10 pcs", 10},
		{"", 0},
		{"x", 0},
		{"-4", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, core.ParseQuantity(tt.input))
		})
	}
}

func TestNumericText_UnmarshalJSON(t *testing.T) {
	var v struct {
		A core.NumericText `json:"a"`
		B core.NumericText `json:"b"`
		C core.NumericText `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":1.50,"b":" 2x ","c":null}`), &v))
	assert.Equal(t, "1.50", v.A.String())
	assert.Equal(t, "2x", v.B.String())
	assert.Equal(t, "", v.C.String())
	assert.Equal(t, 2, core.ParseQuantity(v.B.String()))

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}
