package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected int64
	}{
		{"whole dollars", 100, 10000},
		{"dollars with cents", 100.50, 10050},
		{"cents only", 0.99, 99},
		{"small amount", 1.23, 123},
		{"large amount", 9999.99, 999999},
		{"end to end amount", 49.99, 4999},
		{"half cent rounds up", 10.005, 1001},
		{"third decimal rounds up", 19.999, 2000},
		{"third decimal rounds down", 99.994, 9999},
		{"single decimal", 5.5, 550},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MinorUnits(tt.input))
		})
	}
}

func TestMinorUnits_Deterministic(t *testing.T) {
	// The rounding rule must not depend on call order or repetition.
	for i := 0; i < 100; i++ {
		assert.Equal(t, int64(2000), MinorUnits(19.999))
		assert.Equal(t, int64(1001), MinorUnits(10.005))
	}
}

func TestMajorUnits(t *testing.T) {
	tests := []struct {
		name     string
		input    int64
		expected float64
	}{
		{"whole dollars", 10000, 100},
		{"dollars with cents", 10050, 100.50},
		{"single cent", 1, 0.01},
		{"ten cents", 10, 0.10},
		{"large amount", 999999, 9999.99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MajorUnits(tt.input))
		})
	}
}

func TestMoneyConversion_RoundTrip(t *testing.T) {
	// Any amount with at most two decimal digits survives the round trip exactly.
	amounts := []float64{0.01, 0.10, 1, 1.23, 10.50, 49.99, 100, 9999.99, 123456.78}

	for _, a := range amounts {
		assert.Equal(t, a, MajorUnits(MinorUnits(a)), "amount=%v", a)
	}
}

func TestDecimalString(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"two decimals", 49.99, "49.99"},
		{"whole dollars", 100, "100.00"},
		{"single decimal", 5.5, "5.50"},
		{"cents only", 0.99, "0.99"},
		{"third decimal rounds up", 10.005, "10.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DecimalString(tt.input))
		})
	}
}

func TestParseDecimalString(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		f, err := ParseDecimalString("49.99")
		require.NoError(t, err)
		assert.Equal(t, 49.99, f)
	})

	t.Run("with whitespace", func(t *testing.T) {
		f, err := ParseDecimalString("  10.00  ")
		require.NoError(t, err)
		assert.Equal(t, 10.0, f)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseDecimalString("abc")
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseDecimalString("")
		assert.Error(t, err)
	})
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "usd", NormalizeCurrency("USD"))
	assert.Equal(t, "usd", NormalizeCurrency("usd"))
	assert.Equal(t, "eur", NormalizeCurrency(" EUR "))
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(0.01))
	assert.Error(t, ValidateAmount(0))
	assert.Error(t, ValidateAmount(-10))
}
