package filters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("AliasesAndTables", func(t *testing.T) {
		got, rejected, err := Normalize(map[string]any{
			"price_min":    "2 000 000 тг",
			"price_max":    7,
			"year_min":     "2015",
			"body_type":    "Седан",
			"transmission": "автомат",
			"brand":        "Toyota",
			"color":        "белый",
		})
		require.NoError(t, err)
		assert.Empty(t, rejected)
		assert.Equal(t, Set{
			KeyPriceFrom:    int64(2000000),
			KeyPriceTo:      int64(7000000),
			KeyYearFrom:     int64(2015),
			KeyBodyType:     "sedan",
			KeyTransmission: "AKPP",
			KeyBrand:        "Toyota",
		}, got)
	})

	t.Run("PriceToInMillions", func(t *testing.T) {
		for _, raw := range []any{5000000, 5, "5", "5 млн", json.Number("5")} {
			got, _, err := Normalize(map[string]any{"priceTo": raw})
			require.NoError(t, err)
			assert.Equal(t, int64(5000000), got[KeyPriceTo], "raw=%v", raw)
		}
	})

	t.Run("AnyValuesDropped", func(t *testing.T) {
		got, _, err := Normalize(map[string]any{
			"brand":     "Any",
			"model":     "любая",
			"bodyType":  "ЛЮБОЙ",
			"yearFrom":  "any",
			"fuel":      "любой",
			"something": "keep",
		})
		require.NoError(t, err)
		assert.Equal(t, Set{"something": "keep"}, got)
	})

	t.Run("FalsyValuesSkipped", func(t *testing.T) {
		got, _, err := Normalize(map[string]any{
			"brand":    "",
			"priceTo":  0,
			"model":    nil,
			"yearTo":   false,
			"yearFrom": json.Number("0"),
		})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("UnknownEnumDropped", func(t *testing.T) {
		got, rejected, err := Normalize(map[string]any{
			"transmission": "гидромеханика",
			"bodyType":     "кабриолет",
			"brand":        "bmw",
		})
		require.NoError(t, err)
		assert.Equal(t, Set{KeyBrand: "bmw"}, got)
		assert.Len(t, rejected, 2)
	})

	t.Run("InvalidNumeric", func(t *testing.T) {
		_, _, err := Normalize(map[string]any{"priceFrom": "дешево"})
		assert.ErrorIs(t, err, ErrInvalidNumericValue)
	})

	t.Run("FloatWithoutExponent", func(t *testing.T) {
		got, _, err := Normalize(map[string]any{"priceTo": 6e6})
		require.NoError(t, err)
		assert.Equal(t, int64(6000000), got[KeyPriceTo])
	})

	t.Run("Idempotent", func(t *testing.T) {
		inputs := []map[string]any{
			{"price_max": "5", "body_type": "хэтчбек", "transmission": "робот", "brand": "Kia", "model": "Rio"},
			{"priceFrom": 1000000, "yearTo": "2020", "transmission": "механика", "bodyType": "suv"},
			{"priceTo": "0", "city": "Алматы"},
		}
		for _, in := range inputs {
			once, _, err := Normalize(in)
			require.NoError(t, err)
			twice, _, err := Normalize(once)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		}
	})
}

func TestCanonicalKey(t *testing.T) {
	assert.Equal(t, KeyPriceFrom, CanonicalKey("PRICE_MIN"))
	assert.Equal(t, KeyBodyType, CanonicalKey("bodyType"))
	assert.Equal(t, "mileage", CanonicalKey("mileage"))
}
