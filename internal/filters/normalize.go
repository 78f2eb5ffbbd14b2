// Package filters приводит сырые фильтры подбора к каноническому виду
// и строит по ним ссылку на каталог.
package filters

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Канонические ключи фильтров.
const (
	KeyPriceFrom    = "priceFrom"
	KeyPriceTo      = "priceTo"
	KeyYearFrom     = "yearFrom"
	KeyYearTo       = "yearTo"
	KeyBodyType     = "bodyType"
	KeyTransmission = "transmission"
	KeyBrand        = "brand"
	KeyModel        = "model"
	keyColor        = "color"
)

// millionsThreshold цена "до" ниже порога считается заданной в миллионах.
const millionsThreshold = 100000

// ErrInvalidNumericValue числовое поле не удалось свести к цифрам.
var ErrInvalidNumericValue = errors.New("invalid numeric filter value")

// Set канонический набор фильтров. Числовые ключи хранят int64.
type Set map[string]any

// Clone возвращает поверхностную копию набора.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Rejection отброшенное значение с причиной, для логирования вызывающей стороной.
type Rejection struct {
	Key    string `json:"key"`
	Value  any    `json:"value"`
	Reason string `json:"reason"`
}

var keyAliases = map[string]string{
	"price_min":    KeyPriceFrom,
	"price_from":   KeyPriceFrom,
	"pricefrom":    KeyPriceFrom,
	"price_max":    KeyPriceTo,
	"price_to":     KeyPriceTo,
	"priceto":      KeyPriceTo,
	"year_min":     KeyYearFrom,
	"year_from":    KeyYearFrom,
	"yearfrom":     KeyYearFrom,
	"year_max":     KeyYearTo,
	"year_to":      KeyYearTo,
	"yearto":       KeyYearTo,
	"body_type":    KeyBodyType,
	"bodytype":     KeyBodyType,
	"transmission": KeyTransmission,
	"brand":        KeyBrand,
	"model":        KeyModel,
	"colour":       keyColor,
}

// Значения таблиц содержат и канонические формы, поэтому повторная нормализация ничего не меняет.
var transmissionValues = map[string]string{
	"автомат":   "AKPP",
	"механика":  "MT",
	"робот":     "ROBOT",
	"вариатор":  "VARIATOR",
	"akpp":      "AKPP",
	"mt":        "MT",
	"robot":     "ROBOT",
	"variator":  "VARIATOR",
	"automatic": "AKPP",
	"manual":    "MT",
	"cvt":       "VARIATOR",
}

var bodyTypeValues = map[string]string{
	"седан":       "sedan",
	"хэтчбек":     "hatchback",
	"хетчбек":     "hatchback",
	"кроссовер":   "crossover",
	"внедорожник": "suv",
	"suv":         "suv",
	"sedan":       "sedan",
	"hatchback":   "hatchback",
	"crossover":   "crossover",
}

var nonDigits = regexp.MustCompile(`\D`)

// IsAny сообщает, означает ли значение "без ограничения".
func IsAny(v any) bool {
	s, err := cast.ToStringE(v)
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "any", "любая", "любой":
		return true
	}
	return false
}

// CanonicalKey переводит псевдоним ключа в каноническое имя; неизвестные ключи не меняются.
func CanonicalKey(key string) string {
	if mapped, ok := keyAliases[strings.ToLower(key)]; ok {
		return mapped
	}
	return key
}

func isNumericKey(key string) bool {
	switch key {
	case KeyPriceFrom, KeyPriceTo, KeyYearFrom, KeyYearTo:
		return true
	}
	return false
}

// Normalize приводит сырые фильтры к каноническому набору.
// Ошибку возвращает только для числового поля, в котором нет ни одной цифры.
func Normalize(raw map[string]any) (Set, []Rejection, error) {
	out := make(Set, len(raw))
	var rejected []Rejection

	for key, value := range raw {
		if isEmpty(value) || IsAny(value) {
			continue
		}
		canonical := CanonicalKey(key)

		switch {
		case isNumericKey(canonical):
			n, err := toDigits(value)
			if err != nil {
				return nil, rejected, fmt.Errorf("%s: %w", key, err)
			}
			if n == 0 {
				continue
			}
			if canonical == KeyPriceTo && n < millionsThreshold {
				n *= 1_000_000
			}
			out[canonical] = n
		case canonical == KeyTransmission:
			mapped, ok := transmissionValues[lowerText(value)]
			if !ok {
				rejected = append(rejected, Rejection{Key: key, Value: value, Reason: "unknown transmission"})
				continue
			}
			out[canonical] = mapped
		case canonical == KeyBodyType:
			mapped, ok := bodyTypeValues[lowerText(value)]
			if !ok {
				rejected = append(rejected, Rejection{Key: key, Value: value, Reason: "unknown body type"})
				continue
			}
			out[canonical] = mapped
		case canonical == keyColor:
			continue
		default:
			out[canonical] = value
		}
	}

	return out, rejected, nil
}

func lowerText(v any) string {
	return strings.ToLower(strings.TrimSpace(cast.ToString(v)))
}

// toDigits оставляет только цифры из текстового представления значения.
func toDigits(v any) (int64, error) {
	text, err := valueText(v)
	if err != nil {
		return 0, ErrInvalidNumericValue
	}
	digits := nonDigits.ReplaceAllString(text, "")
	if digits == "" {
		return 0, ErrInvalidNumericValue
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, ErrInvalidNumericValue
	}
	return n, nil
}

// valueText форматирует значение без экспоненты, чтобы 6e+06 не превратилось в "606".
func valueText(v any) (string, error) {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), nil
	}
	return cast.ToStringE(v)
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return f == 0 || math.IsNaN(f)
	}
	return false
}
