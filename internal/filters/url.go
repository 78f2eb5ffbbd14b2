package filters

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// DefaultCatalogURL корень каталога объявлений.
const DefaultCatalogURL = "https://aster.kz/cars"

const adsSegment = "autosalon-ads"

var bodyTypeSegments = map[string]string{
	"sedan":     "sedan",
	"hatchback": "hatchback",
	"crossover": "crossover",
	"suv":       "suv",
}

// BuildURL строит ссылку на выдачу каталога. Входной набор не изменяется.
// Тип кузова, марка и модель становятся сегментами пути в этом порядке,
// остальные ключи уходят в query в лексикографическом порядке.
func BuildURL(base string, set Set) string {
	rest := set.Clone()
	base = strings.TrimRight(base, "/")
	if base == "" {
		base = DefaultCatalogURL
	}

	var segments []string
	if v, ok := rest[KeyBodyType]; ok {
		delete(rest, KeyBodyType)
		if !IsAny(v) && !isEmpty(v) {
			segment, known := bodyTypeSegments[lowerText(v)]
			if !known {
				segment = "all"
			}
			segments = append(segments, segment)
		}
	}
	for _, key := range []string{KeyBrand, KeyModel} {
		v, ok := rest[key]
		if !ok {
			continue
		}
		delete(rest, key)
		if IsAny(v) || isEmpty(v) {
			continue
		}
		segments = append(segments, url.PathEscape(lowerText(v)))
	}
	segments = append(segments, adsSegment)

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("/")
	b.WriteString(strings.Join(segments, "/"))

	keys := make([]string, 0, len(rest))
	for k, v := range rest {
		if isEmpty(v) || IsAny(v) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, k := range keys {
		if i == 0 {
			b.WriteString("?")
		} else {
			b.WriteString("&")
		}
		b.WriteString(queryEscape(k))
		b.WriteString("=")
		b.WriteString(queryEscape(queryValue(rest[k])))
	}

	return b.String()
}

func queryValue(v any) string {
	switch n := v.(type) {
	case int64:
		return strconv.FormatInt(n, 10)
	case int:
		return strconv.Itoa(n)
	}
	text, err := valueText(v)
	if err != nil {
		return ""
	}
	return text
}

func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
