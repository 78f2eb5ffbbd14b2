package dialogue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNoMarker в ответе нет ключевого слова "Фильтры:".
	ErrNoMarker = errors.New("filters marker not found")
	// ErrMalformedBlock маркер есть, но JSON после него не читается.
	ErrMalformedBlock = errors.New("malformed filters block")
)

var (
	markerRe = regexp.MustCompile(`(?i)фильтры\s*:`)
	fenceRe  = regexp.MustCompile("(?is)фильтры\\s*:\\s*```(?:json)?\\s*(\\{.*?\\})\\s*```")
)

// HasMarker сообщает, объявляет ли ответ блок фильтров.
func HasMarker(reply string) bool {
	return markerRe.MatchString(reply)
}

// Extract достает JSON-объект фильтров из ответа модели.
// Сначала ищется блок кода сразу после маркера, затем срез от первой "{" до последней "}" после маркера.
func Extract(reply string) (map[string]any, error) {
	loc := markerRe.FindStringIndex(reply)
	if loc == nil {
		return nil, ErrNoMarker
	}

	var candidate string
	if m := fenceRe.FindStringSubmatch(reply); m != nil {
		candidate = m[1]
	} else {
		rest := reply[loc[1]:]
		start := strings.Index(rest, "{")
		end := strings.LastIndex(rest, "}")
		if start == -1 || end == -1 || end < start {
			return nil, fmt.Errorf("%w: no braces after marker", ErrMalformedBlock)
		}
		candidate = rest[start : end+1]
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(candidate)))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlock, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: null object", ErrMalformedBlock)
	}
	return out, nil
}
