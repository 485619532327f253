package selection

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"mediadownloader/web/internal/domain"
)

const (
	startKey = "start"
	endKey   = "end"
)

// Parse reads the selection carried by the start and end query parameters.
// Missing or blank parameters are absent bounds.
func Parse(values url.Values) (Selection, error) {
	start, err := parseBound(values, startKey)
	if err != nil {
		return Selection{}, err
	}
	end, err := parseBound(values, endKey)
	if err != nil {
		return Selection{}, err
	}
	sel, err := New(start, end)
	if err != nil {
		return Selection{}, fmt.Errorf("%w: %v", domain.ErrInvalidSelection, err)
	}
	return sel, nil
}

func parseBound(values url.Values, key string) (Bound, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return None, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return None, fmt.Errorf("%w: %s=%q", domain.ErrInvalidSelection, key, raw)
	}
	return Some(n), nil
}

// Values encodes the present bounds as query parameters.
func (s Selection) Values() url.Values {
	values := url.Values{}
	if s.start.Valid {
		values.Set(startKey, strconv.Itoa(s.start.Value))
	}
	if s.end.Valid {
		values.Set(endKey, strconv.Itoa(s.end.Value))
	}
	return values
}

// Encode returns the selection as a query string without the leading "?".
func (s Selection) Encode() string {
	return s.Values().Encode()
}
