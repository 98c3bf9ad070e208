package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

// decodeJSON reads up to maxRequestBodyBytes from r.Body and decodes JSON into dst.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, dst *T) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(dst)
}

// parseInt returns raw as an int clamped to [lo, hi], or def when raw is empty
// or not a number.
func parseInt(raw string, def, lo, hi int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
