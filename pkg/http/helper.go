package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"unilab/pkg/config"
	apperrors "unilab/pkg/errors"
)

// ExtractLimitOffset reads the limit/offset query parameters. An absent limit
// means the largest page.
func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := config.DefaultPaginationLimit
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	return config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset), nil
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields and
// trailing data.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.InvalidInput("Request body cannot be empty")
		}
		return apperrors.InvalidInput("Invalid request body")
	}
	if dec.More() {
		return apperrors.InvalidInput("Request body must contain a single JSON object")
	}
	return nil
}
