package offapi

import (
	"errors"

	"github.com/qyinm/offtui/types"
)

var (
	// ErrProductNotFound is returned when a barcode lookup has no product payload
	ErrProductNotFound = types.ErrProductNotFound

	// ErrUpstream is returned when the catalog API cannot be reached or answers non-2xx
	ErrUpstream = errors.New("catalog API request failed")

	// ErrDecode is returned when a response body is not the expected JSON
	ErrDecode = errors.New("catalog API response could not be decoded")
)
