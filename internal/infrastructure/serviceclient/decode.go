package serviceclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/delivery/storefront/internal/domain/shared"
)

// DecodeJSON decodes the response body into T. An empty body yields the zero value.
func DecodeJSON[T any](resp *Response) (T, error) {
	var out T
	if resp == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, fmt.Errorf("decoding response: %w", err)
	}
	return out, nil
}

// page is the paged list envelope of the backend services
type page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Size          int   `json:"size"`
	Number        int   `json:"number"`
}

// DecodePage decodes either a paged envelope or a bare array. Page numbers
// are zero based, as the backend reports them.
func DecodePage[T any](resp *Response) (shared.Paginated[T], error) {
	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 {
		return shared.NewPaginated[T](nil, 0, 0, 0), nil
	}

	if body[0] == '[' {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return shared.Paginated[T]{}, fmt.Errorf("decoding list: %w", err)
		}
		return shared.NewPaginated(items, int64(len(items)), 0, len(items)), nil
	}

	var p page[T]
	if err := json.Unmarshal(body, &p); err != nil {
		return shared.Paginated[T]{}, fmt.Errorf("decoding page: %w", err)
	}
	result := shared.NewPaginated(p.Content, p.TotalElements, p.Number, p.Size)
	if p.TotalPages > 0 {
		result.TotalPages = p.TotalPages
	}
	return result, nil
}
