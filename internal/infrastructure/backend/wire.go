// Package backend holds typed clients for the user, restaurant and order
// services. Each maps the service's wire format to domain types.
package backend

import (
	"bytes"
	"encoding/json"

	"github.com/delivery/storefront/internal/domain/account"
	"github.com/delivery/storefront/internal/domain/session"
	"github.com/shopspring/decimal"
)

// Amount is a money value that travels as a bare JSON number
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// MarshalJSON writes the number without quotes
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts a number, a quoted number or null
func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}
	return a.Decimal.UnmarshalJSON(data)
}

// roleList decodes roles sent either as objects with a name or as strings
type roleList []string

func (r *roleList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	names := make([]string, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			names = append(names, name)
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return err
		}
		names = append(names, obj.Name)
	}
	*r = names
	return nil
}

func (r roleList) set() session.RoleSet {
	return session.NewRoleSet(r...)
}

type addressDTO struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	State   string `json:"state"`
	Country string `json:"country"`
}

func addressesToWire(in []account.Address) []addressDTO {
	out := make([]addressDTO, 0, len(in))
	for _, a := range in {
		out = append(out, addressDTO(a))
	}
	return out
}

func addressesFromWire(in []addressDTO) []account.Address {
	out := make([]account.Address, 0, len(in))
	for _, a := range in {
		out = append(out, account.Address(a))
	}
	return out
}
