package domain

import "strings"

// CustomerDetails are the delivery contact fields collected at
// checkout. All four are required before an order can be placed.
type CustomerDetails struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Validate returns a ValidationError naming the first missing field.
func (c CustomerDetails) Validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return &ValidationError{Field: "name"}
	case strings.TrimSpace(c.Email) == "":
		return &ValidationError{Field: "email"}
	case strings.TrimSpace(c.Phone) == "":
		return &ValidationError{Field: "phone"}
	case strings.TrimSpace(c.Address) == "":
		return &ValidationError{Field: "address"}
	}
	return nil
}
