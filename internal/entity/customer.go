package entity

import "errors"

var (
	ErrIncompleteCustomer = errors.New("customer snapshot is missing email or first name")
	ErrMissingCustomerRef = errors.New("record has no CRM customer reference")
)

// CustomerSnapshot is read from the CRM right before an action and never
// cached across passes.
type CustomerSnapshot struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
}

func (c *CustomerSnapshot) Validate() error {
	if c.Email == "" || c.FirstName == "" {
		return ErrIncompleteCustomer
	}
	return nil
}

func (c *CustomerSnapshot) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
