package entity

// Mandate is the subset of a GoCardless mandate needed to register it as a
// CRM payment method.
type Mandate struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	Scheme    string `json:"scheme"`
	Status    string `json:"status"`
}

type MandateCustomer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// MandateEvent is one entry of a GoCardless webhook "events" array.
type MandateEvent struct {
	ID           string `json:"id"`
	ResourceType string `json:"resource_type"`
	Action       string `json:"action"`
	Links        MandateEventLinks `json:"links"`
}

type MandateEventLinks struct {
	Mandate  string `json:"mandate"`
	Customer string `json:"customer"`
}

func (e MandateEvent) IsMandateCreated() bool {
	return e.ResourceType == "mandates" && e.Action == "created"
}
