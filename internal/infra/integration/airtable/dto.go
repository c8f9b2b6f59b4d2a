package airtable

import "fmt"

// RawRecord é o formato devolvido pela API do Airtable
type RawRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type listResponse struct {
	Records []RawRecord `json:"records"`
	Offset  string      `json:"offset,omitempty"`
}

type patchRequest struct {
	Fields map[string]any `json:"fields"`
}

// APIError carries the verbatim status and body of a rejected call.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable %s: status %d - %s", e.Op, e.Status, e.Body)
}
