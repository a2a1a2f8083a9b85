package dto

import "encoding/json"

// This packages contains DTO (Data Transfer Object) structures
// for providing validated and sanitized values to service layer

type NonceDTO struct {
	Message string
}

type SignDTO struct {
	Package json.RawMessage
}
