package requests

import "encoding/json"

type NonceForm struct {
	Message string `json:"message" validate:"attr=message,min=2"`
}

type SignForm struct {
	Package json.RawMessage `json:"package"`
}
