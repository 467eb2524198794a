package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

var errAmountType = errors.New("se esperaba un número")

// Amount is a money value sent either as a JSON number or a numeric string.
// It keeps the raw text so no precision is lost before decimal parsing.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return errAmountType
	}
	if b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errAmountType
	}
	*a = Amount(n.String())
	return nil
}

// OptionalID is a nullable id in a patch body. Set tells an explicit null
// apart from an absent key.
type OptionalID struct {
	Set   bool
	Value *int
}

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(bytes.TrimSpace(b)) == "null" {
		o.Value = nil
		return nil
	}
	var id int
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}
