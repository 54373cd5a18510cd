package validate

import (
	"net/mail"
	"strconv"
	"strings"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Fields flattens the list into a field -> message map. Later checks on the
// same field do not overwrite the first message.
func (e Errs) Fields() map[string]string {
	if len(e) == 0 {
		return nil
	}
	m := make(map[string]string, len(e))
	for _, ef := range e {
		if _, ok := m[ef.Field]; !ok {
			m[ef.Field] = ef.Msg
		}
	}
	return m
}

// Check appends every non-nil result.
func (e *Errs) Check(results ...*ErrField) {
	for _, r := range results {
		if r != nil {
			*e = append(*e, *r)
		}
	}
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func MinLen(field, value string, min int) *ErrField {
	if len(value) < min {
		return &ErrField{Field: field, Msg: "must be at least " + strconv.Itoa(min) + " characters"}
	}
	return nil
}

func MaxLen(field, value string, max int) *ErrField {
	if len(value) > max {
		return &ErrField{Field: field, Msg: "must be at most " + strconv.Itoa(max) + " characters"}
	}
	return nil
}

func Email(field, value string) *ErrField {
	if value == "" {
		return nil // Required covers the empty case
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return &ErrField{Field: field, Msg: "invalid email address"}
	}
	return nil
}
