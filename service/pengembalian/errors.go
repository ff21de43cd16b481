package pengembalian

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrItemNotFound ErrCode = "ITEM_NOT_FOUND"
	ErrNotEligible  ErrCode = "NOT_ELIGIBLE"
	ErrValidation   ErrCode = "VALIDATION"
	ErrExcess       ErrCode = "EXCESS_TOTAL_QUANTITY"
	ErrConflict     ErrCode = "CONFLICT"
	ErrStore        ErrCode = "STORE_UNAVAILABLE"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string {
	if e.msg == "" {
		return string(e.code)
	}
	return string(e.code) + ": " + e.msg
}
func (e codedError) Code() ErrCode { return e.code }

func makeErr(c ErrCode) error { return codedError{code: c} }

func makeErrf(c ErrCode, format string, args ...any) error {
	return codedError{code: c, msg: fmt.Sprintf(format, args...)}
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// FieldError is one field-level violation; Saran carries a remediation
// hint for the caller.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Saran   string `json:"saran,omitempty"`
}

type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Code() ErrCode {
	for _, fe := range v {
		if fe.Code == string(ErrExcess) {
			return ErrExcess
		}
	}
	return ErrValidation
}

// Fields extracts the structured violations when err is a validation error.
func Fields(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// wrapStoreErr maps driver failures onto the error taxonomy: serialization
// and lock conflicts become CONFLICT (caller may retry the whole call),
// everything else from the store becomes STORE_UNAVAILABLE.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return codedError{code: ErrConflict, msg: pgErr.Message}
		}
	}
	return codedError{code: ErrStore, msg: err.Error()}
}
