package protocol

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ERR_MALFORMED_SELECTOR ErrorCode = "ERR_MALFORMED_SELECTOR"
	ERR_UNKNOWN_SELECTOR   ErrorCode = "ERR_UNKNOWN_SELECTOR"
	ERR_PAYLOAD_TOO_SHORT  ErrorCode = "ERR_PAYLOAD_TOO_SHORT"
	ERR_LAYOUT_INVALID     ErrorCode = "ERR_LAYOUT_INVALID"
	ERR_TABLE_INVALID      ErrorCode = "ERR_TABLE_INVALID"
	ERR_FIELD_MISSING      ErrorCode = "ERR_FIELD_MISSING"
	ERR_FIELD_INVALID      ErrorCode = "ERR_FIELD_INVALID"

	ERR_DOUBLE_SPEND     ErrorCode = "ERR_DOUBLE_SPEND"
	ERR_PROOF_INVALID    ErrorCode = "ERR_PROOF_INVALID"
	ERR_CAMPAIGN_EXPIRED ErrorCode = "ERR_CAMPAIGN_EXPIRED"
	ERR_CAMPAIGN_UNKNOWN ErrorCode = "ERR_CAMPAIGN_UNKNOWN"
)

type WireError struct {
	Code ErrorCode
	Msg  string
}

func (e *WireError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func wireErr(code ErrorCode, msg string) error {
	return &WireError{Code: code, Msg: msg}
}

// IsCode reports whether err is a *WireError carrying code.
func IsCode(err error, code ErrorCode) bool {
	var we *WireError
	return errors.As(err, &we) && we.Code == code
}
