package chat

import (
	"github.com/tidwall/gjson"
)

// DeltaText returns the incremental content carried by one streamed
// completion event, or "" when the event has none.
func DeltaText(data []byte) string {
	return gjson.GetBytes(data, "choices.0.delta.content").String()
}

// ErrorMessage returns error.message from an error payload. A payload
// whose error is a plain string is accepted too.
func ErrorMessage(data []byte) string {
	if !gjson.ValidBytes(data) {
		return ""
	}
	e := gjson.GetBytes(data, "error")
	if e.Type == gjson.String {
		return e.String()
	}
	return e.Get("message").String()
}

// ErrorCode returns error.code from an error payload.
func ErrorCode(data []byte) string {
	return gjson.GetBytes(data, "error.code").String()
}
