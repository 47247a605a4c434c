package board

import (
	"errors"
	"fmt"

	"github.com/mergington/signupboard/pkg/whttp"
	"github.com/tidwall/gjson"
)

// GenericNetworkMessage is shown when the board API cannot be reached.
const GenericNetworkMessage = "Unable to reach the signup board. Please try again later."

// ErrSessionInvalid is returned by CheckSession when the server no longer
// recognizes the user.
var ErrSessionInvalid = errors.New("session is no longer valid")

// NetworkError wraps a transport failure: the request never produced a
// response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RejectionError is a non-2xx answer. Detail is the server supplied reason,
// empty when none could be extracted.
type RejectionError struct {
	Op     string
	Status int
	Detail string
}

func (e *RejectionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: rejected with status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: rejected with status %d: %s", e.Op, e.Status, e.Detail)
}

// MalformedDataError means a 2xx body did not have the expected shape.
type MalformedDataError struct {
	Op  string
	Err error
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *MalformedDataError) Unwrap() error { return e.Err }

// UserMessage returns the text to show the user for err: the server detail
// when there is one, the network message for transport failures, otherwise
// fallback.
func UserMessage(err error, fallback string) string {
	var rej *RejectionError
	if errors.As(err, &rej) && rej.Detail != "" {
		return rej.Detail
	}
	var nerr *NetworkError
	if errors.As(err, &nerr) {
		return GenericNetworkMessage
	}
	return fallback
}

func newRejection(op string, res *whttp.WHTTPRes) *RejectionError {
	return &RejectionError{Op: op, Status: res.StatusCode, Detail: extractDetail(res)}
}

// extractDetail reads FastAPI style error bodies: {"detail": "..."} or
// {"detail": [{"msg": "..."}]}. HTML error pages fall back to their title.
func extractDetail(res *whttp.WHTTPRes) string {
	if gjson.Valid(res.BodyString) {
		detail := gjson.Get(res.BodyString, "detail")
		switch {
		case detail.Type == gjson.String:
			return detail.Str
		case detail.IsArray():
			return detail.Get("0.msg").String()
		}
		return ""
	}
	return res.HTTPTitle
}
