package swclient

import (
	"encoding/json"
	"net/http"
)

// Response is a successful backend reply.
//
// Body holds the payload: the "data" member of an enveloped reply, or the
// whole body of a bare JSON reply, byte for byte. It is empty for replies
// without content.
type Response struct {
	Status    int
	Header    http.Header
	Body      json.RawMessage
	RequestID string

	method string
	path   string
}

// Decode unmarshals Body into v. An empty Body leaves v untouched. A Body
// that does not fit v is a ServerFault.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &Error{
			Kind:      KindServerFault,
			Status:    r.Status,
			Method:    r.method,
			Path:      r.path,
			Message:   "response does not match the expected shape",
			RequestID: r.RequestID,
			Err:       err,
		}
	}
	return nil
}
