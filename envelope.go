package swclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type envelopeError struct {
	Message    string       `json:"message"`
	StatusCode int          `json:"status_code"`
	Fields     []FieldError `json:"fields"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *envelopeError  `json:"error"`
}

// detailItem is one entry of a FastAPI validation error list.
type detailItem struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// kindForStatus maps a non-2xx status to its ErrorKind.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthenticated
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindThrottled
	case status >= 400 && status < 500:
		return KindValidationFailed
	default:
		return KindServerFault
	}
}

// splitEnvelope detects the normalized {success, data, error} reply. ok is
// false for bare JSON, which the caller treats as the payload itself.
func splitEnvelope(body []byte) (env envelope, ok bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return envelope{}, false
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return envelope{}, false
	}
	raw, has := probe["success"]
	if !has {
		return envelope{}, false
	}
	var success bool
	if err := json.Unmarshal(raw, &success); err != nil {
		return envelope{}, false
	}

	env.Success = success
	env.Data = probe["data"]
	if errRaw, has := probe["error"]; has && !bytes.Equal(bytes.TrimSpace(errRaw), []byte("null")) {
		var ee envelopeError
		if err := json.Unmarshal(errRaw, &ee); err == nil {
			env.Error = &ee
		} else {
			var msg string
			if json.Unmarshal(errRaw, &msg) == nil {
				env.Error = &envelopeError{Message: msg}
			}
		}
	}
	return env, true
}

// errorDetails extracts a human message and field errors from an error body.
// Unknown shapes yield nothing; raw bodies are never echoed into errors.
func errorDetails(body []byte) (string, []FieldError) {
	if env, ok := splitEnvelope(body); ok && env.Error != nil {
		return env.Error.Message, env.Error.Fields
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(body), &probe); err != nil {
		return "", nil
	}

	if raw, has := probe["detail"]; has {
		var msg string
		if json.Unmarshal(raw, &msg) == nil {
			return msg, nil
		}
		var items []detailItem
		if json.Unmarshal(raw, &items) == nil && len(items) > 0 {
			fields := make([]FieldError, 0, len(items))
			for _, it := range items {
				fields = append(fields, FieldError{
					Field:   fieldPath(it.Loc),
					Message: it.Msg,
					Type:    it.Type,
				})
			}
			return items[0].Msg, fields
		}
	}

	if raw, has := probe["message"]; has {
		var msg string
		if json.Unmarshal(raw, &msg) == nil {
			return msg, nil
		}
	}
	return "", nil
}

// fieldPath joins a FastAPI loc, dropping the leading "body"/"query" marker.
func fieldPath(loc []any) string {
	parts := make([]string, 0, len(loc))
	for i, p := range loc {
		s := fmt.Sprint(p)
		if i == 0 && (s == "body" || s == "query" || s == "path" || s == "header") && len(loc) > 1 {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
