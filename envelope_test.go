package swclient

import (
	"net/http"
	"testing"
	"time"
)

func TestKindForStatus(t *testing.T) {
	tests := map[int]ErrorKind{
		401: KindUnauthenticated,
		403: KindForbidden,
		404: KindNotFound,
		429: KindThrottled,
		422: KindValidationFailed,
		400: KindValidationFailed,
		409: KindValidationFailed,
		500: KindServerFault,
		503: KindServerFault,
		302: KindServerFault,
	}
	for status, want := range tests {
		if got := kindForStatus(status); got != want {
			t.Fatalf("status %d: expected %s, got %s", status, want, got)
		}
	}
}

func TestSplitEnvelope(t *testing.T) {
	if _, ok := splitEnvelope([]byte(`[{"id":1}]`)); ok {
		t.Fatal("arrays are bare payloads")
	}
	if _, ok := splitEnvelope([]byte(`{"id":1,"title":"X"}`)); ok {
		t.Fatal("objects without success are bare payloads")
	}
	if _, ok := splitEnvelope([]byte(`{"success":"yes"}`)); ok {
		t.Fatal("non-boolean success is not an envelope")
	}

	env, ok := splitEnvelope([]byte(`{"success":true,"data":[1,2]}`))
	if !ok || !env.Success || string(env.Data) != "[1,2]" {
		t.Fatalf("unexpected envelope: %+v %v", env, ok)
	}

	env, ok = splitEnvelope([]byte(`{"success":false,"error":"boom"}`))
	if !ok || env.Error == nil || env.Error.Message != "boom" {
		t.Fatalf("string error not accepted: %+v", env)
	}
}

func TestErrorDetails(t *testing.T) {
	msg, fields := errorDetails([]byte(`{"success":false,"error":{"message":"bad input","status_code":422,"fields":[{"field":"title","message":"required"}]}}`))
	if msg != "bad input" || len(fields) != 1 || fields[0].Field != "title" {
		t.Fatalf("envelope error: %q %+v", msg, fields)
	}

	msg, _ = errorDetails([]byte(`{"detail":"Task not found"}`))
	if msg != "Task not found" {
		t.Fatalf("detail string: %q", msg)
	}

	msg, fields = errorDetails([]byte(`{"detail":[{"loc":["body","due_date"],"msg":"invalid date","type":"value_error"},{"loc":["query","page"],"msg":"not an int","type":"type_error"}]}`))
	if msg != "invalid date" || len(fields) != 2 || fields[0].Field != "due_date" || fields[1].Field != "page" {
		t.Fatalf("detail list: %q %+v", msg, fields)
	}

	msg, _ = errorDetails([]byte(`{"message":"rate limited"}`))
	if msg != "rate limited" {
		t.Fatalf("message field: %q", msg)
	}

	msg, fields = errorDetails([]byte(`<html>500</html>`))
	if msg != "" || fields != nil {
		t.Fatal("raw bodies must not leak into errors")
	}
}

func TestFieldPathKeepsNestedLoc(t *testing.T) {
	if got := fieldPath([]any{"body", "items", float64(0), "name"}); got != "items.0.name" {
		t.Fatalf("unexpected path %q", got)
	}
	if got := fieldPath([]any{"body"}); got != "body" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if d := parseRetryAfter("120", now); d != 2*time.Minute {
		t.Fatalf("seconds: %v", d)
	}
	date := now.Add(90 * time.Second).Format(http.TimeFormat)
	if d := parseRetryAfter(date, now); d != 90*time.Second {
		t.Fatalf("http date: %v", d)
	}
	if d := parseRetryAfter("soon", now); d != 0 {
		t.Fatalf("garbage: %v", d)
	}
	if d := parseRetryAfter("-5", now); d != 0 {
		t.Fatalf("negative: %v", d)
	}
}
