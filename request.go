package swclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/MrEthical07/swclient/claims"
	"go.uber.org/zap"
)

// Request sends method path to the backend on behalf of the current Session.
//
// path is relative to Config.BaseURL. body may be nil, a url.Values (sent
// form-encoded), a json.RawMessage, or any JSON-serializable value.
//
// Every failure is an *Error carrying exactly one ErrorKind. An expired
// Session fails with KindSessionExpired before anything is sent; both that
// and an HTTP 401 clear the Session and signal a redirect. No call is ever
// retried.
func (c *Client) Request(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	if c == nil {
		return nil, ErrClientNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ro := requestOptions{timeout: c.config.Timeout}
	for _, opt := range opts {
		opt(&ro)
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	requestID := requestIDFor(ctx)
	ctx = WithRequestID(ctx, requestID)
	c.metricInc(MetricRequest)

	fail := func(e *Error) (*Response, error) {
		e.Method = method
		e.Path = path
		e.RequestID = requestID
		c.metricInc(kindMetric(e.Kind))
		return nil, e
	}

	sess, hasSession := c.Session(ctx)
	if hasSession && claims.Expired(sess.Token, c.now(), c.config.Expiry.Leeway) {
		e := &Error{Kind: KindSessionExpired, Message: "token expired before the request was sent"}
		e.Method, e.Path, e.RequestID = method, path, requestID
		if err := c.invalidate(ctx, ReasonSessionExpired, &sess.User, e); err != nil {
			e.Err = err
		}
		return fail(e)
	}

	target, err := c.resolve(path, ro.query)
	if err != nil {
		return fail(&Error{Kind: KindValidationFailed, Message: "invalid request path", Err: err})
	}

	payload, contentType, err := encodeBody(body)
	if err != nil {
		return fail(&Error{Kind: KindValidationFailed, Message: "request body is not serializable", Err: err})
	}

	callCtx, cancel := context.WithTimeout(ctx, ro.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, method, target, payload)
	if err != nil {
		return fail(&Error{Kind: KindValidationFailed, Message: "invalid request", Err: err})
	}
	for k, vs := range ro.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if hasSession {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fail(&Error{Kind: KindNetworkUnavailable, Message: networkMessage(err), Err: err})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseBytes+1))
	elapsed := c.now().Sub(start)
	if c.metrics != nil {
		c.metrics.Observe(MetricRequestLatency, elapsed)
	}
	if err != nil {
		return fail(&Error{Kind: KindNetworkUnavailable, Status: resp.StatusCode, Message: "response interrupted", Err: err})
	}
	if int64(len(raw)) > c.config.MaxResponseBytes {
		return fail(&Error{Kind: KindServerFault, Status: resp.StatusCode, Message: "response exceeds size limit"})
	}

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
		zap.String("request_id", requestID),
	)

	out, e := c.classify(resp, raw)
	if e != nil {
		e.Method, e.Path, e.RequestID = method, path, requestID
		if e.Kind == KindUnauthenticated {
			var user *User
			if hasSession {
				user = &sess.User
			}
			if err := c.invalidate(ctx, ReasonUnauthenticated, user, e); err != nil {
				e.Err = errors.Join(e.Err, err)
			}
		} else {
			c.emitAudit(ctx, auditEventRequestRejected, false, sessionUser(sess, hasSession), e, nil)
		}
		return fail(e)
	}

	out.RequestID = requestID
	out.method = method
	out.path = path
	c.metricInc(MetricRequestSuccess)
	return out, nil
}

// classify turns a received response into a Response or a classified error.
func (c *Client) classify(resp *http.Response, raw []byte) (*Response, *Error) {
	status := resp.StatusCode

	if status < 200 || status > 299 {
		kind := kindForStatus(status)
		msg, fields := errorDetails(raw)
		e := &Error{Kind: kind, Status: status, Message: msg, Fields: fields}
		if kind == KindThrottled {
			e.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), c.now())
		}
		return nil, e
	}

	out := &Response{Status: status, Header: resp.Header}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if !json.Valid(raw) {
		return nil, &Error{Kind: KindServerFault, Status: status, Message: "response is not valid JSON"}
	}

	env, ok := splitEnvelope(raw)
	if !ok {
		out.Body = json.RawMessage(raw)
		return out, nil
	}
	if env.Success {
		out.Body = env.Data
		return out, nil
	}

	e := &Error{Kind: KindServerFault, Status: status}
	if env.Error != nil {
		e.Message = env.Error.Message
		e.Fields = env.Error.Fields
		if env.Error.StatusCode >= 400 {
			e.Kind = kindForStatus(env.Error.StatusCode)
		}
	}
	if e.Message == "" {
		e.Message = "backend reported failure"
	}
	return nil, e
}

func (c *Client) resolve(path string, query url.Values) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	if ref.Scheme != "" || ref.Host != "" {
		return "", fmt.Errorf("absolute URL %q not allowed", path)
	}

	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawPath = ""

	q := ref.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case url.Values:
		return strings.NewReader(b.Encode()), "application/x-www-form-urlencoded", nil
	case json.RawMessage:
		if !json.Valid(b) {
			return nil, "", errors.New("invalid raw JSON body")
		}
		return bytes.NewReader(b), "application/json", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func networkMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	default:
		return "backend unreachable"
	}
}

func sessionUser(s *Session, ok bool) *User {
	if !ok || s == nil {
		return nil
	}
	return &s.User
}

// Get is Request with method GET and no body.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Request(ctx, http.MethodGet, path, nil, opts...)
}

// Post is Request with method POST.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Request(ctx, http.MethodPost, path, body, opts...)
}

// Put is Request with method PUT.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Request(ctx, http.MethodPut, path, body, opts...)
}

// Patch is Request with method PATCH.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Request(ctx, http.MethodPatch, path, body, opts...)
}

// Delete is Request with method DELETE and no body.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Request(ctx, http.MethodDelete, path, nil, opts...)
}

// getJSON issues a GET and decodes the payload into out.
func getJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	resp, err := c.Get(ctx, path)
	if err != nil {
		return out, err
	}
	err = resp.Decode(&out)
	return out, err
}

// sendJSON issues method with body and decodes the payload into out.
func sendJSON[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T
	resp, err := c.Request(ctx, method, path, body)
	if err != nil {
		return out, err
	}
	err = resp.Decode(&out)
	return out, err
}
