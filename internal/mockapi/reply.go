package mockapi

import (
	"encoding/json"
	"net/http"
)

// detail is one FastAPI validation error entry.
type detail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

type envelopeField struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

type envelopeError struct {
	Message    string          `json:"message"`
	StatusCode int             `json:"status_code"`
	Fields     []envelopeField `json:"fields,omitempty"`
}

type envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data"`
	Error   *envelopeError `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	if s.config.Envelope {
		v = envelope{Success: true, Data: v}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("mock write failed")
	}
}

func (s *Server) writeNoContent(w http.ResponseWriter) {
	if s.config.Envelope {
		s.writeJSON(w, http.StatusOK, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	var v any = map[string]string{"detail": msg}
	if s.config.Envelope {
		v = envelope{Error: &envelopeError{Message: msg, StatusCode: status}}
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeInvalid replies 422 with FastAPI's detail list, or the envelope form.
func (s *Server) writeInvalid(w http.ResponseWriter, items ...detail) {
	var v any = map[string][]detail{"detail": items}
	if s.config.Envelope {
		fields := make([]envelopeField, 0, len(items))
		for _, it := range items {
			name := ""
			if n := len(it.Loc); n > 0 {
				name = it.Loc[n-1]
			}
			fields = append(fields, envelopeField{Field: name, Message: it.Msg, Type: it.Type})
		}
		v = envelope{Error: &envelopeError{
			Message:    items[0].Msg,
			StatusCode: http.StatusUnprocessableEntity,
			Fields:     fields,
		}}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(v)
}

func missing(field string) detail {
	return detail{Loc: []string{"body", field}, Msg: "Field required", Type: "missing"}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v) == nil
}
