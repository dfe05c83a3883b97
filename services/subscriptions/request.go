package subscriptions

import (
	"Recit/services/filters"
	"Recit/utils/apperrors"
	"encoding/json"
)

const (
	RequestSubscribe   = "subscribe"
	RequestUpdate      = "update"
	RequestUnsubscribe = "unsubscribe"
)

// Request is a client frame as sent over either transport.
type Request struct {
	Type      string            `json:"type"`
	ID        string            `json:"id,omitempty"`
	Stream    Stream            `json:"stream,omitempty"`
	Variables filters.Variables `json:"variables"`
}

// DecodeRequest reads a request out of raw JSON.
func DecodeRequest(raw []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, apperrors.Validation([]apperrors.FieldError{{Field: "body", Message: "malformed request"}})
	}
	return req, nil
}

// Apply runs the request against the session and returns the id of the
// subscription it concerns.
func (s *Session) Apply(req Request) (string, error) {
	switch req.Type {
	case RequestSubscribe:
		return s.Subscribe(req.Stream, req.Variables)
	case RequestUpdate:
		return req.ID, s.Update(req.ID, req.Variables)
	case RequestUnsubscribe:
		return req.ID, s.Unsubscribe(req.ID)
	default:
		return "", apperrors.Validation([]apperrors.FieldError{{Field: "type", Message: "unknown request type " + req.Type}})
	}
}
