package handlers

import (
	"Recit/services/subscriptions"
	"Recit/utils/apperrors"
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
)

// ackOf returns the acknowledgement callback when the client sent one as
// the last argument.
func ackOf(args []interface{}) func(interface{}) {
	if len(args) == 0 {
		return nil
	}
	switch ack := args[len(args)-1].(type) {
	case func([]any, error):
		return func(body interface{}) { ack([]any{body}, nil) }
	case func(...any):
		return func(body interface{}) { ack(body) }
	}
	return nil
}

// decodeArgs reads the request out of the first event argument, either a
// decoded JSON object or a JSON string.
func decodeArgs(args []interface{}) (subscriptions.Request, error) {
	if len(args) == 0 {
		return subscriptions.Request{}, apperrors.Validation([]apperrors.FieldError{{Field: "body", Message: "is required"}})
	}
	switch v := args[0].(type) {
	case string:
		return subscriptions.DecodeRequest([]byte(v))
	case []byte:
		return subscriptions.DecodeRequest(v)
	case map[string]interface{}:
		raw, err := json.Marshal(v)
		if err != nil {
			return subscriptions.Request{}, apperrors.Validation([]apperrors.FieldError{{Field: "body", Message: "malformed request"}})
		}
		return subscriptions.DecodeRequest(raw)
	}
	return subscriptions.Request{}, apperrors.Validation([]apperrors.FieldError{{Field: "body", Message: "must be an object"}})
}

func errorBody(err error) gin.H {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		return gin.H{"error": err.Error()}
	}
	body := gin.H{"error": appErr.Error(), "reason": appErr.Kind.String()}
	if appErr.Reason != "" {
		body["reason"] = appErr.Reason
	}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	return body
}
