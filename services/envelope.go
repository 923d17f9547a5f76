package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fenilmodi00/mc-discord-bots/models"
)

// ErrMalformedEnvelope is wrapped by every ValidateEnvelope failure
var ErrMalformedEnvelope = errors.New("malformed response envelope")

// ValidateEnvelope checks the NDB2 response wrapper before anything trusts its
// data. success must be a boolean, message a string or null, and errorCode a
// string when present. requireData additionally demands the data key; error
// envelopes from non-2xx responses are allowed to omit it.
func ValidateEnvelope(body []byte, requireData bool) (*models.Envelope, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: body is not a JSON object: %v", ErrMalformedEnvelope, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: body is null", ErrMalformedEnvelope)
	}

	envelope := &models.Envelope{}

	success, ok := raw["success"]
	if !ok {
		return nil, fmt.Errorf("%w: missing success", ErrMalformedEnvelope)
	}
	switch string(bytes.TrimSpace(success)) {
	case "true":
		envelope.Success = true
	case "false":
		envelope.Success = false
	default:
		return nil, fmt.Errorf("%w: success is not a boolean", ErrMalformedEnvelope)
	}

	message, ok := raw["message"]
	if !ok {
		return nil, fmt.Errorf("%w: missing message", ErrMalformedEnvelope)
	}
	if !isJSONNull(message) {
		var text string
		if !isJSONString(message) || json.Unmarshal(message, &text) != nil {
			return nil, fmt.Errorf("%w: message is neither a string nor null", ErrMalformedEnvelope)
		}
		envelope.Message = &text
	}

	if errorCode, ok := raw["errorCode"]; ok {
		if !isJSONString(errorCode) || json.Unmarshal(errorCode, &envelope.ErrorCode) != nil {
			return nil, fmt.Errorf("%w: errorCode is not a string", ErrMalformedEnvelope)
		}
	}

	data, ok := raw["data"]
	if !ok && requireData {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedEnvelope)
	}
	envelope.Data = data

	return envelope, nil
}

func isJSONNull(value json.RawMessage) bool {
	return string(bytes.TrimSpace(value)) == "null"
}

func isJSONString(value json.RawMessage) bool {
	trimmed := bytes.TrimSpace(value)
	return len(trimmed) > 0 && trimmed[0] == '"'
}
