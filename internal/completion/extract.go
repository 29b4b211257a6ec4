package completion

import (
	"encoding/json"
	"strings"
)

// errorEnvelope is the union of error shapes providers return.
// Error stays raw because it is either an object or a plain string.
type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// extractor pulls a message from an envelope; "" means "try the next one".
type extractor func(env *errorEnvelope, transport string) string

var extractors = []extractor{
	structuredErrorMessage,
	plainErrorString,
	topLevelMessage,
	transportMessage,
}

func structuredErrorMessage(env *errorEnvelope, _ string) string {
	if env == nil || len(env.Error) == 0 {
		return ""
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(env.Error, &obj); err != nil {
		return ""
	}
	return strings.TrimSpace(obj.Message)
}

func plainErrorString(env *errorEnvelope, _ string) string {
	if env == nil || len(env.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(env.Error, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func topLevelMessage(env *errorEnvelope, _ string) string {
	if env == nil {
		return ""
	}
	return strings.TrimSpace(env.Message)
}

func transportMessage(_ *errorEnvelope, transport string) string {
	return strings.TrimSpace(transport)
}

// normalizeMessage runs the extractors in order over body, falling back to a
// generic message. A body that is not a JSON object only contributes transport.
func normalizeMessage(body []byte, transport string) string {
	var env *errorEnvelope
	if len(body) > 0 {
		var decoded errorEnvelope
		if err := json.Unmarshal(body, &decoded); err == nil {
			env = &decoded
		}
	}
	for _, extract := range extractors {
		if msg := extract(env, transport); msg != "" {
			return msg
		}
	}
	return unknownErrorMessage
}
