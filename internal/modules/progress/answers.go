package progress

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const AnswersVersion = 1

// SerializationError means submitted answers could not be stored. It never fails a submission.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string { return "answers: " + e.Err.Error() }
func (e *SerializationError) Unwrap() error { return e.Err }

type answersEnvelope struct {
	V    int             `json:"v"`
	Data json.RawMessage `json:"data"`
}

// ParseAnswers wraps client answers into the stored envelope {"v":1,"data":...}.
// raw may be any JSON value or a JSON string that itself holds JSON. Empty or null input yields nil.
func ParseAnswers(raw json.RawMessage) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, &SerializationError{Err: fmt.Errorf("invalid json")}
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &SerializationError{Err: err}
		}
		inner := bytes.TrimSpace([]byte(s))
		if len(inner) == 0 {
			return nil, nil
		}
		if !json.Valid(inner) {
			return nil, &SerializationError{Err: fmt.Errorf("string answers are not json")}
		}
		raw = inner
	}
	out, err := json.Marshal(answersEnvelope{V: AnswersVersion, Data: raw})
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return out, nil
}

// AnswersData returns the payload of a stored envelope, nil when absent or of an unknown version.
func AnswersData(stored []byte) json.RawMessage {
	if len(bytes.TrimSpace(stored)) == 0 {
		return nil
	}
	var env answersEnvelope
	if err := json.Unmarshal(stored, &env); err != nil || env.V != AnswersVersion {
		return nil
	}
	return env.Data
}
