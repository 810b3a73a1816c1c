package relay

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/leapstack-labs/relayui/internal/fetch"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 4 << 20

// envelope is the relay API's response wrapper.
type envelope struct {
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data,omitempty"`
	ErrorType string          `json:"errorType,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// unwrap reads a response and returns the envelope's data. Every failure
// comes back as a *fetch.Error.
func unwrap(resp *http.Response) (json.RawMessage, error) {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fetch.TransportError(fmt.Errorf("reading response: %w", err))
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if !ok {
			return nil, fetch.ApplicationError("http", fmt.Sprintf("server returned %s", resp.Status))
		}
		return nil, fetch.DecodeError(fmt.Errorf("decoding response: %w", err))
	}

	if env.Status == statusError || !ok {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("server returned %s", resp.Status)
		}
		return nil, fetch.ApplicationError(env.ErrorType, msg)
	}
	if env.Status != statusSuccess {
		return nil, fetch.DecodeError(fmt.Errorf("unknown response status %q", env.Status))
	}

	return env.Data, nil
}

// Decode returns a fetch.Decoder that unmarshals JSON into T.
func Decode[T any]() fetch.Decoder[T] {
	return func(body []byte) (T, error) {
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return v, fetch.DecodeError(err)
		}
		return v, nil
	}
}
