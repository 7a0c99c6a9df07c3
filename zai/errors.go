package zai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrRequestFailed is the single error kind surfaced by the adapter. The
// wrapped message distinguishes the failure class; there is no structured
// hierarchy beyond it.
var ErrRequestFailed = errors.New("zai: request failed")

func requestError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRequestFailed, fmt.Sprintf(format, args...))
}

// classifyStatus maps a non-2xx provider response to a descriptive error.
// A 429 body is sniffed for balance keywords because Z.ai reports quota
// exhaustion with the same status as throttling.
func classifyStatus(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized:
		return requestError("invalid Z.ai API key")
	case status == http.StatusTooManyRequests:
		lower := strings.ToLower(string(body))
		if strings.Contains(lower, "balance") || strings.Contains(lower, "recharge") {
			return requestError("rate limit exceeded: account balance exhausted, recharge required")
		}
		return requestError("rate limit exceeded, please try again later")
	case status >= http.StatusInternalServerError:
		return requestError("Z.ai server error: %d", status)
	default:
		return requestError("Z.ai API error: %s", strings.TrimSpace(string(body)))
	}
}

func networkError(err error) error {
	return requestError("network error connecting to Z.ai: %v", err)
}
