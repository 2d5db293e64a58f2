// Package probe issues the single bounded HTTP GET a reachability check
// uses to decide whether a tunnelled service is actually answering. The
// caller distinguishes "no response" from "wrong response" by checking for
// an empty body, so fetch failures are deliberately not errors.
package probe

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smokectl/pkg/logging"
)

const subsystem = "HttpProbe"

// DefaultTimeout bounds one probe request end to end.
const DefaultTimeout = 5 * time.Second

// Fetch issues one GET against url and returns the response body. Any
// connection failure, timeout, non-success status, or unreadable body yields
// an empty string rather than an error. A timeout <= 0 uses DefaultTimeout.
func Fetch(url string, timeout time.Duration) string {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(url)
	if err != nil {
		logging.Debug(subsystem, "GET %s failed: %v", url, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Debug(subsystem, "GET %s returned status %d", url, resp.StatusCode)
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logging.Debug(subsystem, "GET %s body read failed: %v", url, err)
		return ""
	}
	return string(body)
}

// Validate reports whether expected occurs contiguously within body. An
// empty body never validates, even against an empty expectation.
func Validate(body, expected string) bool {
	if body == "" {
		return false
	}
	return strings.Contains(body, expected)
}

// URL builds the local probe address for a tunnelled port.
func URL(localPort int) string {
	return fmt.Sprintf("http://localhost:%d", localPort)
}
