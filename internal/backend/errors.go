package backend

import (
	"fmt"
	"net/http"
)

// SyncError is a failed exchange with the backend. Status is zero when the
// request never got an answer. Message is the backend's own text.
type SyncError struct {
	Op      string
	Status  int
	Message string
	GPS     *GPS
	Err     error
}

func (e *SyncError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s", e.Op, http.StatusText(e.Status))
	}
	return e.Op + ": failed"
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Retryable reports whether sending the same request again may succeed.
func (e *SyncError) Retryable() bool {
	return e.Status == 0 || e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}
