package syncer

import (
	"errors"
	"fmt"
)

// Common errors returned by sync operations.
//
// These can be checked with errors.Is():
//
//	if errors.Is(err, syncer.ErrOffline) {
//	    // no network call was made; local state stays usable
//	}
var (
	// ErrAuthRequired is returned when a sync is attempted without a
	// logged-in session. No network call is made.
	ErrAuthRequired = errors.New("please log in to sync your data")

	// ErrOffline is returned when a sync is attempted while
	// disconnected. No network call is made and the local record is
	// forced unsynced.
	ErrOffline = errors.New("you are currently offline, cannot sync without internet connection")

	// ErrConnectionLost is returned when connectivity dropped while a
	// call was in flight, regardless of what the response said.
	ErrConnectionLost = errors.New("connection lost during sync")

	// ErrNotFound is returned by Pull when the server holds no record
	// for the user. Absence, not failure.
	ErrNotFound = errors.New("no budget data found for this user")

	// ErrSyncInFlight is returned when a sync is invoked while another
	// one is still running.
	ErrSyncInFlight = errors.New("a sync is already in progress")
)

// RemoteError reports a non-success response from the sync endpoint.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// IsRetryable reports whether a later sync attempt may succeed without
// user action. Connectivity problems and server-side failures are
// retryable; auth problems are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrOffline) || errors.Is(err, ErrConnectionLost) || errors.Is(err, ErrSyncInFlight) {
		return true
	}

	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.StatusCode >= 500
	}

	return false
}
