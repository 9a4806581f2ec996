// Package status derives the user-facing sync status label from the
// current connectivity and local sync bookkeeping.
package status

// Status is one of four mutually exclusive sync states.
type Status int

const (
	// Offline means no connectivity; overrides all other signals.
	Offline Status = iota
	// Synced means online and the local record matches the last
	// confirmed server copy.
	Synced
	// LocalOnly means online with local edits and no sync has ever
	// completed.
	LocalOnly
	// SyncPending means online with local edits after at least one
	// successful sync.
	SyncPending
)

// Classify maps {online, isSynced, hasEverSynced} to a Status.
// Evaluation is priority-ordered: offline wins over everything, then
// synced, then the never-synced/previously-synced distinction. The
// function is total; every input combination maps to exactly one label.
func Classify(online, isSynced, hasEverSynced bool) Status {
	if !online {
		return Offline
	}
	if isSynced {
		return Synced
	}
	if !hasEverSynced {
		return LocalOnly
	}
	return SyncPending
}

// String returns the canonical label for the status.
func (s Status) String() string {
	switch s {
	case Offline:
		return "offline"
	case Synced:
		return "synced"
	case LocalOnly:
		return "local-only"
	case SyncPending:
		return "sync-pending"
	default:
		return "unknown"
	}
}

// Description returns a short human-readable explanation of the status.
func (s Status) Description() string {
	switch s {
	case Offline:
		return "No internet connection"
	case Synced:
		return "Both server & local are aligned"
	case LocalOnly:
		return "Saved locally, never synced"
	case SyncPending:
		return "Edits waiting for network"
	default:
		return ""
	}
}
