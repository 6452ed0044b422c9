package syncing

import "time"

// Action is the per-entity reconciliation decision
type Action int

const (
	ActionNone Action = iota
	ActionUpload
	ActionDownload
	ActionDeleteLocal
)

func (a Action) String() string {
	switch a {
	case ActionUpload:
		return "upload"
	case ActionDownload:
		return "download"
	case ActionDeleteLocal:
		return "delete_local"
	default:
		return "none"
	}
}

// Decide resolves one matched local/remote pair under last-writer-wins
// with tombstones. remoteExists is false when the entity has never
// been uploaded.
func Decide(localUpdatedAt time.Time, remoteExists, remoteDeleted bool, remoteUpdatedAt time.Time) Action {
	if !remoteExists {
		return ActionUpload
	}
	if remoteDeleted {
		return ActionDeleteLocal
	}

	// Compare at millisecond precision, matching the wire format
	local := localUpdatedAt.UnixMilli()
	remote := remoteUpdatedAt.UnixMilli()
	switch {
	case local > remote:
		return ActionUpload
	case local < remote:
		return ActionDownload
	default:
		return ActionNone
	}
}
