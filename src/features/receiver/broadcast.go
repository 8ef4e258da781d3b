package receiver

import (
	"net/url"
	"strings"

	"github.com/contre95/scanrelay/src/scanning"
)

var actions = map[string]scanning.EventKind{
	"android.intent.action.boot_completed":          scanning.BootCompleted,
	"android.intent.action.media_mounted":           scanning.VolumeMounted,
	"android.intent.action.media_scanner_scan_file": scanning.ScanFileRequested,
	"android.intent.action.media_bad_removal":       scanning.VolumeBadRemoval,
	"android.intent.action.media_unmounted":         scanning.VolumeUnmounted,

	"boot":        scanning.BootCompleted,
	"mounted":     scanning.VolumeMounted,
	"scan_file":   scanning.ScanFileRequested,
	"bad_removal": scanning.VolumeBadRemoval,
	"unmounted":   scanning.VolumeUnmounted,
}

// ParseBroadcast turns a raw notification into an Event. It never fails:
// unrecognized actions become Unknown events and unusable data leaves the
// event without a path.
func ParseBroadcast(action, data string) scanning.Event {
	kind, ok := actions[strings.ToLower(strings.TrimSpace(action))]
	if !ok {
		kind = scanning.Unknown
	}
	event := scanning.Event{Kind: kind}

	data = strings.TrimSpace(data)
	if data == "" {
		return event
	}
	u, err := url.Parse(data)
	if err != nil {
		return event
	}
	// url.Parse lowercases the scheme; keep it as sent.
	event.Scheme = u.Scheme
	if raw, _, found := strings.Cut(data, ":"); found && strings.EqualFold(raw, u.Scheme) {
		event.Scheme = raw
	}
	event.Path = u.Path
	return event
}

// Actions lists the accepted short action names.
func Actions() []string {
	return []string{"boot", "mounted", "scan_file", "bad_removal", "unmounted"}
}
