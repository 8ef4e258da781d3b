package scanning

// EventKind identifies the broadcast an Event was derived from.
type EventKind string

const (
	BootCompleted     EventKind = "boot_completed"
	VolumeMounted     EventKind = "volume_mounted"
	ScanFileRequested EventKind = "scan_file_requested"
	VolumeBadRemoval  EventKind = "volume_bad_removal"
	VolumeUnmounted   EventKind = "volume_unmounted"
	Unknown           EventKind = "unknown"
)

// FileScheme is the only URI scheme that path-carrying events are acted upon with.
const FileScheme = "file"

// Event is a pre-parsed platform notification.
type Event struct {
	Kind EventKind `json:"kind"`
	// Path is empty when the notification carried no path.
	Path   string `json:"path,omitempty"`
	Scheme string `json:"scheme,omitempty"`
}

// HasPath reports whether the event carries a path.
func (e Event) HasPath() bool {
	return e.Path != ""
}

// IsFile reports whether the event's data uses the file scheme.
func (e Event) IsFile() bool {
	return e.Scheme == FileScheme
}
