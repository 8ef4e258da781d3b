package scanning

import "strings"

// Dispatch maps an event to the commands the scan service should receive.
// It never fails: anything it does not recognise yields no commands.
//
// Rules are evaluated in order and the first match wins:
//   - boot scans both the internal and the external volume;
//   - events without a path, or whose data is not a file URI, are dropped;
//   - a mounted volume is scanned at its mount path;
//   - a scan-file request is honoured only below externalStorageRoot;
//   - bad removal and unmount refresh the database for the path.
func Dispatch(event Event, externalStorageRoot string) []Command {
	if event.Kind == BootCompleted {
		return []Command{
			{Kind: ScanVolume, Param: InternalVolume},
			{Kind: ScanVolume, Param: ExternalVolume},
		}
	}

	if !event.HasPath() || !event.IsFile() {
		return []Command{}
	}

	switch {
	case event.Kind == VolumeMounted:
		return []Command{{Kind: ScanMountedVolumePath, Param: event.Path}}
	case event.Kind == ScanFileRequested:
		if WithinRoot(event.Path, externalStorageRoot) {
			return []Command{{Kind: ScanFilePath, Param: event.Path}}
		}
		return []Command{}
	case event.Kind == VolumeBadRemoval || event.Kind == VolumeUnmounted:
		return []Command{{Kind: UpdateDatabaseForPath, Param: event.Path}}
	}
	return []Command{}
}

// WithinRoot reports whether path lies strictly below root.
func WithinRoot(path, root string) bool {
	return strings.HasPrefix(path, root+"/")
}
