package scanning

// CommandKind identifies what the scan service is asked to do.
type CommandKind string

const (
	ScanVolume            CommandKind = "scan_volume"
	ScanFilePath          CommandKind = "scan_file"
	ScanMountedVolumePath CommandKind = "scan_volume_path"
	UpdateDatabaseForPath CommandKind = "update_database"
)

// Volume names understood by the scan service.
const (
	InternalVolume = "internal"
	ExternalVolume = "external"
)

// Bundle keys the scan service reads the command parameter from.
const (
	VolumeKey         = "volume"
	FilePathKey       = "filepath"
	ScanVolumePathKey = "scanVolumePath"
	UpdatePathKey     = "updatepath"
)

// Command is a single request for the scan service. Param is a volume
// name for ScanVolume and a filesystem path for every other kind.
type Command struct {
	Kind  CommandKind `json:"kind"`
	Param string      `json:"param"`
}

// Key returns the bundle key the parameter travels under.
func (c Command) Key() string {
	switch c.Kind {
	case ScanVolume:
		return VolumeKey
	case ScanFilePath:
		return FilePathKey
	case ScanMountedVolumePath:
		return ScanVolumePathKey
	case UpdateDatabaseForPath:
		return UpdatePathKey
	default:
		return ""
	}
}

// Bundle returns the single-entry string bundle handed to the scan service.
func (c Command) Bundle() map[string]string {
	return map[string]string{c.Key(): c.Param}
}

// String renders the command as kind(param), mostly for logs.
func (c Command) String() string {
	return string(c.Kind) + "(" + c.Param + ")"
}

// JobType returns the job type commands of this kind are executed as.
func (k CommandKind) JobType() string {
	return string(k)
}

// JobTypes lists the job types of every command kind.
func JobTypes() []string {
	return []string{
		ScanVolume.JobType(),
		ScanFilePath.JobType(),
		ScanMountedVolumePath.JobType(),
		UpdateDatabaseForPath.JobType(),
	}
}
