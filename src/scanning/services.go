package scanning

import "context"

// ScanService performs the scans and database updates commands ask for.
// Start hands the command over and returns; completion is not reported back.
type ScanService interface {
	Start(ctx context.Context, cmd Command) error
}

// StorageRootProvider supplies the current external storage root.
type StorageRootProvider interface {
	ExternalStorageRoot() string
}

// StaticRoot is a StorageRootProvider returning a fixed path.
type StaticRoot string

// ExternalStorageRoot returns the path itself.
func (r StaticRoot) ExternalStorageRoot() string {
	return string(r)
}
