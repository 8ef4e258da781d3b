package scanner

import (
	"errors"
	"time"

	"github.com/contre95/scanrelay/src/scanning"
)

var (
	ErrAlreadyExists = errors.New("command already in the queue")
	ErrNotFound      = errors.New("command was not found in the queue")
)

// PendingItem is a command handed to the scan service whose job has not finished.
type PendingItem struct {
	ID        string           `json:"id"`
	Command   scanning.Command `json:"command"`
	JobID     string           `json:"job_id"`
	Timestamp time.Time        `json:"timestamp"`
}

// Queue stores pending items keyed by ID.
type Queue interface {
	// Add adds a new item to the queue, returns ErrAlreadyExists if already in Queue.
	Add(item PendingItem) error
	// Update replaces an existing item, returns ErrNotFound if it is not in the Queue.
	Update(item PendingItem) error
	// GetAll returns all items in the queue
	GetAll() map[string]PendingItem
	// GetByID returns a specific item by ID
	GetByID(id string) (PendingItem, error)
	// Remove removes an item from the queue by ID
	Remove(id string) error
	// Clear removes all items from the queue
	Clear() error
}

// pendingID identifies commands that would cause the same scan.
func pendingID(cmd scanning.Command) string {
	return cmd.Key() + ":" + cmd.Param
}
