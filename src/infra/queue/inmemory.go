package queue

import (
	"sync"

	"github.com/contre95/scanrelay/src/features/scanner"
)

// InMemoryQueue is an in-memory implementation of the scanner.Queue interface
type InMemoryQueue struct {
	mu    sync.Mutex
	items map[string]scanner.PendingItem
}

// NewInMemoryQueue creates a new in-memory queue
func NewInMemoryQueue() scanner.Queue {
	return &InMemoryQueue{items: make(map[string]scanner.PendingItem)}
}

// Add adds a new item to the queue
func (q *InMemoryQueue) Add(item scanner.PendingItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.items[item.ID]; exists {
		return scanner.ErrAlreadyExists
	}
	q.items[item.ID] = item
	return nil
}

// Update replaces an item already in the queue
func (q *InMemoryQueue) Update(item scanner.PendingItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.items[item.ID]; !exists {
		return scanner.ErrNotFound
	}
	q.items[item.ID] = item
	return nil
}

// GetAll returns all items in the queue
func (q *InMemoryQueue) GetAll() map[string]scanner.PendingItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := make(map[string]scanner.PendingItem, len(q.items))
	for id, item := range q.items {
		items[id] = item
	}
	return items
}

// GetByID returns a specific item by ID
func (q *InMemoryQueue) GetByID(id string) (scanner.PendingItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	item, ok := q.items[id]
	if !ok {
		return scanner.PendingItem{}, scanner.ErrNotFound
	}
	return item, nil
}

// Remove removes an item from the queue by ID
func (q *InMemoryQueue) Remove(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.items[id]; !ok {
		return scanner.ErrNotFound
	}
	delete(q.items, id)
	return nil
}

// Clear removes all items from the queue
func (q *InMemoryQueue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	clear(q.items)
	return nil
}
