package queue

import (
	"testing"

	"github.com/contre95/scanrelay/src/features/scanner"
	"github.com/contre95/scanrelay/src/scanning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue(t *testing.T) {
	q := NewInMemoryQueue()
	item := scanner.PendingItem{
		ID:      "filepath:/a",
		Command: scanning.Command{Kind: scanning.ScanFilePath, Param: "/a"},
	}

	require.NoError(t, q.Add(item))
	assert.ErrorIs(t, q.Add(item), scanner.ErrAlreadyExists)

	item.JobID = "job-1"
	require.NoError(t, q.Update(item))
	got, err := q.GetByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "job-1", got.JobID)
	assert.Len(t, q.GetAll(), 1)

	require.NoError(t, q.Remove(item.ID))
	assert.ErrorIs(t, q.Remove(item.ID), scanner.ErrNotFound)
	assert.ErrorIs(t, q.Update(item), scanner.ErrNotFound)
	_, err = q.GetByID(item.ID)
	assert.ErrorIs(t, err, scanner.ErrNotFound)

	require.NoError(t, q.Add(item))
	require.NoError(t, q.Clear())
	assert.Empty(t, q.GetAll())
}
