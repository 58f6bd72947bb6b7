package memory

import (
	"sync"

	"github.com/nemointern/darkpool-svc/internal/data"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type batches struct {
	mu        sync.RWMutex
	byID      map[int64]data.Batch
	currentID int64
}

func NewBatches() data.Batches {
	return &batches{byID: make(map[int64]data.Batch)}
}

func (q *batches) Insert(b data.Batch) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.byID[b.ID]; ok {
		return errors.Errorf("batch %d already exists", b.ID)
	}
	q.byID[b.ID] = b
	if b.ID > q.currentID {
		q.currentID = b.ID
	}
	return nil
}

func (q *batches) Get(id int64) (*data.Batch, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	b, ok := q.byID[id]
	if !ok {
		return nil, nil
	}
	b.OrderIDs = append([]int64(nil), b.OrderIDs...)
	return &b, nil
}

func (q *batches) Current() (*data.Batch, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.currentID == 0 {
		return nil, nil
	}
	b := q.byID[q.currentID]
	b.OrderIDs = append([]int64(nil), b.OrderIDs...)
	return &b, nil
}

func (q *batches) AttachOrder(batchID, orderID int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	b, ok := q.byID[batchID]
	if !ok {
		return errors.Errorf("batch %d does not exist", batchID)
	}
	b.OrderIDs = append(b.OrderIDs, orderID)
	q.byID[batchID] = b
	return nil
}
