package memory

import (
	"sort"
	"sync"

	"github.com/nemointern/darkpool-svc/internal/data"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type orders struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]data.Order
}

func NewOrders() data.Orders {
	return &orders{byID: make(map[int64]data.Order)}
}

func (q *orders) Insert(o data.Order) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	o.ID = q.nextID
	q.byID[o.ID] = o
	return o.ID, nil
}

func (q *orders) Get(id int64) (*data.Order, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	o, ok := q.byID[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (q *orders) Update(o data.Order) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.byID[o.ID]; !ok {
		return errors.Errorf("order %d does not exist", o.ID)
	}
	q.byID[o.ID] = o
	return nil
}

func (q *orders) ByBatch(batchID int64) ([]data.Order, error) {
	return q.selectByBatch(batchID, func(data.Order) bool { return true })
}

func (q *orders) RevealedByBatch(batchID int64) ([]data.Order, error) {
	return q.selectByBatch(batchID, func(o data.Order) bool {
		return o.Status == data.StatusRevealed
	})
}

func (q *orders) selectByBatch(batchID int64, keep func(data.Order) bool) ([]data.Order, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	res := make([]data.Order, 0)
	for _, o := range q.byID {
		if o.BatchID == batchID && keep(o) {
			res = append(res, o)
		}
	}
	// map iteration order is random, callers rely on submission order
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}
