package service

import (
	"hash/fnv"
	"sync"
)

const lineLockStripes = 128

// lineLocks serializes reconciliation per (customer, product, size) tuple.
// The stock check and the quantity write are two store round-trips, so two
// concurrent requests for the same tuple could both pass the check against
// the same stock number; holding the tuple's lock across both steps closes
// that window. Striping keeps the lock table fixed-size.
type lineLocks struct {
	stripes [lineLockStripes]sync.Mutex
}

func newLineLocks() *lineLocks {
	return &lineLocks{}
}

func (l *lineLocks) lock(customer, product, size string) func() {
	h := fnv.New32a()
	h.Write([]byte(customer))
	h.Write([]byte{0})
	h.Write([]byte(product))
	h.Write([]byte{0})
	h.Write([]byte(size))
	mu := &l.stripes[h.Sum32()%lineLockStripes]
	mu.Lock()
	return mu.Unlock
}
