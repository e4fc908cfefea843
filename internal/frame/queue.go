package frame

// Queue is a fixed-capacity FIFO of buffers backed by a ring. It never grows,
// so pushing and popping at steady state does not allocate.
type Queue struct {
	ring []*Buffer
	head int
	n    int
}

// NewQueue returns an empty queue able to hold capacity buffers.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{ring: make([]*Buffer, capacity)}
}

// Push appends b at the tail. It reports false when the queue is full.
func (q *Queue) Push(b *Buffer) bool {
	if q.n == len(q.ring) {
		return false
	}
	q.ring[(q.head+q.n)%len(q.ring)] = b
	q.n++
	return true
}

// Pop removes and returns the head buffer.
func (q *Queue) Pop() (*Buffer, bool) {
	if q.n == 0 {
		return nil, false
	}
	b := q.ring[q.head]
	q.ring[q.head] = nil
	q.head = (q.head + 1) % len(q.ring)
	q.n--
	return b, true
}

// Len returns the number of queued buffers.
func (q *Queue) Len() int { return q.n }

// Cap returns the fixed capacity.
func (q *Queue) Cap() int { return len(q.ring) }

// Contains reports whether b is queued. Linear in Len; used for accounting only.
func (q *Queue) Contains(b *Buffer) bool {
	for i := 0; i < q.n; i++ {
		if q.ring[(q.head+i)%len(q.ring)] == b {
			return true
		}
	}
	return false
}

// Each calls fn for every queued buffer, head first.
func (q *Queue) Each(fn func(*Buffer)) {
	for i := 0; i < q.n; i++ {
		fn(q.ring[(q.head+i)%len(q.ring)])
	}
}
