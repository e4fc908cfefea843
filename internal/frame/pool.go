package frame

// Pool owns a fixed set of buffers created up front. Buffers leave through
// Acquire and come back only through Release; the pool never allocates after
// NewPool returns.
//
// A Pool is not safe for concurrent use. The pipeline loop is its only writer.
type Pool struct {
	all    []*Buffer
	index  map[*Buffer]int
	free   *Queue
	isFree []bool
	closed bool
}

// NewPool allocates n buffers of w x h, numbered from firstID, all free.
func NewPool(n, w, h, firstID int) *Pool {
	p := &Pool{
		all:    make([]*Buffer, n),
		index:  make(map[*Buffer]int, n),
		free:   NewQueue(n),
		isFree: make([]bool, n),
	}
	for i := 0; i < n; i++ {
		b := NewBuffer(firstID+i, w, h)
		p.all[i] = b
		p.index[b] = i
		p.isFree[i] = true
		p.free.Push(b)
	}
	return p
}

// Acquire removes and returns the head of the free list.
func (p *Pool) Acquire() (*Buffer, error) {
	b, ok := p.free.Pop()
	if !ok {
		return nil, poolExhaustedError{size: len(p.all)}
	}
	p.isFree[p.index[b]] = false
	return b, nil
}

// Release returns b to the tail of the free list. Releasing a buffer that is
// already free, or one the pool does not own, is an error and leaves the pool
// unchanged.
func (p *Pool) Release(b *Buffer) error {
	i, ok := p.index[b]
	if !ok {
		id := -1
		if b != nil {
			id = b.ID
		}
		return foreignBufferError{id: id}
	}
	if p.isFree[i] {
		return doubleReleaseError{id: b.ID}
	}
	p.isFree[i] = true
	p.free.Push(b)
	return nil
}

// Free returns the number of buffers available to Acquire.
func (p *Pool) Free() int { return p.free.Len() }

// Size returns the total number of buffers the pool owns.
func (p *Pool) Size() int { return len(p.all) }

// Owns reports whether b was created by this pool.
func (p *Pool) Owns(b *Buffer) bool {
	_, ok := p.index[b]
	return ok
}

// IsFree reports whether b is currently on the free list.
func (p *Pool) IsFree(b *Buffer) bool {
	i, ok := p.index[b]
	return ok && p.isFree[i]
}

// Buffers returns every buffer the pool owns, in creation order.
func (p *Pool) Buffers() []*Buffer {
	out := make([]*Buffer, len(p.all))
	copy(out, p.all)
	return out
}

// Close drops the pixel storage of every buffer regardless of where it is held
// and returns how many buffers were released. A second Close returns 0.
func (p *Pool) Close() int {
	if p.closed {
		return 0
	}
	p.closed = true
	for i, b := range p.all {
		b.Img = nil
		p.isFree[i] = true
	}
	for p.free.Len() > 0 {
		p.free.Pop()
	}
	return len(p.all)
}

// Closed reports whether Close has run.
func (p *Pool) Closed() bool { return p.closed }
