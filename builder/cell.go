package builder

// cell is a single-writer value holder. Writes that are structurally equal to
// the current value are dropped, which keeps handlers that write each
// other's cells from re-triggering forever. Notifications are collected by
// flush and delivered by the builder once an operation has fully reconciled.
type cell[T any] struct {
	value T
	equal func(a, b T) bool
	clone func(T) T
	dirty bool

	nextID int
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

func newCell[T any](equal func(a, b T) bool, clone func(T) T) *cell[T] {
	return &cell[T]{equal: equal, clone: clone}
}

func (c *cell[T]) get() T {
	return c.clone(c.value)
}

// set stores a copy of v and reports whether the value changed.
func (c *cell[T]) set(v T) bool {
	if c.equal(c.value, v) {
		return false
	}
	c.value = c.clone(v)
	c.dirty = true
	return true
}

func (c *cell[T]) subscribe(fn func(T)) int {
	c.nextID++
	c.subs = append(c.subs, subscriber[T]{id: c.nextID, fn: fn})
	return c.nextID
}

func (c *cell[T]) unsubscribe(id int) {
	for i, s := range c.subs {
		if s.id == id {
			c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
			return
		}
	}
}

// flush clears the dirty flag and returns the pending notification, or nil.
// The returned func captures the value and subscriber list at flush time.
func (c *cell[T]) flush() func() {
	if !c.dirty {
		return nil
	}
	c.dirty = false
	if len(c.subs) == 0 {
		return nil
	}
	subs := append([]subscriber[T](nil), c.subs...)
	v := c.value
	return func() {
		for _, s := range subs {
			s.fn(c.clone(v))
		}
	}
}

// reset drops the value, pending notification and subscribers.
func (c *cell[T]) reset() {
	var zero T
	c.value = zero
	c.dirty = false
	c.subs = nil
}
