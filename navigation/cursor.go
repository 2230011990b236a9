package navigation

// Cursor is an index into a list that either stops or wraps at the edges
type Cursor struct {
	Index int
	Wrap  bool
}

// Move steps by delta within n entries and reports whether the index changed
// A non-wrapping cursor at the edge stays put so the caller re-reads the current entry
func (c *Cursor) Move(delta, n int) bool {
	if n <= 0 {
		c.Index = 0
		return false
	}
	c.Clamp(n)

	next := c.Index + delta
	if next < 0 || next >= n {
		if !c.Wrap {
			return false
		}
		next = ((next % n) + n) % n
	}

	moved := next != c.Index
	c.Index = next
	return moved
}

// Clamp pulls the index into [0, n), an empty list pins it to 0
func (c *Cursor) Clamp(n int) {
	switch {
	case n <= 0 || c.Index < 0:
		c.Index = 0
	case c.Index >= n:
		c.Index = n - 1
	}
}
