package flash

// carry holds at most one byte waiting for a partner to complete a word.
// The byte belongs to the low half of the word at the session cursor.
type carry struct {
	b  byte
	ok bool
}

func (c *carry) set(b byte) { c.b, c.ok = b, true }

func (c *carry) clear() { c.b, c.ok = 0, false }

// len returns the number of bytes held.
func (c carry) len() int {
	if c.ok {
		return 1
	}
	return 0
}
