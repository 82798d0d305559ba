package types

// Geometry describes the addressable bank of a flash device.
type Geometry struct {
	Base      Address `json:"base"`
	Size      int     `json:"size"`       // bytes
	EraseUnit int     `json:"erase_unit"` // bytes per erase unit (page)
}

// End returns the first address past the bank.
func (g Geometry) End() uint64 { return uint64(g.Base) + uint64(g.Size) }

// Contains reports whether [addr, addr+n) lies inside the bank.
func (g Geometry) Contains(addr Address, n int) bool {
	if n < 0 || addr < g.Base {
		return false
	}
	return uint64(addr)+uint64(n) <= g.End()
}

// Units returns the number of erase units in the bank.
func (g Geometry) Units() int {
	if g.EraseUnit <= 0 {
		return 0
	}
	return g.Size / g.EraseUnit
}
