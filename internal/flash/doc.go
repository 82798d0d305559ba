// Package flash presents a word-programmed flash region as a byte stream.
//
// A Controller owns one Device. Open returns a Session over a region
// [start, start+size) that can be read, written and seeked byte by byte;
// the session packs bytes into device words and carries a trailing odd
// byte across Write calls until the next Write or Close.
//
// # Packing
//
// A word at even address A holds byte A in its low half and byte A+1 in
// its high half. Reads and writes use no other layout.
//
// # Odd-length streams
//
// When a writable session is closed with a byte still pending, the byte is
// programmed as the low half of one final word whose high half is the
// configured pad byte (0x00 unless WithPadByte says otherwise). A stream of
// odd length therefore occupies one extra byte on the device.
//
// # Lifecycle
//
// Opening a writable session unlocks the device and erases every erase unit
// the region touches, including bytes of those units outside the region.
// Close flushes, then relocks the device once no writable session remains.
// A Session must be used from one goroutine at a time; the Controller itself
// is safe for concurrent use.
package flash
