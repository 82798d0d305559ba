package flash

import (
	"fmt"

	"flashio/internal/domain"
)

// packWord builds the word stored at an even address A from the bytes at
// A (lo) and A+1 (hi).
func packWord(lo, hi byte) domain.Word {
	return domain.Word(lo) | domain.Word(hi)<<8
}

func unpackWord(w domain.Word) (lo, hi byte) {
	return byte(w), byte(w >> 8)
}

// wordSpan returns the aligned address of the word holding addr and the
// number of words needed to cover n bytes from addr.
func wordSpan(addr domain.Address, n int) (domain.Address, int) {
	aligned := addr &^ 1
	last := addr + domain.Address(n) - 1
	return aligned, int((last-aligned)/domain.WordSize) + 1
}

// readWords reads count consecutive words starting at the even address base.
func readWords(dev domain.Device, base domain.Address, count int) ([]domain.Word, error) {
	if !dev.Geometry().Contains(base, count*domain.WordSize) {
		return nil, fmt.Errorf("%w: %d words at %s", ErrOutOfRange, count, base)
	}
	words := make([]domain.Word, count)
	for i := range words {
		addr := base + domain.Address(i*domain.WordSize)
		w, err := dev.ReadWord(addr)
		if err != nil {
			return nil, hardware(err, "read word at %s", addr)
		}
		words[i] = w
	}
	return words, nil
}

// unpackBytes fills p from words, where words[0] is the aligned word
// holding p[0]. odd reports that p[0] sits in the high half of words[0].
func unpackBytes(p []byte, words []domain.Word, odd bool) {
	skew := 0
	if odd {
		skew = 1
	}
	for i := range p {
		j := i + skew
		lo, hi := unpackWord(words[j/2])
		if j%2 == 0 {
			p[i] = lo
		} else {
			p[i] = hi
		}
	}
}
