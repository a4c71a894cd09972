package embedders

import (
	"errors"
	"strconv"
)

// BitPayload is the payload cut into the symbols that fit into one header field.
// It is built once and never modified.
type BitPayload struct {
	Symbols []uint32
	Width   uint
	Bytes   int
}

func NewBitPayload(data []byte, width uint) (*BitPayload, error) {
	if width == 0 || width > 32 {
		return nil, errors.New("Symbol width must be between 1 and 32; found " + strconv.Itoa(int(width)))
	}
	return &BitPayload{Symbols: Split(data, width), Width: width, Bytes: len(data)}, nil
}

func (p *BitPayload) Len() int {
	return len(p.Symbols)
}

// Split reads data as a MSB first bit stream and cuts it into width bit symbols.
// The last symbol is padded with zero bits.
func Split(data []byte, width uint) []uint32 {
	var (
		nbits   int      = len(data) * 8
		n       int      = (nbits + int(width) - 1) / int(width)
		symbols []uint32 = make([]uint32, n)
		bitPos  int      = 0
	)
	for i := range symbols {
		var sym uint32
		for j := uint(0); j < width; j += 1 {
			sym <<= 1
			if bitPos < nbits && 0 != (0x80>>uint(bitPos%8))&data[bitPos/8] {
				sym |= 1
			}
			bitPos += 1
		}
		symbols[i] = sym
	}
	return symbols
}

// Join is the inverse of Split. The output is truncated to n bytes, which drops
// the padding; missing trailing symbols leave zero bytes.
func Join(symbols []uint32, width uint, n int) []byte {
	var (
		data   []byte = make([]byte, n)
		bitPos int    = 0
	)
	for _, sym := range symbols {
		for j := int(width) - 1; j >= 0; j -= 1 {
			if bitPos/8 >= n {
				return data
			}
			if 0 != (sym>>uint(j))&1 {
				data[bitPos/8] |= 0x80 >> uint(bitPos%8)
			}
			bitPos += 1
		}
	}
	return data
}
