package checksum

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

var ErrChecksum = errors.New("Checksum failure")

// Checksum appends a big endian crc32 of the payload, so a receiver can
// tell a restored payload from a damaged one without the original file
type Checksum struct {
	table *crc32.Table
}

func (cs *Checksum) Process(data []byte) ([]byte, error) {
	out := make([]byte, len(data)+4)
	copy(out, data)
	binary.BigEndian.PutUint32(out[len(data):], crc32.Checksum(data, cs.table))
	return out, nil
}

func (cs *Checksum) Unprocess(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, errors.New("Insufficient length for checksum")
	}
	body := data[:len(data)-4]
	if binary.BigEndian.Uint32(data[len(body):]) != crc32.Checksum(body, cs.table) {
		return nil, ErrChecksum
	}
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}
