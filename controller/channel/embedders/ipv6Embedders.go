package embedders

import (
	"errors"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"golang.org/x/net/ipv6"
)

var (
	ErrShortPacket = errors.New("Packet shorter than an IPv6 header")
	ErrNotIPv6     = errors.New("Packet is not IPv6")
)

// HeaderField reads and rewrites one field of the fixed IPv6 header
// of a raw packet, as delivered by the packet queue (no link layer).
type HeaderField interface {
	Name() string
	Bits() uint
	Get(pkt []byte) (uint32, error)
	// Set returns a copy of pkt with the field replaced, every other byte is left untouched
	Set(pkt []byte, v uint32) ([]byte, error)
}

func parseHeader(pkt []byte) (*ipv6.Header, error) {
	h, err := ipv6.ParseHeader(pkt)
	if err != nil {
		return nil, ErrShortPacket
	}
	if h.Version != ipv6.Version {
		return nil, ErrNotIPv6
	}
	return h, nil
}

// The flow label is not part of any checksum pseudo header, so it can
// be changed without touching the upper layer
type FlowLabelField struct{}

func (f *FlowLabelField) Name() string {
	return "flow_label"
}

func (f *FlowLabelField) Bits() uint {
	return 20
}

func (f *FlowLabelField) Get(pkt []byte) (uint32, error) {
	if h, err := parseHeader(pkt); err == nil {
		return uint32(h.FlowLabel), nil
	} else {
		return 0, err
	}
}

func (f *FlowLabelField) Set(pkt []byte, v uint32) ([]byte, error) {
	if _, err := parseHeader(pkt); err != nil {
		return nil, err
	}
	out := make([]byte, len(pkt))
	copy(out, pkt)
	v &= 0xFFFFF
	out[1] = (out[1] & 0xF0) | byte(v>>16)
	out[2] = byte(v >> 8)
	out[3] = byte(v)
	return out, nil
}

// Routers decrement the hop limit, so only relative values survive the path
type HopLimitField struct{}

func (f *HopLimitField) Name() string {
	return "hop_limit"
}

func (f *HopLimitField) Bits() uint {
	return 8
}

func (f *HopLimitField) Get(pkt []byte) (uint32, error) {
	if h, err := parseHeader(pkt); err == nil {
		return uint32(h.HopLimit), nil
	} else {
		return 0, err
	}
}

func (f *HopLimitField) Set(pkt []byte, v uint32) ([]byte, error) {
	if _, err := parseHeader(pkt); err != nil {
		return nil, err
	}
	out := make([]byte, len(pkt))
	copy(out, pkt)
	out[7] = byte(v)
	return out, nil
}

// Describe returns the source and destination of a packet for logging.
func Describe(pkt []byte) string {
	var ip6 layers.IPv6
	if err := ip6.DecodeFromBytes(pkt, gopacket.NilDecodeFeedback); err != nil {
		return "invalid: " + err.Error()
	}
	return ip6.SrcIP.String() + " > " + ip6.DstIP.String() + " (" + ip6.NextHeader.String() + ")"
}
