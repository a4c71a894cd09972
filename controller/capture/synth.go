package capture

import (
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Synthesize builds n IPv6/UDP packets with a zero flow label, for offline
// runs through a PcapQueue
func Synthesize(n int, src, dst net.IP, hopLimit uint8) ([][]byte, error) {
	if src.To16() == nil || src.To4() != nil || dst.To16() == nil || dst.To4() != nil {
		return nil, fmt.Errorf("capture: %s and %s must be IPv6 addresses", src, dst)
	}
	packets := make([][]byte, 0, n)
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	for i := 0; i < n; i += 1 {
		ip6 := &layers.IPv6{
			Version:    6,
			HopLimit:   hopLimit,
			NextHeader: layers.IPProtocolUDP,
			SrcIP:      src,
			DstIP:      dst,
		}
		udp := &layers.UDP{SrcPort: layers.UDPPort(40000 + i%1000), DstPort: 9}
		udp.SetNetworkLayerForChecksum(ip6)
		buf := gopacket.NewSerializeBuffer()
		payload := gopacket.Payload(fmt.Sprintf("packet %d", i))
		if err := gopacket.SerializeLayers(buf, opts, ip6, udp, payload); err != nil {
			return nil, fmt.Errorf("capture: serialize packet %d: %w", i, err)
		}
		packets = append(packets, buf.Bytes())
	}
	return packets, nil
}
