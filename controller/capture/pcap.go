package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

var ErrLinkType = errors.New("Unsupported pcap link type")

// PcapQueue replays the packets of a capture file, so a run can be repeated
// offline. Accepted packets are written to an optional output file as raw
// IPv6, which is the input of the opposite role.
type PcapQueue struct {
	in   *os.File
	r    *pcapgo.Reader
	out  *os.File
	w    *pcapgo.Writer
	link layers.LinkType
}

func OpenPcap(inPath, outPath string) (*PcapQueue, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("capture: open %s: %w", inPath, err)
	}
	r, err := pcapgo.NewReader(in)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("capture: read %s: %w", inPath, err)
	}
	q := &PcapQueue{in: in, r: r, link: r.LinkType()}
	if q.link != layers.LinkTypeRaw && q.link != layers.LinkTypeEthernet {
		in.Close()
		return nil, ErrLinkType
	}
	if outPath != "" {
		if q.out, err = os.Create(outPath); err != nil {
			in.Close()
			return nil, fmt.Errorf("capture: create %s: %w", outPath, err)
		}
		q.w = pcapgo.NewWriter(q.out)
		if err := q.w.WriteFileHeader(0xFFFF, layers.LinkTypeRaw); err != nil {
			q.Close()
			return nil, fmt.Errorf("capture: write %s: %w", outPath, err)
		}
	}
	return q, nil
}

// Run returns nil once the file is exhausted
func (q *PcapQueue) Run(ctx context.Context, fn Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		data, ci, err := q.r.ReadPacketData()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return fmt.Errorf("capture: read packet: %w", err)
		}
		data, ok := q.network(data)
		if !ok {
			continue
		}
		if out := fn(data); out != nil {
			data = out
		}
		if q.w != nil {
			ci.CaptureLength, ci.Length = len(data), len(data)
			if err := q.w.WritePacket(ci, data); err != nil {
				return fmt.Errorf("capture: write packet: %w", err)
			}
		}
	}
}

// network strips the link layer, only IPv6 frames are delivered
func (q *PcapQueue) network(data []byte) ([]byte, bool) {
	if q.link == layers.LinkTypeRaw {
		return data, len(data) > 0 && data[0]>>4 == 6
	}
	var eth layers.Ethernet
	if err := eth.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return nil, false
	}
	return eth.Payload, eth.EthernetType == layers.EthernetTypeIPv6
}

func (q *PcapQueue) Close() error {
	var errs []error
	if q.in != nil {
		errs = append(errs, q.in.Close())
		q.in = nil
	}
	if q.out != nil {
		errs = append(errs, q.out.Close())
		q.out = nil
	}
	return errors.Join(errs...)
}

// WritePcap stores raw IPv6 packets in a capture file
func WritePcap(path string, packets [][]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(0xFFFF, layers.LinkTypeRaw); err != nil {
		f.Close()
		return err
	}
	for _, p := range packets {
		ci := gopacket.CaptureInfo{CaptureLength: len(p), Length: len(p)}
		if err := w.WritePacket(ci, p); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}
