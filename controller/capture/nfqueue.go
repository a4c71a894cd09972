package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/log"
	"github.com/florianl/go-nfqueue"
	"golang.org/x/sys/unix"
)

// NfQueue reads IPv6 packets from a netfilter queue, filled by an
// ip6tables NFQUEUE rule that is installed outside this program.
type NfQueue struct {
	num  uint16
	nf   *nfqueue.Nfqueue
	once sync.Once
}

func OpenNfQueue(num uint16) (*NfQueue, error) {
	conf := nfqueue.Config{
		NfQueue:      num,
		MaxPacketLen: 0xFFFF,
		MaxQueueLen:  0xFF,
		AfFamily:     unix.AF_INET6,
		Copymode:     nfqueue.NfQnlCopyPacket,
		WriteTimeout: 15 * time.Millisecond,
	}
	nf, err := nfqueue.Open(&conf)
	if err != nil {
		return nil, fmt.Errorf("capture: open netfilter queue %d: %w", num, err)
	}
	return &NfQueue{num: num, nf: nf}, nil
}

func (q *NfQueue) Run(ctx context.Context, fn Handler) error {
	// Packets are handled one after the other on the netlink receive goroutine
	hook := func(a nfqueue.Attribute) int {
		if a.PacketID == nil {
			return 0
		}
		id := *a.PacketID
		var data []byte
		if a.Payload != nil {
			data = *a.Payload
		}
		var err error
		if out := fn(data); out != nil {
			err = q.nf.SetVerdictModPacket(id, nfqueue.NfAccept, out)
		} else {
			err = q.nf.SetVerdict(id, nfqueue.NfAccept)
		}
		if err != nil {
			log.Error().Err(err).Uint32("packet", id).Msg("verdict failed")
		}
		return 0
	}
	errFn := func(e error) int {
		log.Error().Err(e).Uint16("queue", q.num).Msg("netfilter queue error")
		return 0
	}
	if err := q.nf.RegisterWithErrorFunc(ctx, hook, errFn); err != nil {
		return fmt.Errorf("capture: register on queue %d: %w", q.num, err)
	}
	<-ctx.Done()
	return nil
}

func (q *NfQueue) Close() error {
	var err error
	q.once.Do(func() { err = q.nf.Close() })
	return err
}
