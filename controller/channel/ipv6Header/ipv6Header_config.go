package ipv6Header

import (
	"errors"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/channel"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/channel/embedders"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/config"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/log"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/stats"
)

const (
	defaultSenderRepetitions   = 10
	defaultReceiverRepetitions = 20
)

type ConfigClient struct {
	Role        config.SelectParam
	Field       config.SelectParam
	CleanCount  config.U64Param
	StegoCount  config.U64Param
	Repetitions config.U64Param
	Queue       config.U16Param
}

func GetDefault() ConfigClient {
	return ConfigClient{
		Role:        config.MakeSelect("sender", []string{"sender", "receiver"}, config.Display{Description: "Whether this side injects or exfiltrates the payload."}),
		Field:       config.MakeSelect("flow-label", []string{"flow-label", "hop-limit"}, config.Display{Description: "The IPv6 header field carrying the payload."}),
		CleanCount:  config.MakeU64(0, [2]uint64{0, 65535}, config.Display{Description: "Number of clean packets between two stego bursts."}),
		StegoCount:  config.MakeU64(0, [2]uint64{0, 65535}, config.Display{Description: "Number of stego packets in one burst."}),
		Repetitions: config.MakeU64(0, [2]uint64{0, 1000000}, config.Display{Description: "Number of sessions to run, 0 selects 10 for a sender and 20 for a receiver."}),
		Queue:       config.MakeU16(1, [2]uint16{0, 65535}, config.Display{Description: "The netfilter queue number the packets are read from."}),
	}
}

// Rounds returns the effective number of repetitions
func (cc ConfigClient) Rounds() uint64 {
	if cc.Repetitions.Value != 0 {
		return cc.Repetitions.Value
	}
	if cc.Role.Value == string(stats.Receiver) {
		return defaultReceiverRepetitions
	}
	return defaultSenderRepetitions
}

// Burst returns the clean and stego counts, both are zero unless both are set
func (cc ConfigClient) Burst() (clean, stego uint64) {
	clean, stego = cc.CleanCount.Value, cc.StegoCount.Value
	if (clean == 0) != (stego == 0) {
		return 0, 0
	}
	return clean, stego
}

func CodecFor(field string) (embedders.FieldCodec, error) {
	switch field {
	case "flow-label":
		return embedders.NewFlowLabelCodec(), nil
	case "hop-limit":
		return embedders.NewHopLimitCodec(), nil
	default:
		return nil, errors.New("Invalid field value")
	}
}

// ToChannel builds a channel carrying data. onComplete may be nil.
func ToChannel(cc ConfigClient, data []byte, onComplete func(channel.Result) bool) (*Channel, error) {
	var c Config
	if err := config.Validate(cc); err != nil {
		return nil, err
	}

	switch cc.Role.Value {
	case "sender":
		c.Role = stats.Sender
	case "receiver":
		c.Role = stats.Receiver
	default:
		return nil, errors.New("Invalid role value")
	}

	codec, err := CodecFor(cc.Field.Value)
	if err != nil {
		return nil, err
	}
	c.Codec = codec

	if len(data) == 0 {
		return nil, errors.New("Payload is empty")
	}
	if c.Payload, err = embedders.NewBitPayload(data, codec.Width()); err != nil {
		return nil, err
	}

	c.CleanCount, c.StegoCount = cc.Burst()
	if c.CleanCount != cc.CleanCount.Value || c.StegoCount != cc.StegoCount.Value {
		log.Warn().
			Uint64("consecutive_clean", cc.CleanCount.Value).
			Uint64("consecutive_stego", cc.StegoCount.Value).
			Msg("burst pattern needs both counts, both set to 0")
	}
	c.OnComplete = onComplete

	if ch, err := MakeChannel(c); err != nil {
		return nil, err
	} else {
		return ch, nil
	}
}
