package embedders

type Delimiter uint8

const (
	NoDelimiter Delimiter = iota
	StartDelimiter
	EndDelimiter
)

func (d Delimiter) String() string {
	switch d {
	case StartDelimiter:
		return "start"
	case EndDelimiter:
		return "end"
	default:
		return "none"
	}
}

// FieldCodec maps symbols to and from the value of one header field.
//
// A codec solves delimiter collisions in one of two ways. If a delimiter
// lies inside the data domain, Decode reports it with ok set, and the
// channel must stuff every data symbol that Stuffed reports (send it
// twice and resolve with one packet of lookahead). If the delimiters lie
// outside the data domain, Decode reports them with ok unset and no
// stuffing is needed.
type FieldCodec interface {
	Field() HeaderField
	// Number of payload bits carried per stego packet
	Width() uint
	// Encode returns the field value carrying symbol, or the START
	// delimiter if first is set. current is the value the packet arrived with.
	Encode(current, symbol uint32, first bool) uint32
	// Terminator returns the END delimiter
	Terminator(current uint32) uint32
	Decode(value uint32) (symbol uint32, ok bool, delim Delimiter)
	Stuffed(symbol uint32) bool
}

const (
	FlowLabelStart uint32 = 0xFFFFF
	FlowLabelEnd   uint32 = 0xFFFFE
)

// DirectCodec writes symbols verbatim into a field that is not modified in transit.
type DirectCodec struct {
	field HeaderField
	start uint32
	end   uint32
}

func NewFlowLabelCodec() *DirectCodec {
	return &DirectCodec{field: &FlowLabelField{}, start: FlowLabelStart, end: FlowLabelEnd}
}

func (c *DirectCodec) Field() HeaderField {
	return c.field
}

func (c *DirectCodec) Width() uint {
	return c.field.Bits()
}

func (c *DirectCodec) Encode(current, symbol uint32, first bool) uint32 {
	if first {
		return c.start
	}
	return symbol
}

func (c *DirectCodec) Terminator(current uint32) uint32 {
	return c.end
}

// Both delimiters are also valid data values
func (c *DirectCodec) Decode(value uint32) (uint32, bool, Delimiter) {
	switch value {
	case c.start:
		return value, true, StartDelimiter
	case c.end:
		return value, true, EndDelimiter
	default:
		return value, true, NoDelimiter
	}
}

func (c *DirectCodec) Stuffed(symbol uint32) bool {
	return symbol == c.end
}

const (
	HopLimitStart  uint32 = 255
	HopLimitEnd    uint32 = 200
	HopLimitOffset uint32 = 20

	// Receiver side bands, applied to the already decremented value
	hopStartFloor uint32 = 230
	hopEndFloor   uint32 = 150
	hopZeroCeil   uint32 = 64
)

// RelativeCodec carries one bit per packet as an offset from the value the
// packet already has. The receiver classifies the decremented value into
// disjoint bands, so the delimiters can never be confused with data.
type RelativeCodec struct {
	field  HeaderField
	offset uint32
}

func NewHopLimitCodec() *RelativeCodec {
	return &RelativeCodec{field: &HopLimitField{}, offset: HopLimitOffset}
}

func (c *RelativeCodec) Field() HeaderField {
	return c.field
}

func (c *RelativeCodec) Width() uint {
	return 1
}

func (c *RelativeCodec) Encode(current, symbol uint32, first bool) uint32 {
	if first {
		return HopLimitStart
	}
	if symbol&1 == 1 {
		if current+c.offset > 0xFF {
			return 0xFF
		}
		return current + c.offset
	}
	if current < c.offset {
		return 0
	}
	return current - c.offset
}

func (c *RelativeCodec) Terminator(current uint32) uint32 {
	return HopLimitEnd
}

func (c *RelativeCodec) Decode(value uint32) (uint32, bool, Delimiter) {
	switch {
	case value > hopStartFloor:
		return 0, false, StartDelimiter
	case value > hopEndFloor && value < hopStartFloor:
		return 0, false, EndDelimiter
	case value > hopZeroCeil && value < hopEndFloor:
		return 1, true, NoDelimiter
	case value < hopZeroCeil:
		return 0, true, NoDelimiter
	default:
		return 0, false, NoDelimiter
	}
}

func (c *RelativeCodec) Stuffed(symbol uint32) bool {
	return false
}
