package embedders

// BurstScheduler interleaves runs of stego packets with runs of clean
// packets: Stego stego slots, then Clean clean slots, repeated.
// If either count is zero every slot is a stego slot.
type BurstScheduler struct {
	Clean      uint64
	Stego      uint64
	counter    uint64
	cleanPhase bool
}

func NewBurstScheduler(clean, stego uint64) *BurstScheduler {
	return &BurstScheduler{Clean: clean, Stego: stego}
}

func (b *BurstScheduler) enabled() bool {
	return b.Clean > 0 && b.Stego > 0
}

// InStego reports whether the current slot is a stego slot without consuming it
func (b *BurstScheduler) InStego() bool {
	return !b.enabled() || !b.cleanPhase
}

// Advance consumes the current slot and reports whether it was a stego slot
func (b *BurstScheduler) Advance() bool {
	if !b.enabled() {
		return true
	}
	stego := !b.cleanPhase
	b.counter += 1
	if stego && b.counter >= b.Stego {
		b.cleanPhase = true
		b.counter = 0
	} else if !stego && b.counter >= b.Clean {
		b.cleanPhase = false
		b.counter = 0
	}
	return stego
}

func (b *BurstScheduler) Reset() {
	b.counter = 0
	b.cleanPhase = false
}

// Pattern renders n cycles of the schedule, e.g. "S S S C C S S S C C ..."
func (b *BurstScheduler) Pattern(n int) string {
	if !b.enabled() {
		return "S ..."
	}
	var buf []byte
	for i := 0; i < n; i += 1 {
		for j := uint64(0); j < b.Stego; j += 1 {
			buf = append(buf, "S "...)
		}
		for j := uint64(0); j < b.Clean; j += 1 {
			buf = append(buf, "C "...)
		}
	}
	return string(buf) + "..."
}
