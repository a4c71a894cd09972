package processor

// Processor is a reversible transform of the whole payload. The sender
// applies Process before the payload is cut into symbols and the receiver
// applies Unprocess, in reverse order, to the symbols it collected.
type Processor interface {
	Process(data []byte) ([]byte, error)
	Unprocess(data []byte) ([]byte, error)
}
