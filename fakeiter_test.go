package jacquesctf

// fakeIterator is a scripted Iterator test double: a fixed sequence of
// elements followed by a terminal condition (ErrEndOfPacket or a
// *DecodingError), satisfying the idempotency contract Iterator.Next
// documents — once the terminal condition is reached, repeated Next calls
// keep returning it without advancing.
type fakeIterator struct {
	elems       []Element
	terminalErr error

	current  Element
	idx      int
	terminal bool
}

func newFakeIterator(elems []Element, terminalErr error) *fakeIterator {
	return &fakeIterator{elems: elems, terminalErr: terminalErr}
}

func (f *fakeIterator) Next() error {
	if f.terminal {
		return f.terminalErr
	}

	if f.idx >= len(f.elems) {
		f.terminal = true
		return f.terminalErr
	}

	f.current = f.elems[f.idx]
	f.idx++
	return nil
}

func (f *fakeIterator) Element() Element {
	return f.current
}

type fakeIteratorPosition struct {
	idx      int
	terminal bool
}

func (f *fakeIterator) Position() DecoderPosition {
	return fakeIteratorPosition{idx: f.idx, terminal: f.terminal}
}

func (f *fakeIterator) Seek(pos DecoderPosition) error {
	p := pos.(fakeIteratorPosition)
	f.idx = p.idx
	f.terminal = p.terminal
	return nil
}

type fakeEventRecordType struct {
	name string
}

func (t fakeEventRecordType) Name() string { return t.name }

// scriptedPacket builds the Element sequence for a synthetic packet: one
// scalar preamble field of preambleBits bits, followed by numEvents event
// records each containing a single scalar payload field of fieldBits bits,
// followed by trailingBits of padding before end-of-packet.
func scriptedPacket(numEvents int, preambleBits Index, fieldBits Size, trailingBits Size) ([]Element, Index) {
	typ := fakeDataType{sizeBits: preambleBits, byteOrder: ByteOrderBigEndian}
	fieldType := fakeDataType{sizeBits: fieldBits, byteOrder: ByteOrderLittleEndian}
	erType := fakeEventRecordType{name: "sample_event"}

	var elems []Element
	elems = append(elems, Element{Kind: ElemUnsignedInt, OffsetBits: 0, Type: typ, Value: unsignedValue(0xBEEF)})

	offset := preambleBits

	for i := 0; i < numEvents; i++ {
		ts := Timestamp{Cycles: uint64(i)}

		elems = append(elems,
			Element{Kind: ElemEventRecordBegin, OffsetBits: offset},
			Element{Kind: ElemEventRecordTypeResolved, EventRecordType: erType},
			Element{Kind: ElemTimestampResolved, Timestamp: &ts},
			Element{Kind: ElemUnsignedInt, OffsetBits: offset, Type: fieldType, Value: unsignedValue(uint64(i))},
			Element{Kind: ElemEventRecordEnd},
		)

		offset += fieldBits
	}

	return elems, offset + trailingBits
}
