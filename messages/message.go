// Package messages holds the JAUS message catalog: one typed record per
// message code, with wire layouts expressed as encoding descriptor tags.
// Marshal and Unmarshal frame the two-byte code and dispatch to the concrete
// record type.
package messages

import (
	"fmt"

	"github.com/fhackett/gojaus/encoding"
)

// Message is a decoded JAUS message. Every concrete record in this package
// implements it; MessageCode returns the record's fixed discriminator.
type Message interface {
	MessageCode() Code
}

// Id addresses a component within a node within a subsystem. Wire order is
// component, node, then subsystem little-endian.
type Id struct {
	Component uint8  `jaus:"u8"`
	Node      uint8  `jaus:"u8"`
	Subsystem uint16 `jaus:"u16,le"`
}

func (id Id) String() string {
	return fmt.Sprintf("%d.%d.%d", id.Subsystem, id.Node, id.Component)
}

// IsZero reports whether id is the all-zero "nobody" address.
func (id Id) IsZero() bool {
	return id == Id{}
}

// BroadcastId addresses every component everywhere.
var BroadcastId = Id{Subsystem: 0xFFFF, Node: 0xFF, Component: 0xFF}

var registry = map[Code]func() Message{}

// register binds a code to its concrete record type. Duplicate registration
// is a catalog bug and panics at init.
func register(c Code, f func() Message) {
	if _, dup := registry[c]; dup {
		panic(fmt.Sprintf("messages: duplicate registration for code %#04x", uint16(c)))
	}
	registry[c] = f
}

// Marshal encodes m with its two-byte code prefix.
func Marshal(m Message) ([]byte, error) {
	w := encoding.NewWriter()
	w.WriteUintLE(uint64(m.MessageCode()), 2)
	if err := encoding.MarshalTo(w, m); err != nil {
		return nil, fmt.Errorf("messages: marshal %v: %w", m.MessageCode(), err)
	}
	return w.Bytes(), nil
}

// Unmarshal decodes the message code and dispatches to the registered record
// type. Unknown codes fail with encoding.ErrUnknownVariant.
func Unmarshal(data []byte) (Message, error) {
	r := encoding.NewReader(data)
	raw, err := r.ReadUintLE(2)
	if err != nil {
		return nil, fmt.Errorf("messages: read code: %w", err)
	}
	code := Code(raw)
	f, ok := registry[code]
	if !ok {
		return nil, fmt.Errorf("messages: code %#04x: %w", raw, encoding.ErrUnknownVariant)
	}
	m := f()
	if err := encoding.UnmarshalFrom(r, m); err != nil {
		return nil, fmt.Errorf("messages: unmarshal %v: %w", code, err)
	}
	return m, nil
}
