package judp

import (
	"fmt"

	"github.com/fhackett/gojaus/encoding"
)

// Payload is one UDP datagram: a version byte followed by back-to-back
// packets.
type Payload struct {
	Packets []Packet
}

// size is the encoded datagram length, version byte included.
func (pl *Payload) size() int {
	n := 1
	for i := range pl.Packets {
		n += pl.Packets[i].DataSize()
	}
	return n
}

// MarshalJAUS writes the version byte and every packet in order.
func (pl *Payload) MarshalJAUS(w *encoding.Writer) error {
	w.WriteU8(TransportVersion)
	for i := range pl.Packets {
		if err := pl.Packets[i].MarshalJAUS(w); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalJAUS reads packets until the datagram is exhausted.
func (pl *Payload) UnmarshalJAUS(r *encoding.Reader) error {
	version, err := r.ReadU8()
	if err != nil {
		return err
	}
	if version != TransportVersion {
		return fmt.Errorf("judp: transport version %d: %w", version, encoding.ErrUnsupportedVersion)
	}
	for !r.AtEnd() {
		var p Packet
		if err := p.UnmarshalJAUS(r); err != nil {
			return err
		}
		pl.Packets = append(pl.Packets, p)
	}
	return nil
}
