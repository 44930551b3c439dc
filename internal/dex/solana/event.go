package solana

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
)

// CreateEvent is emitted by the pump.fun program when a token is launched.
// Newer program versions append fields after User; they are ignored.
type CreateEvent struct {
	Name         string
	Symbol       string
	URI          string
	Mint         solana.PublicKey
	BondingCurve solana.PublicKey
	User         solana.PublicKey
}

var createEventDiscriminator = eventDiscriminator("CreateEvent")

// eventDiscriminator is the Anchor event tag: sha256("event:<Name>")[:8].
func eventDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("event:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// DecodeCreateEvent parses a "Program data:" payload. ok is false when data
// carries a different event.
func DecodeCreateEvent(data []byte) (ev CreateEvent, ok bool, err error) {
	if len(data) < 8 || !bytes.Equal(data[:8], createEventDiscriminator[:]) {
		return CreateEvent{}, false, nil
	}
	if err := bin.NewBorshDecoder(data[8:]).Decode(&ev); err != nil {
		return CreateEvent{}, true, fmt.Errorf("decode create event: %w", err)
	}
	return ev, true, nil
}

// EncodeCreateEvent is the inverse of DecodeCreateEvent.
func EncodeCreateEvent(ev CreateEvent) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(createEventDiscriminator[:])
	if err := bin.NewBorshEncoder(&buf).Encode(ev); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
