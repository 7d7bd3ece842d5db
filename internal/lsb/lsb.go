// Package lsb embeds a bit stream into the least significant bits of an
// ordered sequence of carrier bytes and reads it back. Carriers supply the
// ordering through the Slots interface; the bit packing lives only here.
package lsb

import (
	"errors"
	"fmt"

	"github.com/faanross/stegocrypt/internal/payload"
)

// ErrCapacity is returned when a payload does not fit in a carrier.
var ErrCapacity = errors.New("message is too long for the selected carrier")

// CapacityError reports how many slots a payload needed and how many the
// carrier offered.
type CapacityError struct {
	Needed    int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v: payload needs %d bits, carrier holds %d",
		ErrCapacity, e.Needed, e.Available)
}

// Is implements errors.Is for sentinel matching.
func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacity
}

// Slots is an ordered sequence of mutable carrier bytes. Each slot hosts
// one payload bit in its LSB.
type Slots interface {
	Len() int
	Get(i int) byte
	Set(i int, v byte)
}

// ByteSlots exposes a plain byte slice, one slot per byte.
type ByteSlots []byte

func (s ByteSlots) Len() int          { return len(s) }
func (s ByteSlots) Get(i int) byte    { return s[i] }
func (s ByteSlots) Set(i int, v byte) { s[i] = v }

// EmbedBit modifies the LSB of a carrier byte to store a bit
func EmbedBit(value, bit byte) byte {
	return value&0xFE | bit&1
}

// Embed writes bits, one per slot, starting at slot 0. Slots past the last
// bit are untouched. The capacity check happens before the first write, so
// on error the carrier is unchanged.
func Embed(bits []byte, slots Slots) error {
	if len(bits) > slots.Len() {
		return &CapacityError{Needed: len(bits), Available: slots.Len()}
	}

	for i, bit := range bits {
		slots.Set(i, EmbedBit(slots.Get(i), bit))
	}
	return nil
}

// ExtractBits reads the LSB of every slot in order.
func ExtractBits(slots Slots) []byte {
	bits := make([]byte, slots.Len())
	for i := range bits {
		bits[i] = slots.Get(i) & 1
	}
	return bits
}

// Extract reads every slot and packs the LSBs into bytes, most significant
// bit first. A trailing group of fewer than 8 slots is dropped.
func Extract(slots Slots) []byte {
	return payload.BitsToBytes(ExtractBits(slots))
}
