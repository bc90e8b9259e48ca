// File: reactor/payload.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// EventPayload bit-packing for the epoll user-data slot: a primary/extra
// descriptor pair with a per-half is-timer tag, stuffed into the 64-bit
// user-data value the kernel hands back on each epoll_wait.
//
// Each registered descriptor of a pair carries its OWN payload, naming
// itself as "primary" and the sibling descriptor as "extra": whichever one
// the kernel reports as ready is therefore always decoded from the payload
// as primary, letting dispatch learn "which side fired" and "what to
// cancel" from one 64-bit value with no side lookup. A registration with
// no sibling encodes itself as its own extra (self-paired), which dispatch
// recognizes as "nothing to cancel".
package reactor

const tagBit = uint32(1) << 31

// encodeHalf packs a descriptor and its is-timer tag into 32 bits. It
// panics if fd's top bit is already set, since that bit is reserved for
// the tag.
func encodeHalf(fd int32, isTimer bool) uint32 {
	if fd < 0 || uint32(fd)&tagBit != 0 {
		panic(ErrDescriptorTooLarge)
	}
	v := uint32(fd)
	if isTimer {
		v |= tagBit
	}
	return v
}

func decodeHalf(v uint32) (fd int32, isTimer bool) {
	isTimer = v&tagBit != 0
	fd = int32(v &^ tagBit)
	return
}

// eventPayload is the decoded form of the 64-bit user-data slot.
type eventPayload struct {
	primaryFD     int32
	primaryTimer  bool
	extraFD       int32
	extraTimer    bool
}

// hasPair reports whether this payload names a sibling descriptor distinct
// from itself.
func (p eventPayload) hasPair() bool {
	return p.extraFD != p.primaryFD || p.extraTimer != p.primaryTimer
}

// encodePayload builds the 64-bit value to store in the kernel's user-data
// slot for a registration naming primary as the descriptor that owns this
// particular kernel registration, and extra as its sibling (or itself, if
// unpaired).
func encodePayload(primaryFD int32, primaryTimer bool, extraFD int32, extraTimer bool) uint64 {
	lo := encodeHalf(primaryFD, primaryTimer)
	hi := encodeHalf(extraFD, extraTimer)
	return uint64(lo) | uint64(hi)<<32
}

func decodePayload(v uint64) eventPayload {
	lo := uint32(v)
	hi := uint32(v >> 32)
	primaryFD, primaryTimer := decodeHalf(lo)
	extraFD, extraTimer := decodeHalf(hi)
	return eventPayload{
		primaryFD:    primaryFD,
		primaryTimer: primaryTimer,
		extraFD:      extraFD,
		extraTimer:   extraTimer,
	}
}
