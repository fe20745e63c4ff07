package main

// sendSequenceSpace tracks the sender's view of its own stream, per RFC 793
// §3.2 Figure 4.
type sendSequenceSpace struct {
	// iss is the initial send sequence number this endpoint chose.
	iss uint32
	// una is the oldest unacknowledged sequence number.
	una uint32
	// nxt is the next sequence number to send.
	nxt uint32
	// wnd is the advertised send window.
	wnd uint16
	// up is the urgent flag; tracked but unused.
	up bool
	// wl1, wl2 record the seq/ack of the last window-update segment;
	// reserved, unused.
	wl1, wl2 uint32
}

// recvSequenceSpace tracks the peer's stream, per RFC 793 §3.2 Figure 5.
type recvSequenceSpace struct {
	// irs is the peer's initial sequence number.
	irs uint32
	// nxt is the next sequence number expected from the peer.
	nxt uint32
	// wnd is the receive window advertised to the peer.
	wnd uint16
	// up is the urgent flag; tracked but unused.
	up bool
}

// isBetweenWrapped returns true iff x lies strictly between start and end
// walking forward on the 32-bit modular sequence ring, open at both ends.
// This is the load-bearing primitive behind every acceptability and
// ACK-validity decision in the state machine.
func isBetweenWrapped(start, x, end uint32) bool {
	switch {
	case start == x:
		return false
	case start < x:
		// iff !(start <= end <= x)
		if end >= start && end <= x {
			return false
		}
	default: // start > x
		// iff start < end < x
		if !(end < start && end > x) {
			return false
		}
	}
	return true
}
