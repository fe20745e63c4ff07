package main

import (
	"fmt"
	"net/netip"
)

// quad is the four-tuple that uniquely identifies a TCP flow: source and
// destination IPv4 address and port. It is value-typed, hashable and
// comparable by structural equality so it can key a Go map directly.
type quad struct {
	srcIP   netip.Addr
	srcPort uint16
	dstIP   netip.Addr
	dstPort uint16
}

func newQuad(srcIP netip.Addr, srcPort uint16, dstIP netip.Addr, dstPort uint16) quad {
	return quad{
		srcIP:   srcIP,
		srcPort: srcPort,
		dstIP:   dstIP,
		dstPort: dstPort,
	}
}

// reversed swaps source and destination, turning an inbound quad into the
// quad of the reply segment the endpoint will emit.
func (q quad) reversed() quad {
	return quad{srcIP: q.dstIP, srcPort: q.dstPort, dstIP: q.srcIP, dstPort: q.srcPort}
}

func (q quad) String() string {
	return fmt.Sprintf("%s:%d->%s:%d", q.srcIP, q.srcPort, q.dstIP, q.dstPort)
}
