package main

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/google/gopacket/layers"
)

// IPv4/TCP header parsing and serialization is delegated to gopacket/layers
// rather than hand-rolled byte math.

// addrToNetIP converts a netip.Addr into the 4-byte net.IP gopacket expects.
func addrToNetIP(a netip.Addr) net.IP {
	b := a.As4()
	return net.IP(b[:])
}

// netIPToAddr converts the net.IP gopacket hands back into a netip.Addr.
func netIPToAddr(ip net.IP) (netip.Addr, error) {
	ip4 := ip.To4()
	if ip4 == nil {
		return netip.Addr{}, fmt.Errorf("not an IPv4 address: %v", ip)
	}
	return netip.AddrFrom4([4]byte(ip4)), nil
}

// newIPv4Template builds the scaffold IPv4 header reused for every outbound
// segment on a connection: addresses fixed at connection creation, TTL=64,
// protocol=TCP. Total length is recomputed by the serializer (FixLengths)
// on every emission.
func newIPv4Template(src, dst netip.Addr) *layers.IPv4 {
	return &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      outboundTTL,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    addrToNetIP(src),
		DstIP:    addrToNetIP(dst),
	}
}
