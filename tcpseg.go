package main

import (
	"fmt"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// newTCPTemplate builds the scaffold TCP header reused for every outbound
// segment on a connection: ports fixed at connection creation (swapped
// from the inbound SYN), ACK always set, sequence/ack numbers patched per
// emission by write().
func newTCPTemplate(srcPort, dstPort uint16) *layers.TCP {
	return &layers.TCP{
		SrcPort: layers.TCPPort(srcPort),
		DstPort: layers.TCPPort(dstPort),
		ACK:     true,
		Window:  advertisedWindow,
	}
}

// segmentLength is the segment's length in sequence-number space (RFC 793
// §3.3): payload bytes plus one for SYN plus one for FIN, since each
// control flag consumes one sequence number.
func segmentLength(tcp *layers.TCP, payload []byte) uint32 {
	length := uint32(len(payload))
	if tcp.SYN {
		length++
	}
	if tcp.FIN {
		length++
	}
	return length
}

// serializeSegment encodes ip+tcp+payload into sb, computing the pseudo-
// header checksum and fixing IP total length / TCP data offset. It returns
// the bytes written. The caller owns sb's lifetime (typically a reused
// gopacket.SerializeBuffer wrapped in a Connection).
func serializeSegment(sb gopacket.SerializeBuffer, ip *layers.IPv4, tcp *layers.TCP, payload []byte) ([]byte, error) {
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, fmt.Errorf("set network layer for tcp checksum: %w", err)
	}
	sb.Clear()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(sb, opts, ip, tcp, gopacket.Payload(payload)); err != nil {
		return nil, fmt.Errorf("serialize ipv4+tcp segment: %w", err)
	}
	return sb.Bytes(), nil
}

// tcpFlagsString renders the set control flags for diagnostic logging.
func tcpFlagsString(tcp *layers.TCP) string {
	var parts []string
	if tcp.SYN {
		parts = append(parts, "SYN")
	}
	if tcp.ACK {
		parts = append(parts, "ACK")
	}
	if tcp.FIN {
		parts = append(parts, "FIN")
	}
	if tcp.RST {
		parts = append(parts, "RST")
	}
	if tcp.PSH {
		parts = append(parts, "PSH")
	}
	if tcp.URG {
		parts = append(parts, "URG")
	}
	if tcp.ECE {
		parts = append(parts, "ECE")
	}
	if tcp.CWR {
		parts = append(parts, "CWR")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "|")
}
