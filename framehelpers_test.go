package main

import (
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// segmentSpec describes one TCP segment to build for a test scenario.
type segmentSpec struct {
	srcIP, dstIP     string
	srcPort, dstPort uint16
	seq, ack         uint32
	synFlag          bool
	ackFlag          bool
	finFlag          bool
	rstFlag          bool
	window           uint16
	payload          []byte
}

func buildTestFrame(s segmentSpec) []byte {
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.ParseIP(s.srcIP).To4(),
		DstIP:    net.ParseIP(s.dstIP).To4(),
	}
	tcp := &layers.TCP{
		SrcPort: layers.TCPPort(s.srcPort),
		DstPort: layers.TCPPort(s.dstPort),
		Seq:     s.seq,
		Ack:     s.ack,
		SYN:     s.synFlag,
		ACK:     s.ackFlag,
		FIN:     s.finFlag,
		RST:     s.rstFlag,
		Window:  s.window,
	}
	sb := gopacket.NewSerializeBuffer()
	frame, err := serializeSegment(sb, ip, tcp, s.payload)
	if err != nil {
		panic(fmt.Sprintf("buildTestFrame: %v", err))
	}
	out := make([]byte, len(frame))
	copy(out, frame)
	return out
}

// decodeTestFrame parses a frame built the same way the endpoint emits it,
// for use in test assertions.
func decodeTestFrame(frame []byte) (*layers.IPv4, *layers.TCP, []byte, error) {
	var ip layers.IPv4
	var tcp layers.TCP
	parser := gopacket.NewDecodingLayerParser(layers.LayerTypeIPv4, &ip, &tcp)
	parser.IgnoreUnsupported = true
	decoded := make([]gopacket.LayerType, 0, 2)
	if err := parser.DecodeLayers(frame, &decoded); err != nil {
		return nil, nil, nil, err
	}
	return &ip, &tcp, tcp.LayerPayload(), nil
}
