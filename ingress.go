package main

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/sirupsen/logrus"
)

// containsLayerType reports whether a DecodingLayerParser's decoded list
// includes lt.
func containsLayerType(decoded []gopacket.LayerType, lt gopacket.LayerType) bool {
	for _, d := range decoded {
		if d == lt {
			return true
		}
	}
	return false
}

// run is the ingress loop: pull one frame at a time off the TUN, parse
// L3/L4, demultiplex into the connection table, dispatch. It reuses a
// single DecodingLayerParser and decode buffer across iterations to avoid
// per-frame allocation.
func run(dev tunDevice, tbl *connTable, log *logrus.Logger) error {
	var ip layers.IPv4
	var tcp layers.TCP
	parser := gopacket.NewDecodingLayerParser(layers.LayerTypeIPv4, &ip, &tcp)
	parser.IgnoreUnsupported = true

	decoded := make([]gopacket.LayerType, 0, 2)
	buf := make([]byte, inboundBufferSize)

	for {
		n, err := dev.ReadFrame(buf)
		if err != nil {
			return fmt.Errorf("ingress read: %w", err)
		}
		if n == 0 {
			continue
		}
		frame := buf[:n]

		if err := parser.DecodeLayers(frame, &decoded); err != nil {
			log.WithError(err).Debug("dropping frame: header parse failed")
			continue
		}
		if !containsLayerType(decoded, layers.LayerTypeIPv4) {
			log.Debug("dropping frame: not IPv4")
			continue
		}
		if !containsLayerType(decoded, layers.LayerTypeTCP) {
			log.WithField("protocol", ip.Protocol).Debug("dropping frame: non-TCP protocol")
			continue
		}

		srcAddr, err := netIPToAddr(ip.SrcIP)
		if err != nil {
			log.WithError(err).Debug("dropping frame: bad source address")
			continue
		}
		dstAddr, err := netIPToAddr(ip.DstIP)
		if err != nil {
			log.WithError(err).Debug("dropping frame: bad destination address")
			continue
		}
		q := newQuad(srcAddr, uint16(tcp.SrcPort), dstAddr, uint16(tcp.DstPort))
		payload := tcp.LayerPayload()

		log.WithFields(logrus.Fields{
			"quad": q.String(), "flags": tcpFlagsString(&tcp), "seq": tcp.Seq, "ack": tcp.Ack, "len": len(payload),
		}).Debug("received segment")

		if err := dispatch(dev, tbl, q, &ip, &tcp, payload, log); err != nil {
			return err
		}
	}
}

// dispatch routes the segment to an existing connection, or attempts to
// establish a new one via accept.
func dispatch(dev tunDevice, tbl *connTable, q quad, ip *layers.IPv4, tcp *layers.TCP, payload []byte, log *logrus.Logger) error {
	entry := log.WithField("quad", q.String())

	if c, ok := tbl.lookup(q); ok {
		c.log = entry
		if err := c.onPacket(dev, tcp, payload); err != nil {
			return fmt.Errorf("connection %s: %w", q, err)
		}
		return nil
	}

	c, err := acceptConnection(dev, q, ip, tcp, entry)
	if err != nil {
		return fmt.Errorf("accept %s: %w", q, err)
	}
	if c != nil {
		tbl.insert(q, c)
	}
	return nil
}
