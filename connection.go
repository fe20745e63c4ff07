package main

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/sirupsen/logrus"
)

// connState is the tagged-enum state of a connection. Only a partial RFC
// 793 state set is represented; CloseWait/LastAck/Closing are absent —
// this endpoint only ever initiates an active close, and a peer FIN that
// arrives in any state other than FIN-WAIT-2 makes onPacket return an error.
type connState int

const (
	stateSynRcvd connState = iota
	stateEstab
	stateFinWait1
	stateFinWait2
	stateTimeWait
)

func (s connState) String() string {
	switch s {
	case stateSynRcvd:
		return "SYN-RCVD"
	case stateEstab:
		return "ESTABLISHED"
	case stateFinWait1:
		return "FIN-WAIT-1"
	case stateFinWait2:
		return "FIN-WAIT-2"
	case stateTimeWait:
		return "TIME-WAIT"
	default:
		return "UNKNOWN"
	}
}

const (
	ipv4HeaderLen = 20
	tcpHeaderLen  = 20
)

// connection is the per-flow state machine owned by the connection table.
// It owns the send/receive sequence spaces, the current state, and the
// template headers used to frame every outbound segment.
type connection struct {
	quad  quad
	state connState

	send sendSequenceSpace
	rcv  recvSequenceSpace

	ipTemplate  *layers.IPv4
	tcpTemplate *layers.TCP

	// serializeBuf is reused across every emission on this connection,
	// avoiding a fresh allocation per write.
	serializeBuf gopacket.SerializeBuffer

	log *logrus.Entry
}

// acceptConnection implements the demultiplexer's passive-open half. It
// returns (nil, nil) — no connection, no reply — when the inbound segment
// does not carry SYN, silently dropping stray segments to unknown flows.
func acceptConnection(dev tunDevice, q quad, ip *layers.IPv4, tcp *layers.TCP, log *logrus.Entry) (*connection, error) {
	if !tcp.SYN {
		return nil, nil
	}

	serverAddr, err := netIPToAddr(ip.DstIP)
	if err != nil {
		return nil, fmt.Errorf("accept %s: %w", q, err)
	}
	clientAddr, err := netIPToAddr(ip.SrcIP)
	if err != nil {
		return nil, fmt.Errorf("accept %s: %w", q, err)
	}

	c := &connection{
		quad:         q,
		state:        stateSynRcvd,
		ipTemplate:   newIPv4Template(serverAddr, clientAddr),
		tcpTemplate:  newTCPTemplate(uint16(tcp.DstPort), uint16(tcp.SrcPort)),
		serializeBuf: gopacket.NewSerializeBuffer(),
		send: sendSequenceSpace{
			iss: initialSendSequenceNumber,
			una: initialSendSequenceNumber,
			nxt: initialSendSequenceNumber + 1,
			wnd: advertisedWindow,
		},
		rcv: recvSequenceSpace{
			irs: tcp.Seq,
			nxt: tcp.Seq + 1,
			wnd: tcp.Window,
		},
		log: log,
	}

	// The SYN|ACK is built by hand rather than via write(): its sequence
	// number is iss itself, but write() always stamps send.nxt, which by
	// this point already reflects the post-SYN value (iss+1). Mirrors the
	// reference implementation's accept().
	synAck := *c.tcpTemplate
	synAck.Seq = c.send.iss
	synAck.Ack = c.rcv.nxt
	synAck.SYN = true
	synAck.ACK = true
	synAck.Window = c.send.wnd

	frame, err := serializeSegment(c.serializeBuf, c.ipTemplate, &synAck, nil)
	if err != nil {
		return nil, fmt.Errorf("build syn-ack for %s: %w", q, err)
	}
	if err := dev.WriteFrame(frame); err != nil {
		return nil, fmt.Errorf("send syn-ack for %s: %w", q, err)
	}
	if c.log != nil {
		c.log.WithFields(logrus.Fields{"state": c.state, "seq": synAck.Seq, "ack": synAck.Ack}).Debug("sent SYN|ACK")
	}

	return c, nil
}

// write patches the template headers with the current send/receive cursors,
// serializes and emits one segment, then advances send.nxt by the number of
// payload bytes actually written plus one for a consumed SYN and/or FIN
// flag, each of which occupies one sequence number (RFC 793 §3.3).
func (c *connection) write(dev tunDevice, payload []byte) (int, error) {
	maxPayload := outboundBufferSize - ipv4HeaderLen - tcpHeaderLen
	if maxPayload < 0 {
		maxPayload = 0
	}
	if len(payload) > maxPayload {
		payload = payload[:maxPayload]
	}

	c.tcpTemplate.Seq = c.send.nxt
	c.tcpTemplate.Ack = c.rcv.nxt

	frame, err := serializeSegment(c.serializeBuf, c.ipTemplate, c.tcpTemplate, payload)
	if err != nil {
		return 0, fmt.Errorf("serialize segment for %s: %w", c.quad, err)
	}
	if err := dev.WriteFrame(frame); err != nil {
		return 0, fmt.Errorf("emit segment for %s: %w", c.quad, err)
	}
	if c.log != nil {
		c.log.WithFields(logrus.Fields{
			"state": c.state, "flags": tcpFlagsString(c.tcpTemplate),
			"seq": c.tcpTemplate.Seq, "ack": c.tcpTemplate.Ack, "len": len(payload),
		}).Debug("sent segment")
	}

	written := len(payload)
	c.send.nxt += uint32(written)
	if c.tcpTemplate.SYN {
		c.send.nxt++
		c.tcpTemplate.SYN = false
	}
	if c.tcpTemplate.FIN {
		c.send.nxt++
		c.tcpTemplate.FIN = false
	}
	return written, nil
}

// acceptable implements the segment-acceptability test of RFC 793 §3.3.
func (c *connection) acceptable(seq, segLen uint32) bool {
	wend := c.rcv.nxt + uint32(c.rcv.wnd)
	if segLen == 0 {
		if c.rcv.wnd == 0 {
			return seq == c.rcv.nxt
		}
		return isBetweenWrapped(c.rcv.nxt-1, seq, wend)
	}
	if c.rcv.wnd == 0 {
		return false
	}
	return isBetweenWrapped(c.rcv.nxt-1, seq, wend) ||
		isBetweenWrapped(c.rcv.nxt-1, seq+segLen-1, wend)
}

// sendRst sets the RST flag and emits one empty segment. A complete
// implementation would derive Seq/Ack from the triggering segment (RFC 793
// §3.4); here they are zeroed before calling write(), which then
// immediately overwrites them with send.nxt/rcv.nxt, so the zeroing is a
// no-op. No caller on the paths that RFC 793 requires a RST (unacceptable
// ACK in SYN-RCVD; non-SYN segment to an unknown flow) currently invokes
// this.
func (c *connection) sendRst(dev tunDevice) error {
	c.tcpTemplate.RST = true
	c.tcpTemplate.Seq = 0
	c.tcpTemplate.Ack = 0
	_, err := c.write(dev, nil)
	c.tcpTemplate.RST = false
	return err
}

// onPacket advances the state machine by one inbound segment, per the
// segment-arrival processing of RFC 793 §3.9.
func (c *connection) onPacket(dev tunDevice, tcp *layers.TCP, payload []byte) error {
	seq := tcp.Seq
	segLen := segmentLength(tcp, payload)

	if !c.acceptable(seq, segLen) {
		if c.log != nil {
			c.log.WithFields(logrus.Fields{"seq": seq, "seg_len": segLen}).Debug("unacceptable segment, sending bare ack")
		}
		_, err := c.write(dev, nil)
		return err
	}
	c.rcv.nxt = seq + segLen

	if !tcp.ACK {
		return nil
	}
	ackn := tcp.Ack

	if c.state == stateSynRcvd {
		if isBetweenWrapped(c.send.una-1, ackn, c.send.nxt+1) {
			// Our SYN has been acknowledged.
			c.state = stateEstab
			if c.log != nil {
				c.log.WithField("state", c.state).Info("connection established")
			}
		}
		// else: the peer should be reset with <SEQ=SEG.ACK><CTL=RST>; not
		// implemented.
	}

	if c.state == stateEstab || c.state == stateFinWait1 || c.state == stateFinWait2 {
		if isBetweenWrapped(c.send.una, ackn, c.send.nxt+1) {
			c.send.una = ackn

			// This endpoint carries no data stream: data acceptance in
			// these states asserts an empty payload. Delivering payload
			// into a receive buffer for an application to read is out of
			// scope.
			if len(payload) != 0 {
				return fmt.Errorf("unexpected %d-byte payload while acking in state %v for %s (unimplemented data path)", len(payload), c.state, c.quad)
			}

			if c.state == stateEstab {
				// Initiate active close immediately upon reaching
				// ESTABLISHED, since no application sits behind the
				// endpoint.
				c.tcpTemplate.FIN = true
				if _, err := c.write(dev, nil); err != nil {
					return err
				}
				c.state = stateFinWait1
				if c.log != nil {
					c.log.WithField("state", c.state).Info("initiated active close")
				}
			}
		}
		// else: ackn does not advance send.una — silently ignore the
		// advancement without aborting the rest of this segment's
		// processing, so a peer FIN whose ACK merely repeats the
		// already-current send.una still reaches the FIN handling below.
	}

	if c.state == stateFinWait1 {
		if c.send.una == c.send.iss+2 {
			// Our SYN and our FIN have both been acknowledged.
			c.state = stateFinWait2
			if c.log != nil {
				c.log.WithField("state", c.state).Info("our FIN acknowledged")
			}
		}
	}

	if tcp.FIN {
		switch c.state {
		case stateFinWait2:
			if _, err := c.write(dev, nil); err != nil {
				return err
			}
			c.state = stateTimeWait
			if c.log != nil {
				c.log.WithField("state", c.state).Info("peer FIN acknowledged")
			}
		default:
			// A complete implementation would handle Estab->CloseWait,
			// FinWait1->Closing, etc. Treated as fatal here.
			return fmt.Errorf("fin received in unhandled state %v for %s", c.state, c.quad)
		}
	}

	return nil
}
