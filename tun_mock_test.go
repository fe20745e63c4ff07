package main

import (
	"errors"
	"io"
)

// mockTUN is a tunDevice backed by in-memory queues, grounded in the
// mockable-TUNDevice pattern from
// trash/day44_go_virtual_router/go_router/router/router_test.go. It lets
// tests drive the ingress loop and connection state machine without a real
// TUN interface.
type mockTUN struct {
	inbound  [][]byte
	outbound [][]byte
	closed   bool
}

func newMockTUN(frames ...[]byte) *mockTUN {
	return &mockTUN{inbound: frames}
}

func (m *mockTUN) ReadFrame(buf []byte) (int, error) {
	if m.closed {
		return 0, errors.New("mock tun: closed")
	}
	if len(m.inbound) == 0 {
		return 0, io.EOF
	}
	frame := m.inbound[0]
	m.inbound = m.inbound[1:]
	n := copy(buf, frame)
	return n, nil
}

func (m *mockTUN) WriteFrame(b []byte) error {
	if m.closed {
		return errors.New("mock tun: closed")
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	m.outbound = append(m.outbound, cp)
	return nil
}

func (m *mockTUN) Name() string { return "mock0" }

func (m *mockTUN) Close() error {
	m.closed = true
	return nil
}
