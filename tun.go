package main

import (
	"fmt"

	"github.com/songgao/water"
)

// tunDevice is the narrow interface the ingress loop and connection code
// depend on. Wrapping *water.Interface behind an interface, rather than
// depending on the concrete type directly, lets tests drive the state
// machine without a real TUN device.
type tunDevice interface {
	ReadFrame(buf []byte) (int, error)
	WriteFrame(b []byte) error
	Name() string
	Close() error
}

// waterTUN adapts *water.Interface to tunDevice.
type waterTUN struct {
	ifce *water.Interface
}

// openTUN creates an IFF_TUN device without the 4-byte packet-info prefix:
// every frame read from or written to the device is a bare IPv4 packet,
// with no leading address-family or flags word to strip.
func openTUN(name string) (tunDevice, error) {
	cfg := water.Config{DeviceType: water.TUN}
	if name != "" {
		cfg.Name = name
	}
	ifce, err := water.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("open tun device %q: %w", name, err)
	}
	return &waterTUN{ifce: ifce}, nil
}

func (w *waterTUN) ReadFrame(buf []byte) (int, error) {
	n, err := w.ifce.Read(buf)
	if err != nil {
		return n, fmt.Errorf("read tun frame: %w", err)
	}
	return n, nil
}

func (w *waterTUN) WriteFrame(b []byte) error {
	n, err := w.ifce.Write(b)
	if err != nil {
		return fmt.Errorf("write tun frame: %w", err)
	}
	if n != len(b) {
		return fmt.Errorf("short write: wrote %d of %d bytes", n, len(b))
	}
	return nil
}

func (w *waterTUN) Name() string {
	return w.ifce.Name()
}

func (w *waterTUN) Close() error {
	return w.ifce.Close()
}
