package main

import "flag"

// Compile-time protocol constants: these are not meant to be tunable per
// RFC-interop behavior, only the process ergonomics around them (device
// name, verbosity) are exposed as flags below.
const (
	// initialSendSequenceNumber is the ISN this endpoint always chooses.
	// Fixed rather than randomized, as in the reference implementation.
	initialSendSequenceNumber uint32 = 0

	// advertisedWindow is the receive window advertised in every SYN-ACK.
	advertisedWindow uint16 = 1024

	// outboundTTL is the TTL stamped on every IPv4 packet we emit.
	outboundTTL uint8 = 64

	// defaultDeviceName is the TUN device name used when -dev is not given.
	defaultDeviceName = "tun0"

	// inboundBufferSize is the scratch buffer size for one read from the TUN.
	inboundBufferSize = 1504

	// outboundBufferSize bounds a single emitted frame.
	outboundBufferSize = 1500
)

// cliConfig holds the process-level (not protocol-level) knobs a user can
// override on the command line. Nothing here changes wire behavior.
type cliConfig struct {
	device  string
	verbose bool
}

func parseFlags(args []string) (cliConfig, error) {
	fs := flag.NewFlagSet("tuntcp", flag.ContinueOnError)
	dev := fs.String("dev", defaultDeviceName, "TUN device name")
	verbose := fs.Bool("debug", false, "enable verbose per-frame logging")
	if err := fs.Parse(args); err != nil {
		return cliConfig{}, err
	}
	return cliConfig{device: *dev, verbose: *verbose}, nil
}
