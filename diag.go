package main

import (
	"encoding/binary"
	"os"

	"github.com/sirupsen/logrus"
)

// newDiagLogger builds the stderr diagnostic logger used throughout the
// endpoint. Output stays human-readable lines; logrus is used for
// level-based coloring and structured fields rather than for a
// machine-readable sink.
func newDiagLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		ForceColors:     true,
		DisableQuote:    true,
		TimestampFormat: "15:04:05.000",
	})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

// logHostEndianness reports the host's native byte order once at startup.
func logHostEndianness(log *logrus.Logger) {
	var probe uint32 = 0x01020304
	buf := make([]byte, 4)
	binary.NativeEndian.PutUint32(buf, probe)
	if buf[0] == 0x04 {
		log.Info("host is little-endian")
	} else {
		log.Info("host is big-endian")
	}
}
