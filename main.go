package main

import (
	"os"
	"os/signal"
	"syscall"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	log := newDiagLogger(cfg.verbose)
	logHostEndianness(log)

	dev, err := openTUN(cfg.device)
	if err != nil {
		log.WithError(err).Fatal("failed to open tun device")
	}
	defer dev.Close()
	log.WithField("device", dev.Name()).Info("tun device ready")

	tbl := newConnTable()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(dev, tbl, log)
	}()

	select {
	case err := <-errCh:
		log.WithError(err).Fatal("ingress loop terminated")
	case sig := <-sigCh:
		log.WithField("signal", sig).Info("shutting down")
	}
}
