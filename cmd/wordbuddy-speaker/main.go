// ABOUTME: Entry point for the WordBuddy speaker daemon
// ABOUTME: Parses CLI flags and plays speech sent by WordBuddy apps on this machine
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/wordbuddy/internal/config"
	"github.com/harperreed/wordbuddy/internal/speaker"
	"github.com/harperreed/wordbuddy/pkg/audio/output"
)

var (
	port    = flag.Int("port", speaker.DefaultPort, "WebSocket server port")
	name    = flag.String("name", "", "Speaker friendly name (default: hostname-wordbuddy-speaker)")
	backend = flag.String("output", "", "Local audio backend: malgo, oto or portaudio")
	logFile = flag.String("log-file", "wordbuddy-speaker.log", "Log file path")
	noMDNS  = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
)

func main() {
	flag.Parse()

	// Log to both file and stdout
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()

	log.SetOutput(io.MultiWriter(os.Stdout, f))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	outputName := cfg.Output
	if *backend != "" {
		outputName = *backend
	}
	if outputName == "remote" {
		log.Fatalf("A speaker cannot use the remote backend")
	}

	device, err := output.New(outputName, output.Config{})
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}

	speakerName := *name
	if speakerName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		speakerName = fmt.Sprintf("%s-wordbuddy-speaker", hostname)
	}

	log.Printf("Starting WordBuddy speaker: %s on port %d (output: %s)", speakerName, *port, outputName)
	log.Printf("Press Ctrl-C to stop")

	srv, err := speaker.NewServer(speaker.Config{
		Port:       *port,
		Name:       speakerName,
		Device:     device,
		EnableMDNS: !*noMDNS,
	})
	if err != nil {
		log.Fatalf("Failed to create speaker: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received %v signal, shutting down gracefully...", sig)
		srv.Stop()
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Speaker error: %v", err)
	}
}
