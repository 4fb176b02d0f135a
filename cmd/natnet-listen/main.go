// Package main provides the NatNet listener daemon: it joins the data
// multicast group, decodes frames, optionally records them to SQLite and
// serves the HTTP status API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mocaptools/natnet-go/pkg/api"
	"github.com/mocaptools/natnet-go/pkg/client"
	"github.com/mocaptools/natnet-go/pkg/protocol"
	"github.com/mocaptools/natnet-go/pkg/storage"
	"github.com/mocaptools/natnet-go/pkg/version"
)

// Versions tried when probing a server whose version is unknown.
var probeCandidates = []version.Version{
	version.New(2, 10, 0),
	version.New(2, 9, 0),
	version.New(2, 7, 0),
	version.New(2, 6, 0),
	version.New(2, 5, 0),
}

func main() {
	dataAddr := flag.String("data", "239.255.42.99:1511", "NatNet data address (multicast group)")
	iface := flag.String("iface", "", "Network interface for the multicast join")
	cmdAddr := flag.String("command", "", "NatNet command address, enables version probing (e.g. 192.168.0.10:1510)")
	verFlag := flag.String("natnet-version", "2.9.0", "NatNet protocol version to decode with")
	dbPath := flag.String("db", "", "SQLite capture database (empty disables recording)")
	apiPort := flag.Int("api-port", 8080, "HTTP API port (0 disables the API)")

	flag.Parse()

	ver, err := version.Parse(*verFlag)
	if err != nil {
		log.Fatalf("Invalid -natnet-version: %v", err)
	}

	var sender *protocol.Sender
	if *cmdAddr != "" {
		sender, ver = probeServer(*cmdAddr, ver)
	}

	c, err := client.New(&client.Config{
		Addr:      *dataAddr,
		Interface: *iface,
		Version:   ver,
	})
	if err != nil {
		log.Fatalf("Failed to open data socket: %v", err)
	}
	defer c.Close()

	fmt.Println("NatNet Listener")
	fmt.Printf("  Data address:   %s\n", *dataAddr)
	fmt.Printf("  NatNet version: %s\n", ver)
	if sender != nil {
		fmt.Printf("  Server:         %s %s\n", sender.Name, sender.Version)
	}

	if *dbPath != "" {
		db, err := storage.Open(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open capture database: %v", err)
		}
		defer db.Close()

		sessionID, err := db.BeginSession(ver, sender)
		if err != nil {
			log.Fatalf("Failed to create capture session: %v", err)
		}
		fmt.Printf("  Recording:      %s (session %d)\n", *dbPath, sessionID)

		c.OnFrame = func(f *protocol.FrameOfData) {
			if err := db.RecordFrame(sessionID, f); err != nil {
				log.Printf("Failed to record frame %d: %v", f.FrameNumber, err)
			}
		}
	}

	c.OnMessage = func(msg string) {
		log.Printf("Server message: %s", msg)
	}
	c.OnError = func(err error) {
		log.Printf("Decode error: %v", err)
	}

	c.Start()

	var apiServer *api.Server
	if *apiPort > 0 {
		apiServer = api.NewServer(c, &api.Config{
			Port:         *apiPort,
			EnableCORS:   true,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		})
		go func() {
			if err := apiServer.Start(); err != nil {
				log.Fatalf("API server failed: %v", err)
			}
		}()
		fmt.Printf("  Status API:     http://localhost:%d/api/v1/status\n", *apiPort)
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")
	if apiServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(ctx); err != nil {
			log.Printf("API shutdown: %v", err)
		}
	}
	fmt.Printf("Decoded %d frames\n", c.FrameCount())
}

// probeServer pings the command port and adopts the version the server
// advertises. Falls back to the configured version when probing fails.
func probeServer(addr string, fallback version.Version) (*protocol.Sender, version.Version) {
	conn, err := net.DialTimeout("udp", addr, 5*time.Second)
	if err != nil {
		log.Printf("Probe: dial %s failed (%v), using version %s", addr, err, fallback)
		return nil, fallback
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	sender, ver, err := client.Probe(conn, "natnet-listen", probeCandidates)
	if err != nil {
		log.Printf("Probe: %v, using version %s", err, fallback)
		return nil, fallback
	}

	log.Printf("Probe: server %q speaks NatNet %s", sender.Name, ver)
	return &sender, ver
}
