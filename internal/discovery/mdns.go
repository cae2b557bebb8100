// ABOUTME: mDNS service discovery for WordBuddy speakers
// ABOUTME: Speakers advertise themselves; the app browses to find one
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/harperreed/wordbuddy/internal/version"
	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service type for speakers
const ServiceType = "_wordbuddy-speaker._tcp"

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
}

// Manager handles mDNS operations
type Manager struct {
	config   Config
	ctx      context.Context
	cancel   context.CancelFunc
	speakers chan *SpeakerInfo
}

// SpeakerInfo describes a discovered speaker
type SpeakerInfo struct {
	Name string
	Host string
	Port int
}

// Addr returns host:port for dialing
func (s *SpeakerInfo) Addr() string {
	return net.JoinHostPort(s.Host, fmt.Sprintf("%d", s.Port))
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config:   config,
		ctx:      ctx,
		cancel:   cancel,
		speakers: make(chan *SpeakerInfo, 10),
	}
}

// Advertise advertises this speaker via mDNS until Stop
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		txtRecords(),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)", m.config.ServiceName, m.config.Port, ServiceType)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse searches for speakers until Stop
func (m *Manager) Browse() {
	go m.browseLoop()
}

// browseLoop continuously browses for speakers
func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)

		go func() {
			for entry := range entries {
				if entry.AddrV4 == nil {
					continue
				}
				speaker := &SpeakerInfo{
					Name: entry.Name,
					Host: entry.AddrV4.String(),
					Port: entry.Port,
				}

				log.Printf("Discovered speaker: %s at %s", speaker.Name, speaker.Addr())

				select {
				case m.speakers <- speaker:
				case <-m.ctx.Done():
					return
				}
			}
		}()

		params := mdns.DefaultParams(ServiceType)
		params.Entries = entries
		params.Timeout = 3 * time.Second
		params.DisableIPv6 = true

		if err := mdns.Query(params); err != nil {
			log.Printf("mDNS query failed: %v", err)
		}
		close(entries)
	}
}

// Speakers returns the channel of discovered speakers
func (m *Manager) Speakers() <-chan *SpeakerInfo {
	return m.speakers
}

// FindSpeaker browses until a speaker appears or the timeout elapses
func (m *Manager) FindSpeaker(timeout time.Duration) (*SpeakerInfo, error) {
	m.Browse()

	select {
	case speaker := <-m.speakers:
		return speaker, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("no speaker found after %v", timeout)
	case <-m.ctx.Done():
		return nil, m.ctx.Err()
	}
}

// Stop stops the discovery manager
func (m *Manager) Stop() {
	m.cancel()
}

// txtRecords describes the speaker in its mDNS TXT record
func txtRecords() []string {
	return []string{
		"path=/speak",
		"product=" + version.Product,
		"version=" + version.Version,
	}
}

// getLocalIPs returns local IP addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
