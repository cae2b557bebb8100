// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests speaker records and manager lifecycle
package discovery

import (
	"strings"
	"testing"
	"time"
)

func TestNewManager(t *testing.T) {
	config := Config{
		ServiceName: "Kitchen Speaker",
		Port:        8930,
	}

	mgr := NewManager(config)
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}
	if mgr.Speakers() == nil {
		t.Fatal("expected speakers channel")
	}
}

func TestSpeakerInfoAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"192.168.1.20", 8930, "192.168.1.20:8930"},
		{"fe80::1", 8930, "[fe80::1]:8930"},
	}

	for _, tt := range tests {
		info := &SpeakerInfo{Host: tt.host, Port: tt.port}
		if got := info.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

func TestTxtRecords(t *testing.T) {
	records := txtRecords()

	var hasPath, hasVersion bool
	for _, r := range records {
		if r == "path=/speak" {
			hasPath = true
		}
		if strings.HasPrefix(r, "version=") {
			hasVersion = true
		}
	}
	if !hasPath || !hasVersion {
		t.Errorf("expected path and version records, got %v", records)
	}
}

func TestFindSpeakerAfterStop(t *testing.T) {
	mgr := NewManager(Config{})
	mgr.Stop()

	if _, err := mgr.FindSpeaker(time.Second); err == nil {
		t.Fatal("expected error from stopped manager")
	}
}
