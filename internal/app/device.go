// ABOUTME: Output device selection for the app
// ABOUTME: Resolves -output and -speaker, browsing mDNS when asked to
package app

import (
	"fmt"
	"log"
	"time"

	"github.com/harperreed/wordbuddy/internal/discovery"
	"github.com/harperreed/wordbuddy/internal/version"
	"github.com/harperreed/wordbuddy/pkg/audio/output"
)

// SpeakerAuto asks for a speaker to be found via mDNS
const SpeakerAuto = "auto"

// DiscoveryTimeout bounds the wait for a speaker
var DiscoveryTimeout = 10 * time.Second

// NewDevice builds the output device named by backend. A speaker address
// implies the remote backend, which sends PCM at speakerBits.
func NewDevice(backend, speaker string, speakerBits int) (output.Device, error) {
	if speaker != "" {
		backend = "remote"
	}

	if backend == "remote" && speaker == SpeakerAuto {
		addr, err := findSpeaker()
		if err != nil {
			return nil, err
		}
		speaker = addr
	}

	return output.New(backend, output.Config{
		SpeakerAddr:     speaker,
		SpeakerBitDepth: speakerBits,
	})
}

// findSpeaker browses for the first advertised speaker
func findSpeaker() (string, error) {
	log.Printf("Starting speaker discovery...")

	disc := discovery.NewManager(discovery.Config{ServiceName: version.Product})
	defer disc.Stop()

	speaker, err := disc.FindSpeaker(DiscoveryTimeout)
	if err != nil {
		return "", fmt.Errorf("speaker discovery failed: %w", err)
	}

	log.Printf("Discovered speaker %s at %s", speaker.Name, speaker.Addr())
	return speaker.Addr(), nil
}
