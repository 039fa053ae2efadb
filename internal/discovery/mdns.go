package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type bleradar instances advertise
	ServiceType = "_bleradar._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultPeerTimeout is the default browse duration for peer discovery
	DefaultPeerTimeout = 5 * time.Second

	// DefaultPeerPort is assumed when an advertisement omits its port
	DefaultPeerPort = 8765
)

// Peer is another bleradar instance publishing snapshots on the network.
type Peer struct {
	// Instance is the mDNS instance name (e.g., "bleradar on kitchen-pi")
	Instance string

	// Hostname is the mDNS hostname (e.g., "kitchen-pi.local.")
	Hostname string

	// IP is the preferred address (IPv4 when available)
	IP string

	// Port is the HTTP port of the snapshot server
	Port int

	// Metadata holds the TXT records ("version", "adapters", "path")
	Metadata map[string]string

	// DiscoveredAt is when the peer was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the peer
func (p *Peer) String() string {
	return fmt.Sprintf("%s (%s) at %s:%d", p.Instance, p.Hostname, p.IP, p.Port)
}

// BaseURL returns the HTTP base URL for the peer
func (p *Peer) BaseURL() string {
	if strings.Contains(p.IP, ":") {
		return fmt.Sprintf("http://[%s]:%d", p.IP, p.Port)
	}
	return fmt.Sprintf("http://%s:%d", p.IP, p.Port)
}

// Adapters returns the adapter IDs the peer advertises
func (p *Peer) Adapters() []string {
	raw := p.GetMetadata("adapters")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (p *Peer) GetMetadata(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}

// PeerScanner browses the local network for bleradar instances
type PeerScanner struct {
	// Timeout is how long to browse before returning
	Timeout time.Duration
}

// NewPeerScanner creates a new mDNS peer scanner with default settings
func NewPeerScanner() *PeerScanner {
	return &PeerScanner{
		Timeout: DefaultPeerTimeout,
	}
}

// Scan browses for peers until the timeout expires or ctx is cancelled.
// Peers are returned sorted by instance name; repeated answers for the same
// instance collapse to the latest one.
func (s *PeerScanner) Scan(ctx context.Context) ([]*Peer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var mu sync.Mutex
	peers := make(map[string]*Peer)

	go func() {
		for entry := range entries {
			peer := parseServiceEntry(entry)
			if peer == nil {
				continue
			}
			mu.Lock()
			peers[peer.Instance] = peer
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	out := make([]*Peer, 0, len(peers))
	for _, p := range peers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Instance < out[j].Instance })
	return out, nil
}

// parseServiceEntry converts a zeroconf service entry to a Peer.
// Returns nil if the entry has no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Peer {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPeerPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Peer{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
