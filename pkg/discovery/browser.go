package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// BrowseFunc runs one DNS-SD browse. It matches zeroconf.Browse and exists
// so tests can feed entries without touching the network.
type BrowseFunc func(ctx context.Context, service, domain string, entries, removed chan *zeroconf.ServiceEntry, opts ...zeroconf.ClientOption) error

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout bounds FindBroker.
	// Default: 5 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// Browse replaces zeroconf.Browse. Nil means zeroconf.Browse.
	Browse BrowseFunc
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
	}
}

// Browser looks up brokers with mDNS.
type Browser struct {
	config BrowserConfig
}

// NewBrowser creates a browser.
func NewBrowser(config BrowserConfig) *Browser {
	if config.BrowseTimeout <= 0 {
		config.BrowseTimeout = BrowseTimeout
	}
	if config.Browse == nil {
		config.Browse = func(ctx context.Context, service, domain string, entries, removed chan *zeroconf.ServiceEntry, opts ...zeroconf.ClientOption) error {
			return zeroconf.Browse(ctx, service, domain, entries, removed, opts...)
		}
	}
	return &Browser{config: config}
}

// Browse streams brokers of the given service type until ctx is done.
// Entries for the same instance seen on several interfaces are merged and
// reported once. A browse that fails after starting just ends the stream;
// use FindBroker to see that error.
func (b *Browser) Browse(ctx context.Context, serviceType string) (<-chan *Broker, error) {
	out, _, err := b.browse(ctx, serviceType)
	return out, err
}

// browse starts the lookup. The error channel carries at most one error
// from the underlying browse and is closed when it returns.
func (b *Browser) browse(ctx context.Context, serviceType string) (<-chan *Broker, <-chan error, error) {
	opts, err := b.browserOptions()
	if err != nil {
		return nil, nil, err
	}

	out := make(chan *Broker)
	errs := make(chan error, 1)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)

		seen := make(map[string]bool)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				broker := entryToBroker(entry, serviceType)
				if broker == nil || seen[broker.Instance] {
					continue
				}
				seen[broker.Instance] = true
				select {
				case out <- broker:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					removed = nil
					continue
				}
				delete(seen, entry.Instance)

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		defer close(errs)
		if err := b.config.Browse(ctx, serviceType, Domain, entries, removed, opts...); err != nil && ctx.Err() == nil {
			errs <- err
		}
	}()

	return out, errs, nil
}

// FindBroker returns the first broker of serviceType that answers within
// the browse timeout.
func (b *Browser) FindBroker(ctx context.Context, serviceType string) (*Broker, error) {
	ctx, cancel := context.WithTimeout(ctx, b.config.BrowseTimeout)
	defer cancel()

	brokers, errs, err := b.browse(ctx, serviceType)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case broker, ok := <-brokers:
			if ok {
				return broker, nil
			}
			return nil, b.notFound(ctx, serviceType)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			return nil, fmt.Errorf("browse %s: %w", serviceType, err)
		case <-ctx.Done():
			return nil, b.notFound(ctx, serviceType)
		}
	}
}

func (b *Browser) notFound(ctx context.Context, serviceType string) error {
	if err := ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s within %s", ErrNotFound, serviceType, b.config.BrowseTimeout)
}

// browserOptions returns zeroconf client options based on config.
func (b *Browser) browserOptions() ([]zeroconf.ClientOption, error) {
	var opts []zeroconf.ClientOption

	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrUnknownInterface, b.config.Interface, err)
		}
		opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
	}

	return opts, nil
}

// entryToBroker converts a zeroconf entry. Entries without a port are
// incomplete answers and are dropped.
func entryToBroker(entry *zeroconf.ServiceEntry, serviceType string) *Broker {
	if entry == nil || entry.Port == 0 {
		return nil
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &Broker{
		Instance:    entry.Instance,
		Host:        strings.TrimSuffix(entry.HostName, "."),
		Port:        entry.Port,
		Addresses:   addrs,
		ServiceType: serviceType,
		TXT:         entry.Text,
	}
}
