package discovery

import (
	"errors"
	"time"
)

// Service types.
const (
	ServiceTypeMQTT       = "_mqtt._tcp"
	ServiceTypeSecureMQTT = "_secure-mqtt._tcp"
	ServiceTypeNATS       = "_nats._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// BrowseTimeout is the default time to wait for a broker.
	BrowseTimeout = 5 * time.Second
)

// Errors.
var (
	ErrNotFound      = errors.New("no broker found")
	ErrNoServiceType = errors.New("no service type for driver")

	ErrUnknownInterface = errors.New("unknown network interface")
)

// Broker is a discovered broker instance.
type Broker struct {
	// Instance is the DNS-SD instance name.
	Instance string

	// Host is the advertised host name.
	Host string

	// Port is the advertised port.
	Port int

	// Addresses holds IPv4 addresses first, then IPv6.
	Addresses []string

	// ServiceType the broker was found under.
	ServiceType string

	// TXT holds the raw TXT records.
	TXT []string
}

// Address returns the best address to dial: the first advertised IP, or the
// host name when no IP was advertised.
func (b *Broker) Address() string {
	if len(b.Addresses) > 0 {
		return b.Addresses[0]
	}
	return b.Host
}

// ServiceTypeFor returns the service type to browse for a bus driver.
func ServiceTypeFor(driver string, tls bool) (string, error) {
	switch driver {
	case "", "mqtt":
		if tls {
			return ServiceTypeSecureMQTT, nil
		}
		return ServiceTypeMQTT, nil
	case "nats":
		return ServiceTypeNATS, nil
	default:
		return "", ErrNoServiceType
	}
}
