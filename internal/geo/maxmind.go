package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// MaxMindLocator looks countries up in a GeoLite2/GeoIP2 Country or City
// database.
type MaxMindLocator struct {
	reader *geoip2.Reader
}

// OpenMaxMind opens the .mmdb file at path
func OpenMaxMind(path string) (*MaxMindLocator, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	return &MaxMindLocator{reader: reader}, nil
}

// Country implements Locator
func (m *MaxMindLocator) Country(ip net.IP) (string, error) {
	record, err := m.reader.Country(ip)
	if err != nil {
		return "", err
	}
	return record.Country.IsoCode, nil
}

// Close releases the database
func (m *MaxMindLocator) Close() error {
	if m == nil || m.reader == nil {
		return nil
	}
	return m.reader.Close()
}
