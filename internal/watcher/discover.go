package watcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"

	"github.com/izzyreal/washboard/internal/config"
)

var errNoServer = errors.New("no washboard server found on the local network")

// Discover looks for a server advertising itself over mDNS and returns its
// base URL.
func Discover(ctx context.Context, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *mdns.ServiceEntry, 8)
	params := mdns.DefaultParams(config.MDNSService)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	queryErr := make(chan error, 1)
	go func() { queryErr <- mdns.Query(params) }()

	for {
		select {
		case e := <-entries:
			if u := entryURL(e); u != "" {
				return u, nil
			}
		case err := <-queryErr:
			if err != nil {
				return "", fmt.Errorf("mdns query: %w", err)
			}
			return "", errNoServer
		case <-ctx.Done():
			return "", errNoServer
		}
	}
}

func entryURL(e *mdns.ServiceEntry) string {
	if e == nil || e.Port <= 0 || !strings.Contains(e.Name, config.MDNSService) {
		return ""
	}
	var ip net.IP
	switch {
	case e.AddrV4 != nil:
		ip = e.AddrV4
	case e.AddrV6 != nil:
		ip = e.AddrV6
	default:
		return ""
	}
	return "http://" + net.JoinHostPort(ip.String(), strconv.Itoa(e.Port))
}
