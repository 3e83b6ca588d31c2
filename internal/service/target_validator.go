package service

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Resolver looks up the IP addresses behind a host name. *net.Resolver
// satisfies it; tests substitute a fixed table.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// SSRFTargetValidator implements ports.TargetValidator. It rejects URLs whose
// host resolves to loopback, private, link-local, unspecified, or multicast
// addresses, and enforces HTTPS-only targets when requireHTTPS is set.
type SSRFTargetValidator struct {
	resolver     Resolver
	requireHTTPS bool
}

// NewSSRFTargetValidator creates a target validator. Pass requireHTTPS=false
// only in development.
func NewSSRFTargetValidator(resolver Resolver, requireHTTPS bool) *SSRFTargetValidator {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &SSRFTargetValidator{resolver: resolver, requireHTTPS: requireHTTPS}
}

// Validate checks rawURL against the SSRF policy. Every resolved address must
// pass; a DNS failure rejects the target.
func (v *SSRFTargetValidator) Validate(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "https":
	case "http":
		if v.requireHTTPS {
			return fmt.Errorf("webhook url must use https")
		}
	default:
		return fmt.Errorf("unsupported webhook url scheme %q", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("webhook url has no host")
	}

	// Literal IPs skip DNS.
	if ip := net.ParseIP(host); ip != nil {
		return checkAddress(ip)
	}

	addrs, err := v.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("resolving webhook host %q: %w", host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("webhook host %q resolves to no addresses", host)
	}
	for _, addr := range addrs {
		if err := checkAddress(addr.IP); err != nil {
			return err
		}
	}
	return nil
}

func checkAddress(ip net.IP) error {
	switch {
	case ip.IsLoopback():
		return fmt.Errorf("webhook target %s is a loopback address", ip)
	case ip.IsPrivate():
		return fmt.Errorf("webhook target %s is a private address", ip)
	case ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast():
		return fmt.Errorf("webhook target %s is a link-local address", ip)
	case ip.IsUnspecified():
		return fmt.Errorf("webhook target %s is unspecified", ip)
	case ip.IsMulticast():
		return fmt.Errorf("webhook target %s is a multicast address", ip)
	}
	return nil
}
