package validator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"urlshortener/internal/domain"
)

// DefaultResolveTimeout bounds a single host lookup when none is configured.
const DefaultResolveTimeout = 3 * time.Second

// Resolver translates a host name into network addresses.
// *net.Resolver satisfies it; tests plug in a fake.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// URLValidator checks that a submitted string is an absolute URL whose host
// resolves, and returns its normalized form.
type URLValidator struct {
	resolver Resolver
	timeout  time.Duration
	schemes  map[string]struct{}
}

// NewURLValidator creates a validator. Empty schemes default to http and https.
func NewURLValidator(resolver Resolver, timeout time.Duration, schemes ...string) *URLValidator {
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	if len(schemes) == 0 {
		schemes = []string{"http", "https"}
	}

	allowed := make(map[string]struct{}, len(schemes))
	for _, s := range schemes {
		allowed[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	return &URLValidator{
		resolver: resolver,
		timeout:  timeout,
		schemes:  allowed,
	}
}

// Validate runs the syntactic check and then the resolvability check.
// Errors wrap domain.ErrMalformedURL or domain.ErrUnresolvableHost.
func (v *URLValidator) Validate(ctx context.Context, candidate string) (string, error) {
	parsed, err := v.Parse(candidate)
	if err != nil {
		return "", err
	}

	if err := v.resolve(ctx, parsed.Hostname()); err != nil {
		return "", err
	}

	return parsed.String(), nil
}

// Parse performs only the syntactic step and returns the normalized URL.
func (v *URLValidator) Parse(candidate string) (*url.URL, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedURL, ErrEmptyURL)
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedURL, err)
	}

	if !parsed.IsAbs() || parsed.Opaque != "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedURL, ErrNotAbsolute)
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	if _, ok := v.schemes[parsed.Scheme]; !ok {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedURL, ErrInvalidScheme)
	}

	if parsed.Hostname() == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedURL, ErrInvalidHost)
	}
	parsed.Host = strings.ToLower(parsed.Host)

	return parsed, nil
}

// resolve performs one lookup under the configured timeout. There is no retry.
func (v *URLValidator) resolve(ctx context.Context, host string) error {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	addrs, err := v.resolver.LookupHost(ctx, host)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: lookup %s: %w", domain.ErrUnresolvableHost, host, ErrResolveTimeout)
		}
		return fmt.Errorf("%w: lookup %s: %v", domain.ErrUnresolvableHost, host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("%w: lookup %s: %w", domain.ErrUnresolvableHost, host, ErrNoAddresses)
	}

	return nil
}
