package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Resolver extracts a tenant identifier from an HTTP request.
type Resolver interface {
	// Resolve returns the tenant identifier found in the request, or an
	// empty string when the request carries none.
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc adapts an ordinary function to the Resolver interface.
type ResolverFunc func(r *http.Request) (string, error)

func (f ResolverFunc) Resolve(r *http.Request) (string, error) {
	return f(r)
}

// HeaderResolver reads the tenant identifier from an HTTP header.
type HeaderResolver struct {
	HeaderName string
}

// NewHeaderResolver creates a header resolver; defaults to "X-Tenant-ID".
func NewHeaderResolver(headerName string) *HeaderResolver {
	if headerName == "" {
		headerName = "X-Tenant-ID"
	}
	return &HeaderResolver{HeaderName: headerName}
}

func (r *HeaderResolver) Resolve(req *http.Request) (string, error) {
	return req.Header.Get(r.HeaderName), nil
}

// PathResolver extracts the tenant identifier from a URL path segment,
// e.g. position 2 for "/tenants/{id}/events".
type PathResolver struct {
	Position int // 1-based
}

func NewPathResolver(position int) *PathResolver {
	return &PathResolver{Position: position}
}

func (r *PathResolver) Resolve(req *http.Request) (string, error) {
	if r.Position < 1 {
		return "", errors.New("tenant: invalid path position")
	}

	path := strings.Trim(req.URL.Path, "/")
	if path == "" {
		return "", nil
	}

	parts := strings.Split(path, "/")
	if r.Position > len(parts) {
		return "", nil
	}
	return parts[r.Position-1], nil
}

// SubdomainResolver extracts the tenant identifier from the request host,
// e.g. "acme" from "acme.events.example.com" with suffix ".events.example.com".
type SubdomainResolver struct {
	Suffix string
}

func NewSubdomainResolver(suffix string) *SubdomainResolver {
	return &SubdomainResolver{Suffix: suffix}
}

func (r *SubdomainResolver) Resolve(req *http.Request) (string, error) {
	host := req.Host
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}

	if r.Suffix == "" || !strings.HasSuffix(host, r.Suffix) {
		return "", nil
	}

	sub := strings.TrimSuffix(host, r.Suffix)
	if sub == "" || sub == "www" || strings.Contains(sub, ".") {
		return "", nil
	}
	return sub, nil
}

// CompositeResolver tries multiple resolvers in order, returning the first
// non-empty identifier.
type CompositeResolver struct {
	Resolvers []Resolver
}

func NewCompositeResolver(resolvers ...Resolver) *CompositeResolver {
	return &CompositeResolver{Resolvers: resolvers}
}

func (c *CompositeResolver) Resolve(r *http.Request) (string, error) {
	var errs []error
	for _, resolver := range c.Resolvers {
		id, err := resolver.Resolve(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if id != "" {
			return id, nil
		}
	}
	if len(errs) > 0 {
		return "", fmt.Errorf("tenant: composite resolver: %w", errors.Join(errs...))
	}
	return "", nil
}
