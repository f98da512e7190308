// Package cloud talks to the OpenStack APIs: it builds authenticated
// sessions, keeps them live across token expiry, implements the narrow
// allocator interface the race engine consumes, and resolves the server,
// port and external network a hunt is configured with.
package cloud

import (
	"context"
	"crypto/tls"
	"net/http"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack"
	"github.com/gophercloud/gophercloud/v2/openstack/identity/v3/tokens"

	"github.com/ademaro/fiphunt/internal/errors"
)

// Credentials holds everything needed to authenticate against the cloud's
// identity service and select regional endpoints.
type Credentials struct {
	AuthURL        string
	Username       string
	Password       string
	ProjectID      string
	UserDomainName string
	Region         string
	// Interface selects the endpoint visibility: public, internal or admin.
	Interface string
	// Insecure skips TLS certificate verification. For clouds fronted by
	// self-signed certificates only.
	Insecure bool
}

// Session is one authenticated connection to the cloud: the provider token
// plus the service clients the hunt uses. Sessions are never shared across
// workers; each worker's Keeper owns its own.
type Session struct {
	provider *gophercloud.ProviderClient
	network  *gophercloud.ServiceClient
	compute  *gophercloud.ServiceClient
	identity *gophercloud.ServiceClient
}

// Connect authenticates with the identity service and builds the service
// clients. Token renewal is deliberately left off: an expired token must
// surface as an auth error so the caller rebuilds the session explicitly.
func Connect(ctx context.Context, creds Credentials) (*Session, error) {
	provider, err := openstack.NewClient(creds.AuthURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing auth URL")
	}
	if creds.Insecure {
		provider.HTTPClient = http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}

	opts := gophercloud.AuthOptions{
		IdentityEndpoint: creds.AuthURL,
		Username:         creds.Username,
		Password:         creds.Password,
		DomainName:       creds.UserDomainName,
		TenantID:         creds.ProjectID,
		AllowReauth:      false,
	}
	if err := openstack.Authenticate(ctx, provider, opts); err != nil {
		return nil, authError(err)
	}

	eo := gophercloud.EndpointOpts{
		Region:       creds.Region,
		Availability: gophercloud.Availability(creds.Interface),
	}

	network, err := openstack.NewNetworkV2(provider, eo)
	if err != nil {
		return nil, errors.Wrap(err, "building network client")
	}
	compute, err := openstack.NewComputeV2(provider, eo)
	if err != nil {
		return nil, errors.Wrap(err, "building compute client")
	}
	identity, err := openstack.NewIdentityV3(provider, eo)
	if err != nil {
		return nil, errors.Wrap(err, "building identity client")
	}

	return &Session{
		provider: provider,
		network:  network,
		compute:  compute,
		identity: identity,
	}, nil
}

// CheckToken asks the identity service whether the session token is still
// valid. An invalid or expired token comes back as an auth-classed error.
func (s *Session) CheckToken(ctx context.Context) error {
	r := tokens.Get(ctx, s.identity, s.provider.Token())
	if r.Err != nil {
		return authError(r.Err)
	}
	return nil
}

// authError wraps an identity-service failure so that token-invalid
// responses classify as auth errors and everything else as transient.
func authError(err error) error {
	ae := errors.NewAllocatorError("authenticate", err)
	if code, ok := responseCode(err); ok {
		ae = ae.WithStatusCode(code)
	}
	return ae
}

// responseCode extracts the HTTP status from a gophercloud error, when the
// failure was an unexpected response rather than a transport problem.
func responseCode(err error) (int, bool) {
	var unexpected gophercloud.ErrUnexpectedResponseCode
	if errors.As(err, &unexpected) {
		return unexpected.Actual, true
	}
	return 0, false
}
