package cloud

import (
	"context"
	"net/http"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/layer3/floatingips"

	"github.com/ademaro/fiphunt/internal/errors"
	"github.com/ademaro/fiphunt/internal/logging"
	"github.com/ademaro/fiphunt/internal/race"
)

// NeutronClient implements race.Allocator on the Neutron floating-IP API.
// A candidate is a floating IP allocated from the external network; claiming
// it means associating it with the target port.
type NeutronClient struct {
	network   *gophercloud.ServiceClient
	networkID string
	log       *logging.Logger
}

// NewNeutronClient creates an allocator bound to one session's network
// client and one external network.
func NewNeutronClient(s *Session, networkID string, log *logging.Logger) *NeutronClient {
	return &NeutronClient{
		network:   s.network,
		networkID: networkID,
		log:       log,
	}
}

// Allocate requests a fresh floating IP from the external network. The
// address may come back empty when the allocation is still settling; the
// race engine treats that as malformed and releases it.
func (c *NeutronClient) Allocate(ctx context.Context) (race.Candidate, error) {
	fip, err := floatingips.Create(ctx, c.network, floatingips.CreateOpts{
		FloatingNetworkID: c.networkID,
	}).Extract()
	if err != nil {
		return race.Candidate{}, allocatorError("allocate", "", err)
	}
	return race.Candidate{ID: fip.ID, Address: fip.FloatingIP}, nil
}

// Release deletes a floating IP. A 404 counts as success: the IP is gone
// either way, and releases race against peers and the window timer.
func (c *NeutronClient) Release(ctx context.Context, cand race.Candidate) error {
	err := floatingips.Delete(ctx, c.network, cand.ID).ExtractErr()
	if err != nil && !gophercloud.ResponseCodeIs(err, http.StatusNotFound) {
		return allocatorError("release", cand.ID, err)
	}
	return nil
}

// Claim associates the floating IP with the target port.
func (c *NeutronClient) Claim(ctx context.Context, cand race.Candidate, target string) error {
	_, err := floatingips.Update(ctx, c.network, cand.ID, floatingips.UpdateOpts{
		PortID: &target,
	}).Extract()
	if err != nil {
		return allocatorError("claim", cand.ID, err)
	}
	return nil
}

// Status re-reads the floating IP and reports which port Neutron considers
// it bound to, for claim verification.
func (c *NeutronClient) Status(ctx context.Context, id string) (race.ClaimStatus, error) {
	fip, err := floatingips.Get(ctx, c.network, id).Extract()
	if err != nil {
		return race.ClaimStatus{}, allocatorError("status", id, err)
	}
	return race.ClaimStatus{ClaimedTarget: fip.PortID}, nil
}

// allocatorError wraps a Neutron failure with the operation, the candidate
// and, when the failure was an HTTP response, the status code so that
// classification can recognize expired tokens.
func allocatorError(op, candidateID string, err error) error {
	ae := errors.NewAllocatorError(op, err)
	if candidateID != "" {
		ae = ae.WithCandidateID(candidateID)
	}
	if code, ok := responseCode(err); ok {
		ae = ae.WithStatusCode(code)
	}
	return ae
}
