package cloud

import (
	"context"
	"fmt"

	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/servers"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/external"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/networks"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/ports"

	"github.com/ademaro/fiphunt/internal/errors"
)

// FindServer resolves an instance by ID or name. An ID lookup is tried
// first; when it misses, the name is matched against the server list and
// must be unambiguous.
func FindServer(ctx context.Context, s *Session, idOrName string) (*servers.Server, error) {
	srv, err := servers.Get(ctx, s.compute, idOrName).Extract()
	if err == nil {
		return srv, nil
	}

	pages, err := servers.List(s.compute, servers.ListOpts{Name: idOrName}).AllPages(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing servers")
	}
	all, err := servers.ExtractServers(pages)
	if err != nil {
		return nil, errors.Wrap(err, "listing servers")
	}

	// The Name filter is a server-side regex; keep exact matches only.
	var matches []servers.Server
	for _, srv := range all {
		if srv.Name == idOrName {
			matches = append(matches, srv)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no server found with ID or name %q", idOrName)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("server name %q is ambiguous: %d matches", idOrName, len(matches))
	}
}

// PickPort selects the port the claimed floating IP will be bound to. An
// explicitly configured port wins but must belong to the server; otherwise
// the server's ports are listed and an active one is preferred.
func PickPort(ctx context.Context, s *Session, serverID, portID string) (string, error) {
	if portID != "" {
		p, err := ports.Get(ctx, s.network, portID).Extract()
		if err != nil {
			return "", errors.Wrapf(err, "fetching port %s", portID)
		}
		if err := checkPortOwner(p, serverID); err != nil {
			return "", err
		}
		return p.ID, nil
	}

	pages, err := ports.List(s.network, ports.ListOpts{DeviceID: serverID}).AllPages(ctx)
	if err != nil {
		return "", errors.Wrap(err, "listing server ports")
	}
	all, err := ports.ExtractPorts(pages)
	if err != nil {
		return "", errors.Wrap(err, "listing server ports")
	}
	if len(all) == 0 {
		return "", fmt.Errorf("server %s has no ports to bind a floating IP to", serverID)
	}

	for _, p := range all {
		if p.Status == "ACTIVE" {
			return p.ID, nil
		}
	}
	return all[0].ID, nil
}

// checkPortOwner rejects a configured port that is attached to a different
// device than the target server, so a stale port ID fails at startup
// instead of claiming floating IPs for the wrong machine.
func checkPortOwner(p *ports.Port, serverID string) error {
	if p.DeviceID != serverID {
		return fmt.Errorf("port %s belongs to device %q, not server %s", p.ID, p.DeviceID, serverID)
	}
	return nil
}

// FindExternalNetwork resolves the network floating IPs are allocated
// from. With no value configured it auto-discovers the first
// router:external network visible to the project; otherwise the value is
// matched as an ID first, then as a name.
func FindExternalNetwork(ctx context.Context, s *Session, idOrName string) (string, error) {
	if idOrName == "" {
		isExternal := true
		opts := external.ListOptsExt{
			ListOptsBuilder: networks.ListOpts{},
			External:        &isExternal,
		}
		pages, err := networks.List(s.network, opts).AllPages(ctx)
		if err != nil {
			return "", errors.Wrap(err, "listing external networks")
		}
		all, err := networks.ExtractNetworks(pages)
		if err != nil {
			return "", errors.Wrap(err, "listing external networks")
		}
		if len(all) == 0 {
			return "", errors.New("no external network visible to this project")
		}
		return all[0].ID, nil
	}

	net, err := networks.Get(ctx, s.network, idOrName).Extract()
	if err == nil {
		return net.ID, nil
	}

	pages, err := networks.List(s.network, networks.ListOpts{Name: idOrName}).AllPages(ctx)
	if err != nil {
		return "", errors.Wrap(err, "listing networks")
	}
	all, err := networks.ExtractNetworks(pages)
	if err != nil {
		return "", errors.Wrap(err, "listing networks")
	}
	for _, net := range all {
		if net.Name == idOrName {
			return net.ID, nil
		}
	}
	return "", fmt.Errorf("no network found with ID or name %q", idOrName)
}
