package domain

import "net/netip"

// Match is the outcome of a successful subnet resolution. Ambiguous is set
// when a second subnet tied at the winning prefix length; that only happens
// on a duplicated CIDR, which is a data anomaly the caller may want to log.
type Match struct {
	Subnet    Subnet
	Ambiguous bool
}

// Scope restricts resolution to subnets whose VLAN belongs to one fabric,
// and optionally to VLANs served by a managed interface on an active
// controller.
type Scope struct {
	FabricID                int64
	RequireManagedAndActive bool
}

// FindSubnetWithIP returns the most specific subnet containing ip, using the
// longest-prefix-match rule over every subnet in the snapshot. The second
// return value is false when no subnet contains ip.
func (s *Snapshot) FindSubnetWithIP(ip netip.Addr) (Match, bool) {
	return s.findSubnetWithIP(ip, nil)
}

// FindSubnetWithIPInScope is FindSubnetWithIP restricted to the given scope.
func (s *Snapshot) FindSubnetWithIPInScope(ip netip.Addr, scope Scope) (Match, bool) {
	return s.findSubnetWithIP(ip, &scope)
}

// FindManagedSubnetWithIP returns the most specific subnet containing ip
// among those on the given fabric whose VLAN is served by a managed
// interface on an active controller.
func (s *Snapshot) FindManagedSubnetWithIP(ip netip.Addr, fabricID int64) (Match, bool) {
	return s.findSubnetWithIP(ip, &Scope{FabricID: fabricID, RequireManagedAndActive: true})
}

func (s *Snapshot) findSubnetWithIP(ip netip.Addr, scope *Scope) (Match, bool) {
	if !ip.IsValid() {
		return Match{}, false
	}
	ip = ip.Unmap()

	var (
		best      Subnet
		found     bool
		ambiguous bool
	)
	for _, subnet := range s.subnets {
		if !subnet.CIDR.Contains(ip) {
			continue
		}
		if scope != nil {
			if !s.vlanInFabric(subnet.VLANID, scope.FabricID) {
				continue
			}
			if scope.RequireManagedAndActive && !s.vlanManagedAndActive(subnet.VLANID) {
				continue
			}
		}
		switch {
		case !found, subnet.CIDR.Bits() > best.CIDR.Bits():
			best, found, ambiguous = subnet, true, false
		case subnet.CIDR.Bits() == best.CIDR.Bits():
			// Two subnets of equal prefix length containing the same
			// address means a duplicated CIDR. Pick the lowest ID so
			// resolution stays deterministic, and flag it.
			ambiguous = true
			if subnet.ID < best.ID {
				best = subnet
			}
		}
	}
	if !found {
		return Match{}, false
	}
	return Match{Subnet: best, Ambiguous: ambiguous}, true
}
