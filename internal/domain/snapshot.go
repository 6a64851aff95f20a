package domain

import (
	"fmt"
	"net/netip"
)

// Snapshot is an immutable arena of network configuration: fabrics, VLANs,
// interfaces, subnets, ranges and allocations as read at one point in time.
// It is never mutated after construction, so every read path is safe for
// concurrent use without coordination.
type Snapshot struct {
	Version int64

	subnets     []Subnet
	vlans       map[int64]VLAN
	fabrics     map[int64]Fabric
	ranges      map[int64][]IPRange
	allocations map[int64][]IPAllocation

	// VLANs served by at least one managed interface on an active controller.
	managedVLANs map[int64]bool
}

// CanonicalCIDR discards any host bits present in the prefix, so
// 10.0.0.1/24 and 10.0.0.0/24 denote the same block.
func CanonicalCIDR(p netip.Prefix) netip.Prefix {
	return netip.PrefixFrom(p.Addr().Unmap(), p.Bits()).Masked()
}

// ValidateSubnet checks the invariants a subnet must satisfy on its own:
// a valid CIDR, and a gateway (when set) of the same family inside the CIDR.
func ValidateSubnet(s Subnet) error {
	if !s.CIDR.IsValid() {
		return fmt.Errorf("%w: subnet %d has no valid cidr", ErrInvalidInput, s.ID)
	}
	if !s.HasGateway() {
		return nil
	}
	gw := s.GatewayIP.Unmap()
	if gw.Is4() != s.CIDR.Addr().Is4() {
		return fmt.Errorf("%w: subnet %d gateway %s does not match cidr family", ErrInvalidInput, s.ID, gw)
	}
	if !s.CIDR.Contains(gw) {
		return fmt.Errorf("%w: subnet %d gateway %s must be within cidr %s", ErrInvalidInput, s.ID, gw, s.CIDR)
	}
	return nil
}

// NewSnapshot assembles and validates a snapshot. Referential breakage
// between records is a data-integrity fault; a duplicate CIDR is a conflict.
// Note the CIDR uniqueness check is global, not per fabric, mirroring the
// registry it models.
func NewSnapshot(version int64, fabrics []Fabric, vlans []VLAN, interfaces []Interface,
	subnets []Subnet, ranges []IPRange, allocations []IPAllocation) (*Snapshot, error) {

	snap := &Snapshot{
		Version:      version,
		vlans:        make(map[int64]VLAN, len(vlans)),
		fabrics:      make(map[int64]Fabric, len(fabrics)),
		ranges:       make(map[int64][]IPRange),
		allocations:  make(map[int64][]IPAllocation),
		managedVLANs: make(map[int64]bool),
	}

	for _, fabric := range fabrics {
		snap.fabrics[fabric.ID] = fabric
	}
	for _, vlan := range vlans {
		if _, ok := snap.fabrics[vlan.FabricID]; !ok {
			return nil, fmt.Errorf("%w: vlan %d references unknown fabric %d", ErrDataIntegrity, vlan.ID, vlan.FabricID)
		}
		snap.vlans[vlan.ID] = vlan
	}
	for _, iface := range interfaces {
		if _, ok := snap.vlans[iface.VLANID]; !ok {
			return nil, fmt.Errorf("%w: interface %d references unknown vlan %d", ErrDataIntegrity, iface.ID, iface.VLANID)
		}
		if iface.Managed && iface.Active {
			snap.managedVLANs[iface.VLANID] = true
		}
	}

	seen := make(map[netip.Prefix]int64, len(subnets))
	byID := make(map[int64]Subnet, len(subnets))
	snap.subnets = make([]Subnet, 0, len(subnets))
	for _, subnet := range subnets {
		if err := ValidateSubnet(subnet); err != nil {
			return nil, err
		}
		subnet.CIDR = CanonicalCIDR(subnet.CIDR)
		if _, ok := snap.vlans[subnet.VLANID]; !ok {
			return nil, fmt.Errorf("%w: subnet %d references unknown vlan %d", ErrDataIntegrity, subnet.ID, subnet.VLANID)
		}
		if other, ok := seen[subnet.CIDR]; ok {
			return nil, fmt.Errorf("%w: cidr %s used by both subnet %d and subnet %d", ErrConflict, subnet.CIDR, other, subnet.ID)
		}
		seen[subnet.CIDR] = subnet.ID
		byID[subnet.ID] = subnet
		snap.subnets = append(snap.subnets, subnet)
	}

	for _, r := range ranges {
		subnet, ok := byID[r.SubnetID]
		if !ok {
			return nil, fmt.Errorf("%w: range %d references unknown subnet %d", ErrDataIntegrity, r.ID, r.SubnetID)
		}
		if err := validateRangeInSubnet(subnet, r); err != nil {
			return nil, err
		}
		snap.ranges[r.SubnetID] = append(snap.ranges[r.SubnetID], r)
	}
	for _, alloc := range allocations {
		subnet, ok := byID[alloc.SubnetID]
		if !ok {
			return nil, fmt.Errorf("%w: allocation %s references unknown subnet %d", ErrDataIntegrity, alloc.ID, alloc.SubnetID)
		}
		if err := validateAllocationInSubnet(subnet, alloc); err != nil {
			return nil, err
		}
		snap.allocations[alloc.SubnetID] = append(snap.allocations[alloc.SubnetID], alloc)
	}

	return snap, nil
}

// Subnets returns every subnet in the snapshot. Callers must not mutate the
// returned slice.
func (s *Snapshot) Subnets() []Subnet {
	return s.subnets
}

func (s *Snapshot) SubnetByID(id int64) (Subnet, bool) {
	for _, subnet := range s.subnets {
		if subnet.ID == id {
			return subnet, true
		}
	}
	return Subnet{}, false
}

// RangesFor returns the address ranges belonging to a subnet.
func (s *Snapshot) RangesFor(subnetID int64) []IPRange {
	return s.ranges[subnetID]
}

// AllocationsFor returns the allocations bound to a subnet.
func (s *Snapshot) AllocationsFor(subnetID int64) []IPAllocation {
	return s.allocations[subnetID]
}

func (s *Snapshot) vlanInFabric(vlanID, fabricID int64) bool {
	vlan, ok := s.vlans[vlanID]
	return ok && vlan.FabricID == fabricID
}

func (s *Snapshot) vlanManagedAndActive(vlanID int64) bool {
	return s.managedVLANs[vlanID]
}

func validateRangeInSubnet(subnet Subnet, r IPRange) error {
	for _, addr := range []netip.Addr{r.Start, r.End} {
		if !addr.IsValid() || addr.Unmap().Is4() != subnet.CIDR.Addr().Is4() {
			return fmt.Errorf("%w: range %d address %s does not match subnet %s family", ErrDataIntegrity, r.ID, addr, subnet.CIDR)
		}
		if !subnet.CIDR.Contains(addr.Unmap()) {
			return fmt.Errorf("%w: range %d address %s outside subnet %s", ErrDataIntegrity, r.ID, addr, subnet.CIDR)
		}
	}
	if r.End.Unmap().Less(r.Start.Unmap()) {
		return fmt.Errorf("%w: range %d ends %s before it starts %s", ErrDataIntegrity, r.ID, r.End, r.Start)
	}
	return nil
}

func validateAllocationInSubnet(subnet Subnet, alloc IPAllocation) error {
	ip := alloc.IP.Unmap()
	if !ip.IsValid() || ip.Is4() != subnet.CIDR.Addr().Is4() {
		return fmt.Errorf("%w: allocation %s address %s does not match subnet %s family", ErrDataIntegrity, alloc.ID, alloc.IP, subnet.CIDR)
	}
	if !subnet.CIDR.Contains(ip) {
		return fmt.Errorf("%w: allocation %s address %s outside subnet %s", ErrDataIntegrity, alloc.ID, alloc.IP, subnet.CIDR)
	}
	return nil
}
