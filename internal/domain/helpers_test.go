package domain

import (
	"net/netip"
	"testing"
)

func mustPrefix(t *testing.T, s string) netip.Prefix {
	t.Helper()
	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		t.Fatalf("parse prefix %q: %v", s, err)
	}
	return prefix
}

func mustAddr(t *testing.T, s string) netip.Addr {
	t.Helper()
	addr, err := netip.ParseAddr(s)
	if err != nil {
		t.Fatalf("parse addr %q: %v", s, err)
	}
	return addr
}

// makeSnapshot builds a snapshot with two fabrics. Fabric 1 has VLAN 1,
// served by a managed interface on an active controller; fabric 2 has
// VLAN 2, served by an unmanaged interface.
func makeSnapshot(t *testing.T, subnets []Subnet, ranges []IPRange, allocations []IPAllocation) *Snapshot {
	t.Helper()
	snap, err := NewSnapshot(1,
		[]Fabric{{ID: 1, Name: "fabric-1"}, {ID: 2, Name: "fabric-2"}},
		[]VLAN{{ID: 1, VID: 10, FabricID: 1}, {ID: 2, VID: 20, FabricID: 2}},
		[]Interface{
			{ID: 1, VLANID: 1, Managed: true, Active: true},
			{ID: 2, VLANID: 2, Managed: false, Active: true},
		},
		subnets, ranges, allocations)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	return snap
}
