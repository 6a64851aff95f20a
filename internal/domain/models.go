package domain

import (
	"net/netip"
	"time"
)

type AllocationID string

// Fabric is one broadcast/reachability domain grouping VLANs.
type Fabric struct {
	ID   int64
	Name string
}

type VLAN struct {
	ID       int64
	VID      int
	FabricID int64
}

// Interface is a controller-side network interface serving a VLAN. Managed
// means the controller manages addressing on that VLAN; Active means the
// controller itself is up.
type Interface struct {
	ID      int64
	VLANID  int64
	Managed bool
	Active  bool
}

// Subnet is an administratively defined address block. The address family is
// fixed by CIDR at creation. GatewayIP is the zero Addr when unset.
type Subnet struct {
	ID         int64
	Name       string
	CIDR       netip.Prefix
	GatewayIP  netip.Addr
	DNSServers []netip.Addr
	VLANID     int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasGateway reports whether a gateway address is configured.
func (s Subnet) HasGateway() bool {
	return s.GatewayIP.IsValid()
}

type RangeKind int

const (
	RangeDynamic RangeKind = iota
	RangeReserved
)

func (k RangeKind) String() string {
	switch k {
	case RangeDynamic:
		return "dynamic"
	case RangeReserved:
		return "reserved"
	default:
		return "unknown"
	}
}

// IPRange is an inclusive [Start, End] span of addresses inside one subnet,
// earmarked for either lease-based or operator-controlled assignment.
type IPRange struct {
	ID       int64
	SubnetID int64
	Start    netip.Addr
	End      netip.Addr
	Kind     RangeKind
}

type AllocationKind int

const (
	AllocationDHCP AllocationKind = iota
	AllocationUserReserved
	AllocationSticky
)

func (k AllocationKind) String() string {
	switch k {
	case AllocationDHCP:
		return "dhcp"
	case AllocationUserReserved:
		return "user-reserved"
	case AllocationSticky:
		return "sticky"
	default:
		return "unknown"
	}
}

// IPAllocation is a single address bound to a subnet. Allocations are
// created and released elsewhere; this core only reads them.
type IPAllocation struct {
	ID       AllocationID
	SubnetID int64
	IP       netip.Addr
	Kind     AllocationKind
}
