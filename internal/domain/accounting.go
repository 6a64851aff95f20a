package domain

import (
	"fmt"
	"math/big"
	"net/netip"
	"slices"

	"go4.org/netipx"
)

// Utilisation is the bucket-by-bucket accounting of one subnet's address
// space. Counters are big.Ints because an IPv6 block can hold up to 2^128
// addresses. For every well-formed input,
//
//	Available + Unavailable == total - edge reserved
//
// where the network and broadcast addresses are edge reserved whenever the
// block holds more than two addresses.
type Utilisation struct {
	Available         *big.Int `json:"available"`
	Unavailable       *big.Int `json:"unavailable"`
	DynamicAvailable  *big.Int `json:"dynamic_available"`
	DynamicUsed       *big.Int `json:"dynamic_used"`
	ReservedAvailable *big.Int `json:"reserved_available"`
	ReservedUsed      *big.Int `json:"reserved_used"`
	Static            *big.Int `json:"static"`
}

func (u Utilisation) Equal(v Utilisation) bool {
	return u.Available.Cmp(v.Available) == 0 &&
		u.Unavailable.Cmp(v.Unavailable) == 0 &&
		u.DynamicAvailable.Cmp(v.DynamicAvailable) == 0 &&
		u.DynamicUsed.Cmp(v.DynamicUsed) == 0 &&
		u.ReservedAvailable.Cmp(v.ReservedAvailable) == 0 &&
		u.ReservedUsed.Cmp(v.ReservedUsed) == 0 &&
		u.Static.Cmp(v.Static) == 0
}

func (u Utilisation) String() string {
	return fmt.Sprintf(
		"available=%s unavailable=%s dynamic_available=%s dynamic_used=%s reserved_available=%s reserved_used=%s static=%s",
		u.Available, u.Unavailable, u.DynamicAvailable, u.DynamicUsed,
		u.ReservedAvailable, u.ReservedUsed, u.Static)
}

// AccountFor partitions a subnet's address space among its gateway, dynamic
// and reserved ranges, static assignments and free addresses. Ranges and
// allocations must belong to the subnet; a child outside the CIDR, a family
// mismatch, or overlapping ranges is a data-integrity fault.
func AccountFor(subnet Subnet, ranges []IPRange, allocations []IPAllocation) (Utilisation, error) {
	if err := ValidateSubnet(subnet); err != nil {
		return Utilisation{}, fmt.Errorf("%w: %v", ErrDataIntegrity, err)
	}
	subnet.CIDR = CanonicalCIDR(subnet.CIDR)

	var dynamic, reserved []netipx.IPRange
	dynamicSize := new(big.Int)
	reservedSize := new(big.Int)
	for _, r := range ranges {
		if r.SubnetID != subnet.ID {
			return Utilisation{}, fmt.Errorf("%w: range %d belongs to subnet %d, not %d", ErrDataIntegrity, r.ID, r.SubnetID, subnet.ID)
		}
		if err := validateRangeInSubnet(subnet, r); err != nil {
			return Utilisation{}, err
		}
		span := netipx.IPRangeFrom(r.Start.Unmap(), r.End.Unmap())
		switch r.Kind {
		case RangeDynamic:
			dynamic = append(dynamic, span)
			dynamicSize.Add(dynamicSize, rangeSize(span))
		case RangeReserved:
			reserved = append(reserved, span)
			reservedSize.Add(reservedSize, rangeSize(span))
		default:
			return Utilisation{}, fmt.Errorf("%w: range %d has unknown kind %d", ErrDataIntegrity, r.ID, r.Kind)
		}
	}
	if err := checkRangeOverlap(ranges); err != nil {
		return Utilisation{}, err
	}

	var dynamicUsed, reservedUsed, static int64
	for _, alloc := range allocations {
		if alloc.SubnetID != subnet.ID {
			return Utilisation{}, fmt.Errorf("%w: allocation %s belongs to subnet %d, not %d", ErrDataIntegrity, alloc.ID, alloc.SubnetID, subnet.ID)
		}
		if err := validateAllocationInSubnet(subnet, alloc); err != nil {
			return Utilisation{}, err
		}
		ip := alloc.IP.Unmap()

		switch alloc.Kind {
		case AllocationDHCP:
			if containedIn(dynamic, ip) {
				dynamicUsed++
				continue
			}
		case AllocationUserReserved:
			if containedIn(reserved, ip) {
				reservedUsed++
				continue
			}
		case AllocationSticky:
			// Sticky addresses live outside any earmarked range.
		default:
			return Utilisation{}, fmt.Errorf("%w: allocation %s has unknown kind %d", ErrDataIntegrity, alloc.ID, alloc.Kind)
		}

		// An allocation outside its matching range kind counts as static
		// unless its address is already accounted for by the gateway or by
		// some range's size.
		if subnet.HasGateway() && ip == subnet.GatewayIP.Unmap() {
			continue
		}
		if containedIn(dynamic, ip) || containedIn(reserved, ip) {
			continue
		}
		static++
	}

	bits := subnet.CIDR.Addr().BitLen()
	total := new(big.Int).Lsh(big.NewInt(1), uint(bits-subnet.CIDR.Bits()))
	pool := new(big.Int).Set(total)
	if total.Cmp(big.NewInt(2)) > 0 {
		// Network and broadcast addresses are excluded from every bucket.
		pool.Sub(pool, big.NewInt(2))
	}

	unavailable := new(big.Int).Add(dynamicSize, reservedSize)
	unavailable.Add(unavailable, big.NewInt(static))
	if subnet.HasGateway() {
		unavailable.Add(unavailable, big.NewInt(1))
	}

	return Utilisation{
		Available:         new(big.Int).Sub(pool, unavailable),
		Unavailable:       unavailable,
		DynamicAvailable:  new(big.Int).Sub(dynamicSize, big.NewInt(dynamicUsed)),
		DynamicUsed:       big.NewInt(dynamicUsed),
		ReservedAvailable: new(big.Int).Sub(reservedSize, big.NewInt(reservedUsed)),
		ReservedUsed:      big.NewInt(reservedUsed),
		Static:            big.NewInt(static),
	}, nil
}

// SubnetUtilisation computes the utilisation of every subnet in the
// snapshot, keyed by CIDR string.
func SubnetUtilisation(snap *Snapshot) (map[string]Utilisation, error) {
	out := make(map[string]Utilisation, len(snap.Subnets()))
	for _, subnet := range snap.Subnets() {
		u, err := AccountFor(subnet, snap.RangesFor(subnet.ID), snap.AllocationsFor(subnet.ID))
		if err != nil {
			return nil, fmt.Errorf("subnet %s: %w", subnet.CIDR, err)
		}
		out[subnet.CIDR.String()] = u
	}
	return out, nil
}

func containedIn(spans []netipx.IPRange, ip netip.Addr) bool {
	for _, span := range spans {
		if span.Contains(ip) {
			return true
		}
	}
	return false
}

// rangeSize returns end - start + 1.
func rangeSize(span netipx.IPRange) *big.Int {
	start := new(big.Int).SetBytes(span.From().AsSlice())
	end := new(big.Int).SetBytes(span.To().AsSlice())
	size := end.Sub(end, start)
	return size.Add(size, big.NewInt(1))
}

func checkRangeOverlap(ranges []IPRange) error {
	sorted := slices.Clone(ranges)
	slices.SortFunc(sorted, func(a, b IPRange) int {
		return a.Start.Unmap().Compare(b.Start.Unmap())
	})
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if !prev.End.Unmap().Less(cur.Start.Unmap()) {
			return fmt.Errorf("%w: range %d overlaps range %d", ErrDataIntegrity, prev.ID, cur.ID)
		}
	}
	return nil
}
