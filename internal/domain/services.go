package domain

import (
	"context"
	"net/netip"
)

type NetworkService interface {
	FindSubnetWithIP(ctx context.Context, ip netip.Addr) (Match, error)
	FindSubnetWithIPInScope(ctx context.Context, ip netip.Addr, scope Scope) (Match, error)
	FindManagedSubnetWithIP(ctx context.Context, ip netip.Addr, fabricID int64) (Match, error)
	SubnetUtilisation(ctx context.Context) (map[string]Utilisation, error)
}
