package domain

import (
	"context"
	"fmt"
	"net/netip"
)

type networkService struct {
	source SnapshotSource
}

func NewNetworkService(source SnapshotSource) NetworkService {
	return &networkService{source: source}
}

func (s *networkService) FindSubnetWithIP(ctx context.Context, ip netip.Addr) (Match, error) {
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return Match{}, err
	}
	match, ok := snap.FindSubnetWithIP(ip)
	if !ok {
		return Match{}, fmt.Errorf("%w: no subnet contains %s", ErrNotFound, ip)
	}
	return match, nil
}

func (s *networkService) FindSubnetWithIPInScope(ctx context.Context, ip netip.Addr, scope Scope) (Match, error) {
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return Match{}, err
	}
	match, ok := snap.FindSubnetWithIPInScope(ip, scope)
	if !ok {
		return Match{}, fmt.Errorf("%w: no subnet on fabric %d contains %s", ErrNotFound, scope.FabricID, ip)
	}
	return match, nil
}

func (s *networkService) FindManagedSubnetWithIP(ctx context.Context, ip netip.Addr, fabricID int64) (Match, error) {
	return s.FindSubnetWithIPInScope(ctx, ip, Scope{FabricID: fabricID, RequireManagedAndActive: true})
}

func (s *networkService) SubnetUtilisation(ctx context.Context) (map[string]Utilisation, error) {
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return SubnetUtilisation(snap)
}
