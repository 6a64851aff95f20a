package domain

import (
	"context"
	"errors"
	"testing"
)

type stubSnapshotSource struct {
	snapshotFn func(context.Context) (*Snapshot, error)
}

func (s stubSnapshotSource) Snapshot(ctx context.Context) (*Snapshot, error) {
	if s.snapshotFn == nil {
		return nil, nil
	}
	return s.snapshotFn(ctx)
}

func TestNetworkServiceFindSubnetWithIPReturnsMatch(t *testing.T) {
	snap := makeSnapshot(t, []Subnet{
		{ID: 1, CIDR: mustPrefix(t, "10.0.0.0/16"), VLANID: 1},
		{ID: 2, CIDR: mustPrefix(t, "10.0.0.0/24"), VLANID: 1},
	}, nil, nil)
	svc := NewNetworkService(stubSnapshotSource{
		snapshotFn: func(context.Context) (*Snapshot, error) { return snap, nil },
	})

	match, err := svc.FindSubnetWithIP(context.Background(), mustAddr(t, "10.0.0.9"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if match.Subnet.ID != 2 {
		t.Fatalf("expected most specific subnet, got %d", match.Subnet.ID)
	}
}

func TestNetworkServiceFindSubnetWithIPReturnsNotFound(t *testing.T) {
	snap := makeSnapshot(t, []Subnet{
		{ID: 1, CIDR: mustPrefix(t, "10.0.0.0/24"), VLANID: 1},
	}, nil, nil)
	svc := NewNetworkService(stubSnapshotSource{
		snapshotFn: func(context.Context) (*Snapshot, error) { return snap, nil },
	})

	_, err := svc.FindSubnetWithIP(context.Background(), mustAddr(t, "192.168.0.1"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNetworkServicePropagatesSourceError(t *testing.T) {
	sourceErr := errors.New("connection refused")
	svc := NewNetworkService(stubSnapshotSource{
		snapshotFn: func(context.Context) (*Snapshot, error) { return nil, sourceErr },
	})

	if _, err := svc.FindSubnetWithIP(context.Background(), mustAddr(t, "10.0.0.1")); !errors.Is(err, sourceErr) {
		t.Fatalf("expected source error, got %v", err)
	}
	if _, err := svc.SubnetUtilisation(context.Background()); !errors.Is(err, sourceErr) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestNetworkServiceFindManagedSubnetWithIP(t *testing.T) {
	snap := makeSnapshot(t, []Subnet{
		{ID: 1, CIDR: mustPrefix(t, "10.0.0.0/24"), VLANID: 1},
		{ID: 2, CIDR: mustPrefix(t, "10.0.1.0/24"), VLANID: 2},
	}, nil, nil)
	svc := NewNetworkService(stubSnapshotSource{
		snapshotFn: func(context.Context) (*Snapshot, error) { return snap, nil },
	})

	match, err := svc.FindManagedSubnetWithIP(context.Background(), mustAddr(t, "10.0.0.5"), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if match.Subnet.ID != 1 {
		t.Fatalf("expected subnet 1, got %d", match.Subnet.ID)
	}

	_, err = svc.FindManagedSubnetWithIP(context.Background(), mustAddr(t, "10.0.1.5"), 2)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on unmanaged vlan, got %v", err)
	}
}

func TestNetworkServiceSubnetUtilisation(t *testing.T) {
	snap := makeSnapshot(t, []Subnet{
		{ID: 1, CIDR: mustPrefix(t, "1.2.0.0/16"), GatewayIP: mustAddr(t, "1.2.0.254"), VLANID: 1},
	}, nil, nil)
	svc := NewNetworkService(stubSnapshotSource{
		snapshotFn: func(context.Context) (*Snapshot, error) { return snap, nil },
	})

	stats, err := svc.SubnetUtilisation(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	checkStats(t, stats["1.2.0.0/16"], wantStats(1<<16-3, 1, 0, 0, 0, 0, 0))
}
