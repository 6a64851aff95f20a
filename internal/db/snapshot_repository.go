package db

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tlakshman26/maas/internal/domain"
)

// SnapshotRepository is the snapshot-fetch collaborator: it reads the whole
// network configuration out of Postgres and hands back an immutable
// domain.Snapshot for the resolver and the accounting engine.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Snapshot reads every table inside one repeatable-read, read-only
// transaction so that ranges and allocations agree with the subnets they
// belong to.
func (r *SnapshotRepository) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	fabrics, err := loadFabrics(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("load fabrics: %w", err)
	}
	vlans, err := loadVLANs(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("load vlans: %w", err)
	}
	interfaces, err := loadInterfaces(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("load interfaces: %w", err)
	}
	subnets, err := loadSubnets(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("load subnets: %w", err)
	}
	ranges, err := loadRanges(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("load ranges: %w", err)
	}
	allocations, err := loadAllocations(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("load allocations: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return domain.NewSnapshot(time.Now().Unix(), fabrics, vlans, interfaces, subnets, ranges, allocations)
}

func loadFabrics(ctx context.Context, tx pgx.Tx) ([]domain.Fabric, error) {
	rows, err := tx.Query(ctx, `SELECT id, name FROM fabrics ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Fabric
	for rows.Next() {
		var fabric domain.Fabric
		if err := rows.Scan(&fabric.ID, &fabric.Name); err != nil {
			return nil, err
		}
		out = append(out, fabric)
	}
	return out, rows.Err()
}

func loadVLANs(ctx context.Context, tx pgx.Tx) ([]domain.VLAN, error) {
	rows, err := tx.Query(ctx, `SELECT id, vid, fabric_id FROM vlans ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.VLAN
	for rows.Next() {
		var vlan domain.VLAN
		if err := rows.Scan(&vlan.ID, &vlan.VID, &vlan.FabricID); err != nil {
			return nil, err
		}
		out = append(out, vlan)
	}
	return out, rows.Err()
}

func loadInterfaces(ctx context.Context, tx pgx.Tx) ([]domain.Interface, error) {
	rows, err := tx.Query(ctx, `SELECT id, vlan_id, managed, active FROM interfaces ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Interface
	for rows.Next() {
		var iface domain.Interface
		if err := rows.Scan(&iface.ID, &iface.VLANID, &iface.Managed, &iface.Active); err != nil {
			return nil, err
		}
		out = append(out, iface)
	}
	return out, rows.Err()
}

func loadSubnets(ctx context.Context, tx pgx.Tx) ([]domain.Subnet, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, name, cidr, gateway_ip, dns_servers, vlan_id, created_at, updated_at
		FROM subnets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Subnet
	for rows.Next() {
		var (
			subnet  domain.Subnet
			gateway *netip.Addr
			dns     []netip.Addr
		)
		if err := rows.Scan(&subnet.ID, &subnet.Name, &subnet.CIDR, &gateway, &dns,
			&subnet.VLANID, &subnet.CreatedAt, &subnet.UpdatedAt); err != nil {
			return nil, err
		}
		if gateway != nil {
			subnet.GatewayIP = *gateway
		}
		subnet.DNSServers = dns
		out = append(out, subnet)
	}
	return out, rows.Err()
}

func loadRanges(ctx context.Context, tx pgx.Tx) ([]domain.IPRange, error) {
	rows, err := tx.Query(ctx, `SELECT id, subnet_id, start_ip, end_ip, kind FROM ip_ranges ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.IPRange
	for rows.Next() {
		var (
			r    domain.IPRange
			kind string
		)
		if err := rows.Scan(&r.ID, &r.SubnetID, &r.Start, &r.End, &kind); err != nil {
			return nil, err
		}
		r.Kind, err = parseRangeKind(kind)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func loadAllocations(ctx context.Context, tx pgx.Tx) ([]domain.IPAllocation, error) {
	rows, err := tx.Query(ctx, `SELECT id, subnet_id, ip, kind FROM ip_allocations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.IPAllocation
	for rows.Next() {
		var (
			alloc domain.IPAllocation
			id    uuid.UUID
			kind  string
		)
		if err := rows.Scan(&id, &alloc.SubnetID, &alloc.IP, &kind); err != nil {
			return nil, err
		}
		alloc.ID = domain.AllocationID(id.String())
		alloc.Kind, err = parseAllocationKind(kind)
		if err != nil {
			return nil, err
		}
		out = append(out, alloc)
	}
	return out, rows.Err()
}

func parseRangeKind(kind string) (domain.RangeKind, error) {
	switch kind {
	case "dynamic":
		return domain.RangeDynamic, nil
	case "reserved":
		return domain.RangeReserved, nil
	default:
		return 0, fmt.Errorf("%w: unknown range kind %q", domain.ErrDataIntegrity, kind)
	}
}

func parseAllocationKind(kind string) (domain.AllocationKind, error) {
	switch kind {
	case "dhcp":
		return domain.AllocationDHCP, nil
	case "user-reserved":
		return domain.AllocationUserReserved, nil
	case "sticky":
		return domain.AllocationSticky, nil
	default:
		return 0, fmt.Errorf("%w: unknown allocation kind %q", domain.ErrDataIntegrity, kind)
	}
}
