package domain

import (
	"context"
	"log/slog"
	"net/netip"
)

type loggingNetworkService struct {
	logger *slog.Logger
	next   NetworkService
}

func NewLoggingNetworkService(logger *slog.Logger, next NetworkService) NetworkService {
	if logger == nil || next == nil {
		return next
	}

	return &loggingNetworkService{
		logger: logger,
		next:   next,
	}
}

func (s *loggingNetworkService) FindSubnetWithIP(ctx context.Context, ip netip.Addr) (Match, error) {
	match, err := s.next.FindSubnetWithIP(ctx, ip)
	if err != nil {
		s.logger.ErrorContext(ctx, "find subnet failed", "ip", ip.String(), "err", err.Error())
		return Match{}, err
	}

	s.warnAmbiguous(ctx, ip, match)
	return match, nil
}

func (s *loggingNetworkService) FindSubnetWithIPInScope(ctx context.Context, ip netip.Addr, scope Scope) (Match, error) {
	match, err := s.next.FindSubnetWithIPInScope(ctx, ip, scope)
	if err != nil {
		s.logger.ErrorContext(ctx, "find subnet in scope failed", "ip", ip.String(), "fabric_id", scope.FabricID, "err", err.Error())
		return Match{}, err
	}

	s.warnAmbiguous(ctx, ip, match)
	return match, nil
}

func (s *loggingNetworkService) FindManagedSubnetWithIP(ctx context.Context, ip netip.Addr, fabricID int64) (Match, error) {
	match, err := s.next.FindManagedSubnetWithIP(ctx, ip, fabricID)
	if err != nil {
		s.logger.ErrorContext(ctx, "find managed subnet failed", "ip", ip.String(), "fabric_id", fabricID, "err", err.Error())
		return Match{}, err
	}

	s.warnAmbiguous(ctx, ip, match)
	return match, nil
}

func (s *loggingNetworkService) SubnetUtilisation(ctx context.Context) (map[string]Utilisation, error) {
	stats, err := s.next.SubnetUtilisation(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "subnet utilisation failed", "err", err.Error())
		return nil, err
	}

	s.logger.DebugContext(ctx, "subnet utilisation computed", "subnets", len(stats))
	return stats, nil
}

func (s *loggingNetworkService) warnAmbiguous(ctx context.Context, ip netip.Addr, match Match) {
	if match.Ambiguous {
		s.logger.WarnContext(ctx, "ambiguous subnet match, duplicated cidr",
			"ip", ip.String(), "subnet_id", match.Subnet.ID, "cidr", match.Subnet.CIDR.String())
	}
}
