package pooling

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fueleu-ledger/compliance-backend/internal/compliance"
	"fueleu-ledger/compliance-backend/internal/events"
	"fueleu-ledger/compliance-backend/internal/outcome"
	"fueleu-ledger/compliance-backend/pkg/database"
)

// BalanceProvider resolves a member's balance when the request omits it.
type BalanceProvider interface {
	AdjustedCB(ctx context.Context, shipID string, year int) (*compliance.AdjustedResult, error)
}

// Service creates and reads pools.
type Service struct {
	repo     Repository
	balances BalanceProvider
	tx       database.Transactor
	events   events.Publisher
	logger   *zap.Logger
}

// NewService creates a new pooling service
func NewService(repo Repository, balances BalanceProvider, tx database.Transactor, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		balances: balances,
		tx:       tx,
		events:   events.Nop{},
		logger:   logger,
	}
}

// SetPublisher sends created pools to p.
func (s *Service) SetPublisher(p events.Publisher) {
	s.events = p
}

// ValidatePool runs the pool-level checks without allocating or persisting.
func (s *Service) ValidatePool(members []Member) ValidationResult {
	return Validate(members)
}

// CreatePool validates and allocates the pool, then stores it with its
// members. All member ships stay locked from balance resolution to commit;
// a rejected pool stores nothing.
func (s *Service) CreatePool(ctx context.Context, year int, requests []MemberRequest) (*PoolResult, error) {
	if year < compliance.MinYear || year > compliance.MaxYear {
		return rejectPool(outcome.Invalid(outcome.CodeInvalidYear, "year %d is outside %d-%d", year, compliance.MinYear, compliance.MaxYear)), nil
	}

	shipIDs := make([]string, len(requests))
	for i, req := range requests {
		shipIDs[i] = strings.TrimSpace(req.ShipID)
	}

	var result *PoolResult
	err := s.tx.WithinShipLocks(ctx, shipIDs, func(ctx context.Context) error {
		members, rejection, err := s.resolveMembers(ctx, year, requests)
		if err != nil {
			return err
		}
		if rejection != nil {
			result = rejectPool(rejection)
			return nil
		}

		allocation := Allocate(members)
		if !allocation.IsValid {
			result = &PoolResult{Allocation: allocation}
			return nil
		}

		pooled, err := s.repo.PooledShips(ctx, year, shipIDs)
		if err != nil {
			return err
		}
		if len(pooled) > 0 {
			result = rejectPool(outcome.Conflict(outcome.CodeShipAlreadyPooled,
				"Ships already pooled in %d: %s", year, strings.Join(pooled, ", ")))
			return nil
		}

		pool := &Pool{
			Year:          year,
			TotalCBBefore: allocation.TotalCBBefore,
			TotalCBAfter:  allocation.TotalCBAfter,
			Members:       make([]PoolMember, len(allocation.Members)),
		}
		for i, m := range allocation.Members {
			pool.Members[i] = PoolMember{ShipID: m.ShipID, CBBefore: m.CBBefore, CBAfter: m.CBAfter}
		}
		if err := s.repo.Create(ctx, pool); err != nil {
			return err
		}

		result = &PoolResult{Allocation: allocation, Pool: pool}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if result.IsValid {
		s.logger.Info("Pool created",
			zap.String("pool_id", result.Pool.ID.String()),
			zap.Int("year", year),
			zap.Int("members", len(result.Members)),
			zap.Float64("total_cb", result.TotalCBAfter),
		)
		ships := make([]string, len(result.Members))
		amounts := make(map[string]float64, len(result.Members)+1)
		for i, m := range result.Members {
			ships[i] = m.ShipID
			amounts[m.ShipID] = m.CBAfter
		}
		amounts["total_cb_after"] = result.TotalCBAfter
		s.events.Publish(events.Event{
			Type:      events.TypePoolCreated,
			ShipIDs:   ships,
			Year:      year,
			Amounts:   amounts,
			Reference: result.Pool.ID.String(),
		})
	}
	return result, nil
}

func (s *Service) resolveMembers(ctx context.Context, year int, requests []MemberRequest) ([]Member, *outcome.Rejection, error) {
	members := make([]Member, len(requests))
	for i, req := range requests {
		members[i] = Member{ShipID: strings.TrimSpace(req.ShipID)}
		if req.CBBefore != nil {
			members[i].CBBefore = *req.CBBefore
			continue
		}
		if members[i].ShipID == "" {
			continue
		}

		adjusted, err := s.balances.AdjustedCB(ctx, members[i].ShipID, year)
		if err != nil {
			if r, ok := outcome.As(err); ok {
				return nil, r, nil
			}
			return nil, nil, err
		}
		members[i].CBBefore = adjusted.AdjustedCB
	}
	return members, nil, nil
}

// GetPool returns a pool with its members.
func (s *Service) GetPool(ctx context.Context, id uuid.UUID) (*Pool, error) {
	pool, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, outcome.Missing(outcome.CodeNotFound, "pool %s not found", id)
	}
	return pool, nil
}

// ListPools returns pools for a year, or all pools when year is 0.
func (s *Service) ListPools(ctx context.Context, year int) ([]Pool, error) {
	return s.repo.ListByYear(ctx, year)
}

func rejectPool(r *outcome.Rejection) *PoolResult {
	return &PoolResult{Allocation: Allocation{Message: r.Message, Rejection: r}}
}
