package pooling

import (
	"math"
	"sort"
	"strings"

	"fueleu-ledger/compliance-backend/internal/outcome"
	"fueleu-ledger/compliance-backend/pkg/rounding"
)

// Validate applies the pool-level checks: at least one member, unique ship
// ids, finite balances and a non-negative total.
func Validate(members []Member) ValidationResult {
	if len(members) == 0 {
		return invalid(outcome.Invalid(outcome.CodeEmptyPool, "Pool must have at least one member"))
	}

	seen := make(map[string]struct{}, len(members))
	balances := make([]float64, len(members))
	for i, m := range members {
		if strings.TrimSpace(m.ShipID) == "" {
			return invalid(outcome.Invalid(outcome.CodeInvalidShip, "Pool member %d has no shipId", i))
		}
		if _, dup := seen[m.ShipID]; dup {
			return invalid(outcome.Invalid(outcome.CodeDuplicateMember, "Ship %s appears more than once in the pool", m.ShipID))
		}
		seen[m.ShipID] = struct{}{}
		if math.IsNaN(m.CBBefore) || math.IsInf(m.CBBefore, 0) {
			return invalid(outcome.Invalid(outcome.CodeInvalidAmount, "Ship %s has no finite compliance balance", m.ShipID))
		}
		balances[i] = m.CBBefore
	}

	total := rounding.Sum5(balances...)
	if total < 0 {
		result := invalid(outcome.Conflict(outcome.CodePoolTotalNegative,
			"Pool total CB is negative (%.5f). Cannot create pool.", total).
			With("total_cb_before", total))
		result.TotalCBBefore = total
		return result
	}

	return ValidationResult{IsValid: true, TotalCBBefore: total}
}

func invalid(r *outcome.Rejection) ValidationResult {
	return ValidationResult{IsValid: false, Message: r.Message, Rejection: r}
}

// Allocate redistributes surplus to deficits greedily. Members are ordered by
// balance, largest first (ties keep input order); each donor from the front
// covers receivers from the back until it is exhausted. The result lists
// members in input order. Nothing is persisted.
func Allocate(members []Member) Allocation {
	validation := Validate(members)
	if !validation.IsValid {
		return Allocation{
			Message:       validation.Message,
			Rejection:     validation.Rejection,
			TotalCBBefore: validation.TotalCBBefore,
		}
	}

	order := make([]int, len(members))
	after := make([]float64, len(members))
	for i, m := range members {
		order[i] = i
		after[i] = rounding.Round5(m.CBBefore)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return members[order[a]].CBBefore > members[order[b]].CBBefore
	})

	for i := 0; i < len(order); i++ {
		donor := order[i]
		if after[donor] <= 0 {
			continue
		}
		for j := len(order) - 1; j > i; j-- {
			if after[donor] <= 0 {
				break
			}
			receiver := order[j]
			if after[receiver] >= 0 {
				continue
			}
			transfer := math.Min(after[donor], -after[receiver])
			after[donor] = rounding.Add5(after[donor], -transfer)
			after[receiver] = rounding.Add5(after[receiver], transfer)
		}
	}

	allocated := make([]AllocatedMember, len(members))
	for i, m := range members {
		allocated[i] = AllocatedMember{ShipID: m.ShipID, CBBefore: m.CBBefore, CBAfter: after[i]}
	}

	if r := checkExits(allocated); r != nil {
		return Allocation{
			Message:       r.Message,
			Rejection:     r,
			TotalCBBefore: validation.TotalCBBefore,
		}
	}

	return Allocation{
		IsValid:       true,
		Members:       allocated,
		TotalCBBefore: validation.TotalCBBefore,
		TotalCBAfter:  rounding.Sum5(after...),
	}
}

// checkExits enforces Article 21(5): a deficit ship may not leave the pool
// worse off and a surplus ship may not leave it in deficit.
func checkExits(members []AllocatedMember) *outcome.Rejection {
	for _, m := range members {
		if m.CBBefore < 0 && m.CBAfter < rounding.Round5(m.CBBefore) {
			return outcome.Conflict(outcome.CodeDeficitExitsWorse,
				"Deficit ship %s cannot exit worse (%.5f -> %.5f)", m.ShipID, m.CBBefore, m.CBAfter).
				With("cb_before", m.CBBefore).
				With("cb_after", m.CBAfter)
		}
		if m.CBBefore > 0 && m.CBAfter < 0 {
			return outcome.Conflict(outcome.CodeSurplusExitsNegative,
				"Surplus ship %s cannot exit negative (%.5f -> %.5f)", m.ShipID, m.CBBefore, m.CBAfter).
				With("cb_before", m.CBBefore).
				With("cb_after", m.CBAfter)
		}
	}
	return nil
}
