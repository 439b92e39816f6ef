package service

import (
	"math"
	"sort"

	"paygate/internal/adapters/ledger"
)

// transfer is the outcome of matching pre and post balances by account index
type transfer struct {
	increase uint64
	sender   string
}

// matchBalances joins the two lists on AccountIndex; list position is never trusted
// only balances of mint count, an empty mint matches nothing
func matchBalances(pre, post []ledger.TokenBalance, mint, recipient string) transfer {
	before := indexBalances(pre, mint)
	after := indexBalances(post, mint)

	idx := make([]int, 0, len(before)+len(after))
	for i := range after {
		idx = append(idx, i)
	}
	for i := range before {
		if _, ok := after[i]; !ok {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)

	var out transfer
	for _, i := range idx {
		b := before[i]
		a, hasAfter := after[i]
		owner := a.Owner
		if !hasAfter {
			owner = b.Owner
		}
		switch {
		case a.Amount > b.Amount:
			if owner == recipient {
				out.increase = addSaturating(out.increase, a.Amount-b.Amount)
			}
		case a.Amount < b.Amount:
			if out.sender == "" {
				out.sender = owner
			}
		}
	}
	return out
}

func indexBalances(in []ledger.TokenBalance, mint string) map[int]ledger.TokenBalance {
	out := make(map[int]ledger.TokenBalance, len(in))
	for _, b := range in {
		if mint == "" || b.Mint != mint {
			continue
		}
		out[b.AccountIndex] = b
	}
	return out
}

func addSaturating(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}
