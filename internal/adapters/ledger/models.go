package ledger

import (
	"encoding/base64"
	"strconv"
)

// TokenBalance is one token account balance inside a transaction report
// the ledger lists these in no particular order; AccountIndex is the join key
type TokenBalance struct {
	AccountIndex int    `json:"accountIndex"`
	Mint         string `json:"mint"`
	Owner        string `json:"owner"`
	Amount       uint64 `json:"-"`
}

// Transaction is the slice of a confirmed transaction the verifier reads
type Transaction struct {
	Reference string
	Slot      uint64
	BlockTime int64
	Failed    bool
	Pre       []TokenBalance
	Post      []TokenBalance
}

// Account is raw account data
type Account struct {
	Address  string
	Owner    string
	Lamports uint64
	Data     []byte
}

// wire shapes

type wireUITokenAmount struct {
	Amount   string `json:"amount"`
	Decimals int    `json:"decimals"`
}

type wireTokenBalance struct {
	AccountIndex  int               `json:"accountIndex"`
	Mint          string            `json:"mint"`
	Owner         string            `json:"owner"`
	UITokenAmount wireUITokenAmount `json:"uiTokenAmount"`
}

type wireMeta struct {
	Err               any                `json:"err"`
	PreTokenBalances  []wireTokenBalance `json:"preTokenBalances"`
	PostTokenBalances []wireTokenBalance `json:"postTokenBalances"`
}

type wireTransaction struct {
	Slot      uint64    `json:"slot"`
	BlockTime *int64    `json:"blockTime"`
	Meta      *wireMeta `json:"meta"`
}

// wireAccount carries data as ["<base64>", "base64"]
type wireAccount struct {
	Owner    string    `json:"owner"`
	Lamports uint64    `json:"lamports"`
	Data     [2]string `json:"data"`
}

type wireAccountInfo struct {
	Value *wireAccount `json:"value"`
}

type wireKeyedAccount struct {
	Pubkey  string      `json:"pubkey"`
	Account wireAccount `json:"account"`
}

func (w wireTransaction) toDomain(ref string) (Transaction, error) {
	tx := Transaction{Reference: ref, Slot: w.Slot}
	if w.BlockTime != nil {
		tx.BlockTime = *w.BlockTime
	}
	if w.Meta == nil {
		// no status meta means the ledger cannot vouch for the balances
		return tx, unavailable(nil, "ledger transaction without meta")
	}
	tx.Failed = w.Meta.Err != nil

	var err error
	if tx.Pre, err = balances(w.Meta.PreTokenBalances); err != nil {
		return tx, err
	}
	if tx.Post, err = balances(w.Meta.PostTokenBalances); err != nil {
		return tx, err
	}
	return tx, nil
}

func balances(in []wireTokenBalance) ([]TokenBalance, error) {
	out := make([]TokenBalance, 0, len(in))
	for _, b := range in {
		amt, err := strconv.ParseUint(b.UITokenAmount.Amount, 10, 64)
		if err != nil {
			return nil, unavailable(err, "ledger malformed token amount")
		}
		out = append(out, TokenBalance{
			AccountIndex: b.AccountIndex,
			Mint:         b.Mint,
			Owner:        b.Owner,
			Amount:       amt,
		})
	}
	return out, nil
}

func (w wireAccount) toDomain(addr string) (Account, error) {
	if w.Data[1] != "" && w.Data[1] != "base64" {
		return Account{}, unavailable(nil, "ledger unsupported account encoding "+w.Data[1])
	}
	data, err := base64.StdEncoding.DecodeString(w.Data[0])
	if err != nil {
		return Account{}, unavailable(err, "ledger malformed account data")
	}
	return Account{Address: addr, Owner: w.Owner, Lamports: w.Lamports, Data: data}, nil
}
