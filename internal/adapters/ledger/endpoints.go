package ledger

import (
	"context"
	"encoding/base64"
)

// GetTransaction fetches a confirmed transaction by its signature
func (c *Client) GetTransaction(ctx context.Context, ref string) (Transaction, error) {
	var w wireTransaction
	err := c.call(ctx, "getTransaction", []any{ref, map[string]any{
		"encoding":                       "json",
		"commitment":                     c.opts.Commitment,
		"maxSupportedTransactionVersion": 0,
	}}, &w)
	if err != nil {
		return Transaction{}, err
	}
	return w.toDomain(ref)
}

// GetAccountInfo fetches raw account bytes by address
func (c *Client) GetAccountInfo(ctx context.Context, address string) (Account, error) {
	var w wireAccountInfo
	err := c.call(ctx, "getAccountInfo", []any{address, map[string]any{
		"encoding":   "base64",
		"commitment": c.opts.Commitment,
	}}, &w)
	if err != nil {
		return Account{}, err
	}
	if w.Value == nil {
		return Account{}, notFound("getAccountInfo")
	}
	return w.Value.toDomain(address)
}

// GetProgramAccounts lists every account owned by program
// discriminator narrows the listing server side when non empty
func (c *Client) GetProgramAccounts(ctx context.Context, program string, discriminator []byte) ([]Account, error) {
	cfg := map[string]any{
		"encoding":   "base64",
		"commitment": c.opts.Commitment,
	}
	if len(discriminator) > 0 {
		cfg["filters"] = []any{map[string]any{
			"memcmp": map[string]any{
				"offset":   0,
				"bytes":    base64.StdEncoding.EncodeToString(discriminator),
				"encoding": "base64",
			},
		}}
	}

	var w []wireKeyedAccount
	if err := c.call(ctx, "getProgramAccounts", []any{program, cfg}, &w); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]Account, 0, len(w))
	for _, ka := range w {
		a, err := ka.Account.toDomain(ka.Pubkey)
		if err != nil {
			c.log.Warn().Err(err).Str("address", ka.Pubkey).Msg("ledger skipping undecodable account")
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
