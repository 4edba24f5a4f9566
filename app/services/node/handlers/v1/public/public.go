// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/blockchain/validation"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/nameservice"
	"github.com/ardanlabs/powchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction adds a new transaction to the pending pool. The
// transaction is accepted without checking the signature or the amount.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var stx SubmitTx
	if err := web.Decode(r, &stx); err != nil {
		if errs.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	dbTx, err := stx.ToDBTx()
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "source", dbTx.Source.Short(), "recipient", dbTx.Recipient.Short(), "amount", dbTx.Amount)
	pending := h.State.SubmitTransaction(dbTx)

	resp := struct {
		Status  string `json:"status"`
		Pending int    `json:"pending"`
	}{
		Status:  "transaction added to mempool",
		Pending: pending,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SignalMining signals to start a mining operation.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker == nil {
		return errs.NewTrusted(errors.New("mining is not running on this node"), http.StatusServiceUnavailable)
	}

	h.State.Worker.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.Genesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	trans := toTxs(h.NS, h.State.Mempool())
	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Blocks returns every block in the chain starting with genesis.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBlocks := h.State.Blocks()

	blocks := make([]block, len(dbBlocks))
	for i, dbBlock := range dbBlocks {
		blocks[i] = block{
			Height:        i,
			PrevBlockHash: dbBlock.PrevBlockHash,
			Hash:          dbBlock.Hash,
			Nonce:         dbBlock.Nonce,
			Trans:         toTxs(h.NS, dbBlock.Trans),
		}
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Balances returns the replayed balances for every account, or for the
// account named in the path by public key or name.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBalances, err := h.State.QueryBalances()
	if err != nil {
		return errs.NewTrusted(err, http.StatusConflict)
	}

	if account := web.Param(r, "account"); account != "" {
		publicKey, err := h.resolve(account)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}

		dbBalances = map[database.PublicKey]float64{
			publicKey: dbBalances[publicKey],
		}
	}

	bals := make([]balance, 0, len(dbBalances))
	for publicKey, amount := range dbBalances {
		bals = append(bals, balance{
			Account: publicKey,
			Name:    h.NS.Lookup(publicKey),
			Balance: amount,
		})
	}
	sort.Slice(bals, func(i, j int) bool { return bals[i].Account < bals[j].Account })

	resp := balances{
		LatestBlock: h.State.LatestBlock().Hash,
		Uncommitted: h.State.MempoolLength(),
		Balances:    bals,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Validate audits the current chain.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	snapshot := h.State.Snapshot()

	resp := validity{
		Height: uint64(len(snapshot.Blocks()) - 1),
		Valid:  validation.IsValidChain(snapshot),
	}

	if err := h.State.Validate(); err != nil {
		resp.Error = err.Error()
	} else {
		resp.Mineable = true
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// resolve accepts a public key or a name known to the name service.
func (h Handlers) resolve(account string) (database.PublicKey, error) {
	if publicKey, exists := h.NS.PublicKey(account); exists {
		return publicKey, nil
	}

	return database.ToPublicKey(account)
}
