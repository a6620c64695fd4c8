// Package trade arranges and settles exchanges of wares for money between two
// entities. A trade reserves on three ledgers at once under one transaction id:
// the buyer's money, the buyer's free space and the seller's wares.
package trade

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ledger"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/components"
)

var (
	ErrSelfTrade      = errors.New("trade: buyer and seller are the same entity")
	ErrNothingToTrade = errors.New("trade: no wares")
	ErrUnknownDeal    = errors.New("trade: no open allocations for transaction")
)

// Offer describes a proposed exchange. Price is the total paid for Wares.
type Offer struct {
	Buyer  ecs.EntityID
	Seller ecs.EntityID
	Wares  ledger.Cargo
	Price  float64
}

// Deal is an arranged trade.
type Deal struct {
	Transaction string
	Buyer       ecs.EntityID
	Seller      ecs.EntityID
	Wares       ledger.Cargo
	Price       float64
}

type party struct {
	entity  *ecs.Entity
	budget  *components.Budget
	storage *components.Storage
}

func resolve(w *ecs.World, id ecs.EntityID) (party, error) {
	e, ok := w.Entity(id)
	if !ok {
		return party{}, fmt.Errorf("trade: entity %d: %w", id, ecs.ErrEntityNotFound)
	}
	if _, err := e.RequireComponents(components.KindBudget, components.KindStorage); err != nil {
		return party{}, err
	}
	return party{
		entity:  e,
		budget:  ecs.MustGet[*components.Budget](e),
		storage: ecs.MustGet[*components.Storage](e),
	}, nil
}

// Arrange reserves money and space on the buyer and wares on the seller. Either
// all three reservations succeed or none is left behind.
func Arrange(w *ecs.World, offer Offer) (Deal, error) {
	if offer.Buyer == offer.Seller {
		return Deal{}, ErrSelfTrade
	}
	if offer.Wares.Total() == 0 {
		return Deal{}, ErrNothingToTrade
	}
	buyer, err := resolve(w, offer.Buyer)
	if err != nil {
		return Deal{}, err
	}
	seller, err := resolve(w, offer.Seller)
	if err != nil {
		return Deal{}, err
	}

	tx := uuid.NewString()
	tick := w.Tick()
	toSeller := ledger.Meta{Transaction: tx, Counterparty: offer.Seller}
	toBuyer := ledger.Meta{Transaction: tx, Counterparty: offer.Buyer}

	money, err := buyer.budget.Reserve(ledger.Request[float64]{Amount: offer.Price, Meta: toSeller, Issued: tick}, nil)
	if err != nil {
		return Deal{}, fmt.Errorf("trade: buyer money: %w", err)
	}
	space, err := buyer.storage.ReserveIncoming(offer.Wares.Total(), toSeller, tick)
	if err != nil {
		_, rerr := buyer.budget.Release(money.ID, "trade rollback")
		return Deal{}, errors.Join(fmt.Errorf("trade: buyer space: %w", err), rerr)
	}
	if _, err := seller.storage.ReserveOutgoing(offer.Wares, toBuyer, tick); err != nil {
		_, rerr1 := buyer.budget.Release(money.ID, "trade rollback")
		_, rerr2 := buyer.storage.Space.Release(space.ID, "trade rollback")
		return Deal{}, errors.Join(fmt.Errorf("trade: seller wares: %w", err), rerr1, rerr2)
	}

	return Deal{
		Transaction: tx,
		Buyer:       offer.Buyer,
		Seller:      offer.Seller,
		Wares:       offer.Wares,
		Price:       offer.Price,
	}, nil
}

// Settle performs the exchange of an arranged deal: the money and the wares
// change hands and every reservation of the transaction is consumed.
func Settle(w *ecs.World, tx string, buyerID, sellerID ecs.EntityID) error {
	buyer, err := resolve(w, buyerID)
	if err != nil {
		return err
	}
	seller, err := resolve(w, sellerID)
	if err != nil {
		return err
	}
	money := buyer.budget.ByTransaction(tx)
	space := buyer.storage.Space.ByTransaction(tx)
	wares := seller.storage.Wares.ByTransaction(tx)
	if len(money) != 1 || len(space) != 1 || len(wares) != 1 {
		return fmt.Errorf("%w %s", ErrUnknownDeal, tx)
	}
	if buyer.budget.Total() < money[0].Amount {
		return fmt.Errorf("trade: settle %s: %w", tx, ledger.ErrNegativeTotal)
	}
	if space[0].Amount != wares[0].Amount.Total() {
		return fmt.Errorf("trade: settle %s: %w", tx, ledger.ErrInvalidAmount)
	}

	// seller side first: goods leave and their price arrives
	cargo, err := seller.storage.Dispatch(wares[0].ID)
	if err != nil {
		return err
	}
	if _, err := buyer.budget.Consume(money[0].ID, "trade settled"); err != nil {
		return err
	}
	if err := seller.budget.ChangeTotal(money[0].Amount); err != nil {
		return err
	}
	return buyer.storage.Receive(space[0].ID, cargo)
}

// Cancel releases every reservation of the transaction held by either party.
// Parties that no longer exist are skipped.
func Cancel(w *ecs.World, tx string, parties ...ecs.EntityID) int {
	n := 0
	for _, id := range parties {
		if e, ok := w.Entity(id); ok {
			n += releaseTransaction(e, tx, "trade cancelled")
		}
	}
	return n
}

// ReleaseFor frees every allocation tied to the removed entity: its own
// transaction allocations, and on every other entity in holders the
// allocations naming it as counterparty or sharing one of its transactions.
func ReleaseFor(removed *ecs.Entity, holders []*ecs.Entity) int {
	txs := make(map[string]struct{})
	n := 0
	for _, a := range ledgersOf(removed) {
		n += a.release(func(m ledger.Meta) bool {
			if m.Transaction != "" {
				txs[m.Transaction] = struct{}{}
			}
			return m.Transaction != "" || m.Counterparty != 0
		}, "party removed")
	}
	for _, h := range holders {
		if h.ID() == removed.ID() {
			continue
		}
		for _, a := range ledgersOf(h) {
			n += a.release(func(m ledger.Meta) bool {
				_, shared := txs[m.Transaction]
				return m.Counterparty == removed.ID() || (m.Transaction != "" && shared)
			}, "counterparty removed")
		}
	}
	return n
}

func releaseTransaction(e *ecs.Entity, tx string, reason string) int {
	n := 0
	for _, a := range ledgersOf(e) {
		n += a.release(func(m ledger.Meta) bool { return m.Transaction == tx }, reason)
	}
	return n
}

// releaser erases the amount type of a ledger.
type releaser struct {
	release func(pred func(ledger.Meta) bool, reason string) int
}

func ledgersOf(e *ecs.Entity) []releaser {
	var out []releaser
	if b, ok := ecs.Get[*components.Budget](e); ok {
		out = append(out, releaserOf(b.Budget))
	}
	if s, ok := ecs.Get[*components.Storage](e); ok {
		out = append(out, releaserOf(s.Wares), releaserOf(s.Space))
	}
	return out
}

func releaserOf[A any](l *ledger.Ledger[A]) releaser {
	return releaser{release: func(pred func(ledger.Meta) bool, reason string) int {
		return len(l.ReleaseWhere(func(a ledger.Allocation[A]) bool { return pred(a.Meta) }, reason))
	}}
}
