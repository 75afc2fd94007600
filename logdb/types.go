// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation"
	"github.com/vechain/delegation/thor"
)

// Event is a delegation event as stored in the journal. Amounts are never negative.
type Event struct {
	Height    uint64
	Index     uint32
	Name      string
	Delegatee thor.Address
	Delegator thor.Address // zero for delegatee wide events
	Amount    asset.Value
	Detail    string
}

func newEvent(index uint32, ev *delegation.Event) *Event {
	amount := ev.Amount
	if amount.Raw == nil {
		amount = asset.Zero(amount.Currency)
	}
	return &Event{
		Height:    ev.Height,
		Index:     index,
		Name:      ev.Name,
		Delegatee: ev.Delegatee,
		Delegator: ev.Delegator,
		Amount:    asset.NewValue(amount.Currency, amount.Raw),
		Detail:    ev.Detail,
	}
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive height range. To below From means unbounded.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria matches events on every non nil field.
type EventCriteria struct {
	Name      *string
	Delegatee *thor.Address
	Delegator *thor.Address
}

// EventFilter selects events matching any of the criteria.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
