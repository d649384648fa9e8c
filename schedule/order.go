/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package schedule

import (
	"encoding/json"
	"fmt"
)

// OrderKind tags the variant of a StartingOrder.
type OrderKind int

const (
	OrderDefault OrderKind = iota
	OrderTrack
	OrderNone
)

func (k OrderKind) String() string {
	switch k {
	case OrderDefault:
		return "Default"
	case OrderTrack:
		return "Track"
	case OrderNone:
		return "None"
	default:
		return "?"
	}
}

// ParseOrderKind maps the ordering-kind token used in schedule configuration
// to an OrderKind.
func ParseOrderKind(s string) (OrderKind, error) {
	switch s {
	case "Default":
		return OrderDefault, nil
	case "Track":
		return OrderTrack, nil
	case "None":
		return OrderNone, nil
	}
	return OrderNone, fmt.Errorf("%w: %q", ErrUnknownOrderKind, s)
}

func (k OrderKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *OrderKind) UnmarshalText(b []byte) error {
	v, err := ParseOrderKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// StartingOrder assigns athletes to positions for a discipline. Athletes is
// set for OrderDefault, Runs for OrderTrack and neither for OrderNone.
type StartingOrder struct {
	Kind     OrderKind     `json:"kind"`
	Athletes []RosterEntry `json:"athletes,omitempty"`
	Runs     []Run         `json:"runs,omitempty"`
}

func NewDefaultOrder(athletes []RosterEntry) StartingOrder {
	return StartingOrder{Kind: OrderDefault, Athletes: cloneEntries(athletes)}
}

func NewTrackOrder(runs []Run) StartingOrder {
	return StartingOrder{Kind: OrderTrack, Runs: cloneRuns(runs)}
}

func NoOrder() StartingOrder {
	return StartingOrder{Kind: OrderNone}
}

// Clone returns a deep copy.
func (o StartingOrder) Clone() StartingOrder {
	return StartingOrder{
		Kind:     o.Kind,
		Athletes: cloneEntries(o.Athletes),
		Runs:     cloneRuns(o.Runs),
	}
}

// UnmarshalJSON drops the payload that does not belong to the decoded kind.
func (o *StartingOrder) UnmarshalJSON(data []byte) error {
	type Alias StartingOrder
	aux := (*Alias)(o)
	if err := json.Unmarshal(data, aux); err != nil {
		return fmt.Errorf("StartingOrder unmarshal: %w", err)
	}
	switch o.Kind {
	case OrderDefault:
		o.Runs = nil
	case OrderTrack:
		o.Athletes = nil
	default:
		o.Athletes = nil
		o.Runs = nil
	}
	return nil
}
