package model

// Side is the direction of an open position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// EntrySide returns the order side that opened a position with this side.
func (s Side) EntrySide() Signal {
	if s == SideLong {
		return SignalBuy
	}
	return SignalSell
}

// Position is one open position. A nil *Position means flat — the struct
// exists only while a position is open, so quantity and prices are always
// populated.
type Position struct {
	Side        Side    `json:"side"`
	Qty         float64 `json:"qty"`
	EntryPrice  float64 `json:"entry_price"`
	StopPrice   float64 `json:"stop_price"` // ratchets only in the position's favor
	OpenedAtBar uint64  `json:"opened_at_bar"`
}
