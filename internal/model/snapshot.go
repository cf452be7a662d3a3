package model

import (
	"encoding/json"
	"time"
)

// TickerSnapshot bundles every derived series the dashboard renders for a
// single ticker. All series are chronological and positionally aligned to
// Dates.
type TickerSnapshot struct {
	Ticker string      `json:"ticker"`
	Dates  []time.Time `json:"dates"`

	Close  Series  `json:"close"`
	Volume []int64 `json:"volume"`

	RSI Series `json:"rsi"`

	PercentK Series        `json:"percent_k"`
	PercentD Series        `json:"percent_d"`
	Status   []StochStatus `json:"status"`

	MFI Series `json:"mfi"`

	MACD   Series `json:"macd"`
	Signal Series `json:"signal"`

	CAGR CAGRByYear `json:"cagr"`

	Volatility []VolatilitySample `json:"volatility"`

	BullDiv     []bool            `json:"bull_div"`
	BearDiv     []bool            `json:"bear_div"`
	Divergences []DivergenceEvent `json:"divergences"`

	Patterns []PatternFlags `json:"patterns"`
}

// JSON encodes the snapshot. NaN positions come out as nulls via Series
// and Float marshaling.
func (t *TickerSnapshot) JSON() ([]byte, error) {
	return json.Marshal(t)
}

// Snapshot is the full recomputation result for one price table.
type Snapshot struct {
	ComputedAt time.Time                  `json:"computed_at"`
	Tickers    map[string]*TickerSnapshot `json:"tickers"`
}
