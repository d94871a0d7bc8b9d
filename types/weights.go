package types

import (
	"encoding/json"
	"strconv"
)

// WeightMap is a ticker-keyed set of allocation weights. It serializes as
// decimal strings with three fractional digits rather than raw JSON
// numbers, so a fraction like 0.1 round-trips exactly instead of through
// binary-float formatting.
type WeightMap map[string]float64

func (w WeightMap) MarshalJSON() ([]byte, error) {
	strs := make(map[string]string, len(w))
	for ticker, weight := range w {
		strs[ticker] = strconv.FormatFloat(weight, 'f', 3, 64)
	}
	return json.Marshal(strs)
}

func (w *WeightMap) UnmarshalJSON(data []byte) error {
	var strs map[string]string
	if err := json.Unmarshal(data, &strs); err != nil {
		return err
	}
	out := make(WeightMap, len(strs))
	for ticker, s := range strs {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		out[ticker] = f
	}
	*w = out
	return nil
}
