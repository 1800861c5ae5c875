package pricing

import (
	_ "embed"
	"encoding/json"
	"strings"
)

//go:embed prices.json
var defaultPricesJSON []byte

// ModelPrice holds rates in USD per 1M tokens.
type ModelPrice struct {
	Input         float64 `json:"input"`
	Output        float64 `json:"output"`
	CacheCreation float64 `json:"cache_creation"`
	CacheRead     float64 `json:"cache_read"`
}

type PriceTable map[string]ModelPrice

// LoadDefault returns the embedded price table.
func LoadDefault() (PriceTable, error) {
	var table PriceTable
	if err := json.Unmarshal(defaultPricesJSON, &table); err != nil {
		return nil, err
	}
	return table, nil
}

// Merge adds entries from other into pt. Existing keys are overwritten.
func (pt PriceTable) Merge(other PriceTable) {
	for k, v := range other {
		pt[k] = v
	}
}

// Lookup finds the price for a model, trying an exact match first and
// then the longest matching key prefix. Model identifiers usually carry
// a date suffix the table keys omit (claude-opus-4-6-20260101).
func (pt PriceTable) Lookup(model string) (ModelPrice, bool) {
	if p, ok := pt[model]; ok {
		return p, true
	}
	var bestKey string
	var best ModelPrice
	for key, p := range pt {
		if strings.HasPrefix(model, key) && len(key) > len(bestKey) {
			bestKey = key
			best = p
		}
	}
	if bestKey != "" {
		return best, true
	}
	return ModelPrice{}, false
}
