package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// LiteLLMURL is the URL for the LiteLLM pricing JSON.
// Exported so tests can override it via httptest.
var LiteLLMURL = "https://raw.githubusercontent.com/BerriAI/litellm/main/model_prices_and_context_window.json"

var httpClient = &http.Client{Timeout: 15 * time.Second}

type liteLLMEntry struct {
	InputCostPerToken  *float64 `json:"input_cost_per_token"`
	OutputCostPerToken *float64 `json:"output_cost_per_token"`
	CacheCreationCost  *float64 `json:"cache_creation_input_token_cost"`
	CacheReadCost      *float64 `json:"cache_read_input_token_cost"`
}

// FetchLiteLLM fetches pricing from LiteLLM's GitHub-hosted JSON and
// returns a PriceTable containing only Claude models, converted from
// per-token to per-1M-token rates. Only the scan path calls this; the
// hook path stays offline.
func FetchLiteLLM(ctx context.Context) (PriceTable, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", LiteLLMURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch litellm pricing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("litellm pricing: HTTP %d", resp.StatusCode)
	}

	var raw map[string]liteLLMEntry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode litellm pricing: %w", err)
	}

	return filterClaudeModels(raw), nil
}

func filterClaudeModels(raw map[string]liteLLMEntry) PriceTable {
	table := make(PriceTable)
	for key, entry := range raw {
		// Skip provider-prefixed variants (anthropic.claude-, vertex_ai/claude-)
		if !strings.HasPrefix(key, "claude-") {
			continue
		}
		if entry.InputCostPerToken == nil || entry.OutputCostPerToken == nil {
			continue
		}

		p := ModelPrice{
			Input:  *entry.InputCostPerToken * 1_000_000,
			Output: *entry.OutputCostPerToken * 1_000_000,
		}
		if entry.CacheCreationCost != nil {
			p.CacheCreation = *entry.CacheCreationCost * 1_000_000
		}
		if entry.CacheReadCost != nil {
			p.CacheRead = *entry.CacheReadCost * 1_000_000
		}
		table[key] = p
	}
	return table
}
