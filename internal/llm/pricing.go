package llm

// modelRates holds USD prices per million tokens.
type modelRates struct {
	Input  float64
	Output float64
}

var rateTable = map[string]modelRates{
	"gpt-5":             {Input: 1.25, Output: 10.00},
	"gpt-5-mini":        {Input: 0.25, Output: 2.00},
	"gpt-5-nano":        {Input: 0.05, Output: 0.40},
	"gpt-5-chat-latest": {Input: 1.25, Output: 10.00},
	"gpt-4.1":           {Input: 2.00, Output: 8.00},
	"gpt-4.1-mini":      {Input: 0.40, Output: 1.60},
	"gpt-4.1-nano":      {Input: 0.10, Output: 0.40},
	"gpt-4o":            {Input: 2.50, Output: 10.00},
	"gpt-4o-mini":       {Input: 0.15, Output: 0.60},
	"o1":                {Input: 15.00, Output: 60.00},
	"o3":                {Input: 2.00, Output: 8.00},
	"gpt-3.5-turbo":     {Input: 0.50, Output: 1.50},
	"gpt-4":             {Input: 30.00, Output: 60.00},
}

func ratesFor(model string) modelRates {
	if r, ok := rateTable[model]; ok {
		return r
	}
	return rateTable[DefaultModel]
}

// Cost estimates the USD cost of a call from its total token count. Unknown
// models are billed at the default model's rates.
func Cost(model string, totalTokens int) float64 {
	if totalTokens <= 0 {
		return 0
	}
	r := ratesFor(model)
	return float64(totalTokens) / 1_000_000 * (r.Input + r.Output)
}
