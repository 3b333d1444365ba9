package analytics

import (
	"github.com/shopspring/decimal"
)

type Statistics struct {
	AverageLatencyMs   float64 `json:"averageLatencyMs"`
	SuccessRatePercent float64 `json:"successRatePercent"`
}

// ComputeStatistics averages latencyTotalMs over every record, so records
// without a latency count as 0 but still dilute the mean.
func ComputeStatistics(records []Record) Statistics {
	total := len(records)
	if total == 0 {
		return Statistics{}
	}

	sum := decimal.Zero
	successes := 0
	for _, r := range records {
		sum = sum.Add(decimal.NewFromFloat(r.Latency.TotalMs))
		if IsSuccess(r.StatusCode) {
			successes++
		}
	}

	return Statistics{
		AverageLatencyMs:   sum.Div(decimal.NewFromInt(int64(total))).Round(2).InexactFloat64(),
		SuccessRatePercent: percentage(successes, total),
	}
}

func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// percentage returns count/total*100 rounded half away from zero to two
// decimals. Callers guarantee total > 0.
func percentage(count, total int) float64 {
	return decimal.NewFromInt(int64(count)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2).
		InexactFloat64()
}
