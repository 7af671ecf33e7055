package stats

import (
	"math"
	"sort"
	"time"

	"tally/internal/model"
)

// DailySpending groups expense amounts by calendar day using the
// record's local timestamp. Keys are formatted as YYYY-MM-DD. Days with
// no expenses do not appear; zero-filling is a presentation concern.
func DailySpending(list []model.Transaction) map[string]float64 {
	buckets := make(map[string]float64)
	for _, t := range list {
		if t.Amount >= 0 {
			continue
		}
		day := t.Date.Format("2006-01-02")
		buckets[day] += math.Abs(t.Amount)
	}
	return buckets
}

// MonthlyTotal is the expense total for one calendar month.
type MonthlyTotal struct {
	Label  string // Short month name, e.g. "Jan"
	Year   int
	Month  int // 1-12
	Amount float64
}

// MonthlySpending groups expense amounts by calendar month, returned in
// chronological order. Months with no expenses do not appear.
func MonthlySpending(list []model.Transaction) []MonthlyTotal {
	type key struct {
		year  int
		month int
	}

	buckets := make(map[key]float64)
	for _, t := range list {
		if t.Amount >= 0 {
			continue
		}
		k := key{year: t.Date.Year(), month: int(t.Date.Month())}
		buckets[k] += math.Abs(t.Amount)
	}

	totals := make([]MonthlyTotal, 0, len(buckets))
	for k, amount := range buckets {
		totals = append(totals, MonthlyTotal{
			Label:  time.Month(k.month).String()[:3],
			Year:   k.year,
			Month:  k.month,
			Amount: amount,
		})
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Year != totals[j].Year {
			return totals[i].Year < totals[j].Year
		}
		return totals[i].Month < totals[j].Month
	})

	return totals
}
