package request

import (
	"sort"
	"time"
)

// One group-by-with-optional-sum primitive serves the dashboards of
// both entities; callers supply the grouping key and the summed value.
// Everything is computed from a scoped projection of rows on each call:
// result sets are bounded by one organization's request volume, so
// there is no caching or incremental maintenance.

type Group struct {
	Key   string
	Count int64
	Sum   float64
}

func GroupBy[T any](rows []T, key func(T) string, amount func(T) float64) []Group {
	byKey := make(map[string]*Group)
	for _, row := range rows {
		k := key(row)
		g, ok := byKey[k]
		if !ok {
			g = &Group{Key: k}
			byKey[k] = g
		}
		g.Count++
		if amount != nil {
			g.Sum += amount(row)
		}
	}

	groups := make([]Group, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

type MonthGroup struct {
	Year  int
	Month int
	Count int64
	Sum   float64
}

const MonthlyBucketCap = 12

// GroupByMonth buckets rows by (year, month) of their timestamp,
// ascending chronologically, keeping only the most recent maxBuckets.
func GroupByMonth[T any](rows []T, at func(T) time.Time, amount func(T) float64, maxBuckets int) []MonthGroup {
	type ym struct{ year, month int }
	byMonth := make(map[ym]*MonthGroup)
	for _, row := range rows {
		t := at(row)
		k := ym{t.Year(), int(t.Month())}
		g, ok := byMonth[k]
		if !ok {
			g = &MonthGroup{Year: k.year, Month: k.month}
			byMonth[k] = g
		}
		g.Count++
		if amount != nil {
			g.Sum += amount(row)
		}
	}

	groups := make([]MonthGroup, 0, len(byMonth))
	for _, g := range byMonth {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Year != groups[j].Year {
			return groups[i].Year < groups[j].Year
		}
		return groups[i].Month < groups[j].Month
	})

	if maxBuckets > 0 && len(groups) > maxBuckets {
		groups = groups[len(groups)-maxBuckets:]
	}
	return groups
}
