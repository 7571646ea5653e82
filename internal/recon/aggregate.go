package recon

import (
	"sort"

	"shareaudit/internal/domain"
)

// Aggregate flattens per-host records into one sequence, hosts in the order
// given. With sorted set the rows are ordered by path then principal.
func Aggregate(results []domain.HostResult, sorted bool) []domain.PermissionRecord {
	n := 0
	for _, r := range results {
		n += len(r.Records)
	}

	records := make([]domain.PermissionRecord, 0, n)
	for _, r := range results {
		records = append(records, r.Records...)
	}

	if sorted {
		SortRecords(records)
	}
	return records
}

// SortRecords orders records by path then principal, stable for equal keys
func SortRecords(records []domain.PermissionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Path != records[j].Path {
			return records[i].Path < records[j].Path
		}
		return records[i].Principal < records[j].Principal
	})
}
