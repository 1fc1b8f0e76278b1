// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package privacy

import "sort"

// Record is one external observation: a source identifier and the number
// of attack events attributed to it in the queried day. Collections are
// keyed by unique identifier; insertion order carries no meaning beyond
// tie-breaking in TopContributors.
type Record struct {
	Identifier string
	Count      int64
}

// Sensitivity derives the L1 sensitivity of the "total event count"
// query under a single-record change: the maximum count across all
// records. Removing or zeroing the largest contributor is the worst-case
// effect any single identifier can have on the sum, so calibrating noise
// to this value bounds the privacy loss for every possible database, not
// just the observed one.
//
// Returns 0 for an empty or all-zero collection. A zero sensitivity is
// the degenerate-query marker: the release stage must short-circuit to
// an all-zero result instead of sampling with scale 0.
func Sensitivity(records []Record) int64 {
	var max int64
	for _, r := range records {
		if r.Count > max {
			max = r.Count
		}
	}
	return max
}

// TrueCount sums all event counts. The result is sensitive and is only
// disclosed in debug mode.
func TrueCount(records []Record) int64 {
	var sum int64
	for _, r := range records {
		sum += r.Count
	}
	return sum
}

// TopContributors returns the n records with the largest counts in
// descending order, ties broken by original collection order. The input
// is not modified.
func TopContributors(records []Record, n int) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
