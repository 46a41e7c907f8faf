package fusion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"synthkit/internal/models"
)

// highValueWeight is the extra score a record earns per populated
// high-value field, on top of the one point per populated field.
const highValueWeight = 3

// Fuser implements Service. Scoring is a pure function of record contents,
// so fusing the same sources in the same order always yields the same output.
type Fuser struct {
	highValueFields map[string]struct{}
}

// NewService creates a fusion service. Records populating any of the named
// high-value fields win conflicts against sparser duplicates.
func NewService(highValueFields []string) Service {
	return newFuser(highValueFields)
}

// newFuser creates the concrete implementation
func newFuser(highValueFields []string) *Fuser {
	fields := make(map[string]struct{}, len(highValueFields))
	for _, name := range highValueFields {
		fields[name] = struct{}{}
	}
	return &Fuser{
		highValueFields: fields,
	}
}

// Fuse merges the sources into one deduplicated list keyed by keyField.
// On a key collision the higher-scoring record survives; ties keep the
// record seen first, preserving input order.
func (f *Fuser) Fuse(ctx context.Context, sources [][]models.Record, keyField string) (*models.FusionResult, error) {
	if keyField == "" {
		return nil, models.ErrMissingKeyField
	}

	report := models.FusionReport{
		PerSource: make([]int, len(sources)),
	}

	merged := make(map[string]models.Record)
	var order []string

	for i, source := range sources {
		report.PerSource[i] = len(source)

		for _, record := range source {
			key := normalizeKey(record[keyField])
			if key == "" {
				report.SkippedNoKey++
				continue
			}

			existing, ok := merged[key]
			if !ok {
				merged[key] = record
				order = append(order, key)
				continue
			}

			report.DuplicatesRemoved++
			if f.score(record) > f.score(existing) {
				merged[key] = record
				report.ConflictsResolved++
			}
		}
	}

	records := make([]models.Record, 0, len(order))
	for _, key := range order {
		records = append(records, merged[key])
	}
	report.MergedCount = len(records)

	return &models.FusionResult{
		Records:   records,
		Report:    report,
		Timestamp: time.Now().UTC(),
	}, nil
}

// score rates a record by how much usable data it carries: one point per
// populated field, plus extra weight for populated high-value fields
func (f *Fuser) score(record models.Record) int {
	score := 0
	for field, value := range record {
		if isEmpty(value) {
			continue
		}
		score++
		if _, ok := f.highValueFields[field]; ok {
			score += highValueWeight
		}
	}
	return score
}

// normalizeKey maps a key value to its canonical form: trimmed and lowercased
func normalizeKey(value interface{}) string {
	if value == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
}

// isEmpty reports whether a field value carries no data
func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
