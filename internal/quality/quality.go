// Package quality finds duplicate and incomplete watch records.
package quality

import (
	"strings"

	"watchflip/internal/domain"
	"watchflip/internal/metrics"
)

const noRef = "no-ref"

// Issue strings shown next to a flagged record.
const (
	IssueMissingBrand = "Missing brand"
	IssueMissingModel = "Missing model"
	IssueMissingDate  = "Missing purchase date"
	IssueNoRevenue    = "No revenue estimates"
	IssueNoImages     = "No images"
	IssueNoCondition  = "No condition notes"
	IssueInvalidPrice = "Invalid purchase price"
)

type DuplicateGroup struct {
	Key     string         `json:"key"`
	Watches []domain.Watch `json:"watches"`
}

// DuplicateKey normalises brand, model and reference number.
func DuplicateKey(w domain.Watch) string {
	ref := strings.ToLower(strings.TrimSpace(w.ReferenceNumber))
	if ref == "" {
		ref = noRef
	}
	return strings.ToLower(strings.TrimSpace(w.Brand)) + "_" +
		strings.ToLower(strings.TrimSpace(w.Model)) + "_" + ref
}

// Duplicates returns groups with more than one member, in first-seen order.
func Duplicates(ws []domain.Watch) []DuplicateGroup {
	idx := map[string]int{}
	var groups []DuplicateGroup
	for _, w := range ws {
		k := DuplicateKey(w)
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, DuplicateGroup{Key: k})
		}
		groups[i].Watches = append(groups[i].Watches, w)
	}
	out := groups[:0]
	for _, g := range groups {
		if len(g.Watches) > 1 {
			out = append(out, g)
		}
	}
	return out
}

type Finding struct {
	Watch  domain.Watch `json:"watch"`
	Issues []string     `json:"issues"`
}

// Issues lists what is missing or invalid on w.
func Issues(w domain.Watch) []string {
	var out []string
	if strings.TrimSpace(w.Brand) == "" {
		out = append(out, IssueMissingBrand)
	}
	if strings.TrimSpace(w.Model) == "" {
		out = append(out, IssueMissingModel)
	}
	if w.PurchaseDate == nil || w.PurchaseDate.IsZero() {
		out = append(out, IssueMissingDate)
	}
	if !metrics.HasRevenueEstimate(w) {
		out = append(out, IssueNoRevenue)
	}
	if len(w.Images) == 0 {
		out = append(out, IssueNoImages)
	}
	if strings.TrimSpace(w.ConditionNotes) == "" {
		out = append(out, IssueNoCondition)
	}
	if !w.PurchasePrice.IsPositive() {
		out = append(out, IssueInvalidPrice)
	}
	return out
}

// Check omits watches with no issues.
func Check(ws []domain.Watch) []Finding {
	var out []Finding
	for _, w := range ws {
		if issues := Issues(w); len(issues) > 0 {
			out = append(out, Finding{Watch: w, Issues: issues})
		}
	}
	return out
}
