// Package vision is the boundary to the external image-inference
// collaborator. It categorizes waste photos and compares before/after
// evidence. Calls are long-latency, so callers run them off the request
// path; every call has a per-attempt timeout and a bounded retry budget.
package vision

import "context"

// Waste categories the collaborator can return
const (
	CategoryPlastic = "plastic"
	CategoryOrganic = "organic"
	CategoryMetal   = "metal"
	CategoryGlass   = "glass"
	CategoryEWaste  = "e-waste"
	CategoryMixed   = "mixed"
	CategoryOther   = "other"
)

// Classification is the category assigned to a waste photo
type Classification struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Comparison is the before/after cleanup assessment. CleanScore is the
// model's belief that the site was cleaned, in [0,1].
type Comparison struct {
	CleanScore float64 `json:"cleanScore"`
}

// Classifier abstracts the inference collaborator so a concrete model
// service can be swapped without touching the pipeline.
type Classifier interface {
	Classify(ctx context.Context, imageURL string) (*Classification, error)
	CompareCleanup(ctx context.Context, beforeURL, afterURL string) (*Comparison, error)
}

// KnownCategory reports whether the collaborator returned a category we track
func KnownCategory(category string) bool {
	switch category {
	case CategoryPlastic, CategoryOrganic, CategoryMetal, CategoryGlass, CategoryEWaste, CategoryMixed, CategoryOther:
		return true
	}
	return false
}
