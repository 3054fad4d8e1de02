// internal/steps/extract/models.go
package extract

// Result is the structured-output contract returned by the extractor,
// whether the model or the rule fallback produced it. Pointer fields
// distinguish "not mentioned" from an explicit value.
type Result struct {
	DepartureDate    *string `json:"departure_date"`
	Origin           *string `json:"origin"`
	Destination      *string `json:"destination"`
	CabinClass       *string `json:"cabin_class"`
	Duration         *int    `json:"duration"`
	FollowupQuestion *string `json:"followup_question"`
	NeedsFollowup    bool    `json:"needs_followup"`
	InfoComplete     bool    `json:"info_complete"`
}
