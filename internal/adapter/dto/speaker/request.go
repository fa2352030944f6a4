package speaker

// NamePatternRequest is one organization introduction pattern
type NamePatternRequest struct {
	PatternID    string `json:"pattern_id,omitempty" validate:"omitempty,max=100"`
	Expression   string `json:"expression" validate:"required,max=1000"`
	CaptureGroup int    `json:"capture_group,omitempty" validate:"gte=0,lte=20"`
}

// ReplaceNamePatternsRequest replaces the organization's whole pattern set.
// An empty list clears it.
type ReplaceNamePatternsRequest struct {
	Patterns []NamePatternRequest `json:"patterns" validate:"max=50,dive"`
}

// MergeVoiceProfilesRequest folds merge_profile_id into keep_profile_id
type MergeVoiceProfilesRequest struct {
	KeepProfileID  string `json:"keep_profile_id" validate:"required,uuid"`
	MergeProfileID string `json:"merge_profile_id" validate:"required,uuid,nefield=KeepProfileID"`
}
