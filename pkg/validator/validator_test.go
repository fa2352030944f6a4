package validator

import (
	"strings"
	"testing"
)

type sample struct {
	OrganizationID string   `json:"organization_id" validate:"required,uuid"`
	Emails         []string `json:"calendar_emails" validate:"omitempty,dive,email"`
	Keep           string   `json:"keep"`
	Merge          string   `json:"merge" validate:"omitempty,nefield=Keep"`
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		in      sample
		wantErr string
	}{
		{"valid", sample{OrganizationID: "5b8f5a3e-1f7a-4c1e-9d53-3c1c2f3c8c11"}, ""},
		{"missing org", sample{}, "organization_id is required"},
		{"bad uuid", sample{OrganizationID: "nope"}, "organization_id must be a valid UUID"},
		{"bad email", sample{OrganizationID: "5b8f5a3e-1f7a-4c1e-9d53-3c1c2f3c8c11", Emails: []string{"x"}}, "calendar_emails[0] must be a valid email"},
		{"same ids", sample{OrganizationID: "5b8f5a3e-1f7a-4c1e-9d53-3c1c2f3c8c11", Keep: "a", Merge: "a"}, "merge must differ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.in)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
		})
	}
}
