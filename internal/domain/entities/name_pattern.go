package entities

import (
	"time"

	"github.com/google/uuid"
)

// CustomPatternConfidence is the base confidence of every organization pattern
const CustomPatternConfidence = 0.9

// NamePattern is an organization-supplied introduction regex
type NamePattern struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	PatternID      string    `gorm:"type:varchar(100);not null" json:"pattern_id"`
	Expression     string    `gorm:"type:text;not null" json:"expression"`
	CaptureGroup   int       `gorm:"not null;default:1" json:"capture_group"`
	Position       int       `gorm:"not null;default:0" json:"position"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (NamePattern) TableName() string {
	return "org_name_patterns"
}
