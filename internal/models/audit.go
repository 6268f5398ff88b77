package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssociationEvent is one audited state transition of a connection
// context: an association attempt, a configuration verdict, or a
// teardown, surfaced by the admin API's association history endpoint.
type AssociationEvent struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ConnectionID   uuid.UUID `gorm:"type:uuid;not null;index" json:"connection_id"`
	SystemID       string    `gorm:"type:varchar(255);index" json:"system_id"`
	ConfigReportID uint16    `json:"config_report_id"`
	FromState      string    `gorm:"type:varchar(40)" json:"from_state"`
	ToState        string    `gorm:"type:varchar(40);index" json:"to_state"`
	Detail         string    `gorm:"type:text" json:"detail,omitempty"`
	CreatedAt      time.Time `gorm:"index" json:"timestamp"`
}

func (AssociationEvent) TableName() string { return "association_events" }

func (a *AssociationEvent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
