package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GadgetStatus is the lifecycle state of a gadget
type GadgetStatus string

const (
	StatusAvailable      GadgetStatus = "Available"
	StatusDeployed       GadgetStatus = "Deployed"
	StatusDestroyed      GadgetStatus = "Destroyed"
	StatusDecommissioned GadgetStatus = "Decommissioned"
)

// Valid reports whether s is one of the four known statuses
func (s GadgetStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusDeployed, StatusDestroyed, StatusDecommissioned:
		return true
	}
	return false
}

// Gadget represents a tracked gadget with a generated unique codename.
// DecommissionedAt is stamped only by the decommission operation; a
// destroyed gadget carries no timestamp.
type Gadget struct {
	ID       string       `gorm:"primaryKey;type:uuid" json:"id"`
	Name     string       `gorm:"not null" json:"name"`
	Codename string       `gorm:"unique;not null" json:"codename"`
	Status   GadgetStatus `gorm:"default:'Available'" json:"status"`

	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	DecommissionedAt *time.Time `json:"decommissionedAt,omitempty"`
}

// BeforeCreate assigns a UUID primary key when none is set
func (g *Gadget) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// TableName specifies the table name for Gadget model
func (Gadget) TableName() string {
	return "gadgets"
}
