// Package model defines the GORM tables used by the database-backed stores.
package model

import (
	"time"

	"gorm.io/datatypes"
)

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Blob{},
}

// Blob is one stored board document, keyed by name.
type Blob struct {
	Name      string         `json:"name" gorm:"primaryKey;size:128"`
	Value     datatypes.JSON `json:"value" gorm:"not null"`
	Revision  uint           `json:"revision" gorm:"not null;default:1"` // Incremented on every overwrite
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (*Blob) TableName() string {
	return "board_blobs"
}
