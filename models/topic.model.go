package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Topic represents a node in the topic hierarchy. Path is the materialized
// list of slugs from the root down to this topic and is maintained by the
// topic controller on every create, rename and reparent.
type Topic struct {
	gorm.Model
	Name        string                      `json:"name" gorm:"not null"`
	Description string                      `json:"description"`
	Slug        string                      `json:"slug" gorm:"uniqueIndex"`
	ParentID    *uint                       `json:"parent_id" gorm:"index"`
	Path        datatypes.JSONSlice[string] `json:"path"`
	SortOrder   int                         `json:"sort_order" gorm:"default:0"`
	CreatedBy   string                      `json:"created_by" gorm:"index;not null"`
}
