// Package models contains domain types for dds-engine.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProjectState is the lifecycle state of a project.
// Deleted projects are hidden from listings but kept addressable by id.
type ProjectState string

const (
	ProjectStateActive  ProjectState = "active"
	ProjectStateDeleted ProjectState = "deleted"
)

// Project represents a project in the system.
type Project struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	PIAffiliate JSONBMap     `json:"pi_affiliate"`
	CreatorID   uuid.UUID    `json:"creator_id"`
	State       ProjectState `json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IsDeleted reports whether the project has been soft-deleted.
func (p *Project) IsDeleted() bool {
	return p.State == ProjectStateDeleted
}

// JSONBMap is a map type that handles PostgreSQL JSONB serialization.
type JSONBMap map[string]interface{}

// Value implements driver.Valuer for database serialization.
func (j JSONBMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for database deserialization.
func (j *JSONBMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONBMap", value)
	}

	return json.Unmarshal(bytes, j)
}
