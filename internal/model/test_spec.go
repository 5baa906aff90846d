package model

import (
	"time"

	"github.com/google/uuid"
)

// RestrictionFlags are the client-side restrictions the proctoring UI must
// enforce during a session built from this spec.
type RestrictionFlags struct {
	CopyPaste  bool `json:"copy_paste"`
	TabSwitch  bool `json:"tab_switch"`
	RightClick bool `json:"right_click"`
	Fullscreen bool `json:"fullscreen"`
	Proctoring bool `json:"proctoring"`
}

// TestSpec describes how to assemble and govern a certification test for one
// (cert_id, difficulty) pair. Authored by the platform; consumed read-only
// by the assembler.
type TestSpec struct {
	ID                   uuid.UUID        `json:"id"`
	CertID               string           `json:"cert_id"`
	Difficulty           string           `json:"difficulty"`
	BankIDs              []uuid.UUID      `json:"bank_ids"`
	QuestionCount        int              `json:"question_count"`
	DurationMinutes      int              `json:"duration_minutes"`
	PassPercentage       int              `json:"pass_percentage"`
	Randomize            bool             `json:"randomize"`
	Restrictions         RestrictionFlags `json:"restrictions"`
	PrerequisiteCourseID *uuid.UUID       `json:"prerequisite_course_id,omitempty"`
	Active               bool             `json:"active"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// UpsertTestSpecRequest creates or replaces the spec for a
// (cert_id, difficulty) pair.
type UpsertTestSpecRequest struct {
	CertID               string           `json:"cert_id" binding:"required,min=1,max=255"`
	Difficulty           string           `json:"difficulty" binding:"required,oneof=easy medium hard"`
	BankIDs              []uuid.UUID      `json:"bank_ids" binding:"required,min=1"`
	QuestionCount        int              `json:"question_count" binding:"required,min=1,max=200"`
	DurationMinutes      int              `json:"duration_minutes" binding:"required,min=1,max=480"`
	PassPercentage       int              `json:"pass_percentage" binding:"required,min=1,max=100"`
	Randomize            bool             `json:"randomize"`
	Restrictions         RestrictionFlags `json:"restrictions"`
	PrerequisiteCourseID *uuid.UUID       `json:"prerequisite_course_id" binding:"omitempty"`
	Active               *bool            `json:"active" binding:"omitempty"`
}
