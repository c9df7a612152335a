package model

import "time"

// Subject belongs to exactly one Department.
// Department and CreatedBy are filled on reads; CreatedByID is empty when the creator is unknown.
type Subject struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	DepartmentID string         `json:"departmentId"`
	Department   *DepartmentRef `json:"department,omitempty"`
	CreatedByID  string         `json:"-"`
	CreatedBy    *UserRef       `json:"createdBy,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// SubjectRef is the populated form of a subject reference.
type SubjectRef struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Department *DepartmentRef `json:"department,omitempty"`
}
