package model

import "time"

// MaterialKind distinguishes the three file-bearing content collections.
type MaterialKind string

const (
	KindNotes    MaterialKind = "notes"
	KindPYQ      MaterialKind = "pyq"
	KindSyllabus MaterialKind = "syllabus"
)

// Valid reports whether k is a known kind.
func (k MaterialKind) Valid() bool {
	switch k {
	case KindNotes, KindPYQ, KindSyllabus:
		return true
	}
	return false
}

// RequiresYear reports whether documents of this kind must carry a year.
func (k MaterialKind) RequiresYear() bool {
	return k == KindPYQ || k == KindSyllabus
}

// HasDepartment reports whether documents of this kind carry their own department reference.
func (k MaterialKind) HasDepartment() bool {
	return k == KindPYQ
}

// Label is the human-readable name used in messages.
func (k MaterialKind) Label() string {
	switch k {
	case KindNotes:
		return "notes"
	case KindPYQ:
		return "PYQ"
	case KindSyllabus:
		return "syllabus"
	}
	return string(k)
}

// Material is a Notes, PYQ or Syllabus document. It references one Subject and owns at most one stored file.
// Year is zero for notes; DepartmentID is only set for PYQs.
type Material struct {
	ID           string         `json:"id"`
	Kind         MaterialKind   `json:"kind"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Year         int            `json:"year,omitempty"`
	SubjectID    string         `json:"subjectId"`
	Subject      *SubjectRef    `json:"subject,omitempty"`
	DepartmentID string         `json:"departmentId,omitempty"`
	Department   *DepartmentRef `json:"department,omitempty"`
	FilePath     string         `json:"filePath"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}
