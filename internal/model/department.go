package model

import "time"

// Department is the root of the content hierarchy.
type Department struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DepartmentRef is the populated form of a department reference.
type DepartmentRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
