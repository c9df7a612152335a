package model

import "time"

// Subscriber is a newsletter signup.
type Subscriber struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats holds document counts across collections.
type Stats struct {
	Users       int `json:"users"`
	Notes       int `json:"notes"`
	Departments int `json:"departments"`
	Subjects    int `json:"subjects"`
	PYQs        int `json:"pyqs"`
	Syllabus    int `json:"syllabus"`
}
