package models

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
)

// AssignmentStatus tracks coursework progress.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentSubmitted AssignmentStatus = "submitted"
	AssignmentGraded    AssignmentStatus = "graded"
)

// ProfessorContact is embedded in a class schedule as JSONB.
type ProfessorContact struct {
	Name        string `json:"name" validate:"max=120"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"max=40"`
	Office      string `json:"office" validate:"max=120"`
	OfficeHours string `json:"officeHours" validate:"max=120"`
}

// Scan implements sql.Scanner.
func (p *ProfessorContact) Scan(src interface{}) error { return scanJSON(src, p) }

// Value implements driver.Valuer.
func (p ProfessorContact) Value() (driver.Value, error) { return jsonValue(p) }

// Assignment is one graded task within a class.
type Assignment struct {
	Name    string           `json:"name" validate:"required,max=200"`
	DueDate string           `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Points  int              `json:"points" validate:"min=0"`
	Status  AssignmentStatus `json:"status" validate:"omitempty,oneof=pending submitted graded"`
}

// Assignments is stored as a JSONB array.
type Assignments []Assignment

// Scan implements sql.Scanner.
func (a *Assignments) Scan(src interface{}) error { return scanJSON(src, a) }

// Value implements driver.Valuer.
func (a Assignments) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return jsonValue(a)
}

// GradeBreakdown maps a component label to its percentage weight.
type GradeBreakdown map[string]float64

// Scan implements sql.Scanner.
func (g *GradeBreakdown) Scan(src interface{}) error { return scanJSON(src, g) }

// Value implements driver.Valuer.
func (g GradeBreakdown) Value() (driver.Value, error) {
	if g == nil {
		return "{}", nil
	}
	return jsonValue(g)
}

// Total sums the weights.
func (g GradeBreakdown) Total() float64 {
	var total float64
	for _, v := range g {
		total += v
	}
	return total
}

// ClassSchedule is a course offering as shown on the class routine page.
type ClassSchedule struct {
	ID               string           `db:"id" json:"id"`
	Department       string           `db:"department" json:"department"`
	CourseCode       string           `db:"course_code" json:"courseCode"`
	Name             string           `db:"name" json:"name"`
	Description      string           `db:"description" json:"description"`
	Credits          int              `db:"credits" json:"credits"`
	Days             pq.StringArray   `db:"days" json:"days"`
	Time             string           `db:"time_slot" json:"time"`
	Location         string           `db:"location" json:"location"`
	Professor        ProfessorContact `db:"professor" json:"professor"`
	LearningOutcomes pq.StringArray   `db:"learning_outcomes" json:"learningOutcomes"`
	Materials        pq.StringArray   `db:"materials" json:"materials"`
	Textbooks        pq.StringArray   `db:"textbooks" json:"textbooks"`
	Assignments      Assignments      `db:"assignments" json:"assignments"`
	GradeBreakdown   GradeBreakdown   `db:"grade_breakdown" json:"gradeBreakdown"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updatedAt"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	ListOptions
	Department string
	Day        string
}
