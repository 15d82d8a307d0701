package main

import (
	"fmt"
	"strings"
	"time"
)

// Assignment is a posting on the marketplace. The client only ever holds a
// snapshot fetched from the backend; it never mutates one.
type Assignment struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	StartAt    string `json:"startAt"`
	EndAt      string `json:"endAt"`
	AdminName  string `json:"adminName"`
	AdminEmail string `json:"adminEmail"`
	AssignImage string `json:"assignImage,omitempty"`
	EndCheck   bool   `json:"endCheck"`
}

// dateUndecided is shown for assignments whose schedule has no date yet.
const dateUndecided = "미정"

// formatAssignDate renders a backend timestamp for display, falling back to
// the literal undecided marker when the field is empty or unparseable.
func formatAssignDate(raw string) string {
	if raw == "" {
		return dateUndecided
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}

// contextBlock serializes the assignment snapshot into the plain-text block
// sent to the answer endpoint as assignmentContent.
func (a Assignment) contextBlock() string {
	var b strings.Builder
	b.WriteString("과제 제목: " + a.Title + "\n")
	b.WriteString("과제 내용: " + a.Content + "\n")
	b.WriteString("시작일: " + formatAssignDate(a.StartAt) + "\n")
	b.WriteString("마감일: " + formatAssignDate(a.EndAt) + "\n")
	b.WriteString(fmt.Sprintf("담당자: %s (%s)", a.AdminName, a.AdminEmail))
	return b.String()
}

// Expired reports whether the assignment's deadline has passed. Assignments
// without a deadline never expire.
func (a Assignment) Expired() bool {
	if a.EndAt == "" {
		return false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, a.EndAt); err == nil {
			return t.Before(time.Now())
		}
	}
	return false
}

// Closed reports whether the posting no longer accepts proposals.
func (a Assignment) Closed() bool {
	return a.EndCheck || a.Expired()
}

// Proposal is a submission produced from a finalized conversation summary.
// Owned by the backend; the client creates and lists them.
type Proposal struct {
	ID           int    `json:"id"`
	AssignmentID int    `json:"assignmentId"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Status       string `json:"status"`
	AuthorName   string `json:"authorName,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}
