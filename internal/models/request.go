// Package models contains data structures for the application's domain models.
package models

import "time"

// RequestStatus defines lifecycle states for mentor requests.
type RequestStatus string

const (
	// RequestStatusPending indicates the request is waiting for a mentor.
	RequestStatusPending RequestStatus = "pending"
	// RequestStatusAccepted indicates a mentor has claimed the request.
	RequestStatusAccepted RequestStatus = "accepted"
)

// Responder identifies the mentor who claimed a request.
type Responder struct {
	ID          string `json:"id"`
	Tag         string `json:"tag"`
	DisplayName string `json:"name"`
}

// Request is a mentor help request submitted by a team.
//
// The accepted_* columns are either all unset (pending) or all set
// (accepted); TryAccept on the store is the only code path that writes them.
type Request struct {
	ID            string        `gorm:"primaryKey;size:36" json:"id"`
	TeamName      string        `gorm:"size:120;not null" json:"team_name"`
	TableNumber   string        `gorm:"size:40;not null" json:"table_number"`
	QueryCategory string        `gorm:"size:80;not null" json:"query_category"`
	Details       string        `gorm:"type:text" json:"details"`
	Status        RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	AcceptedByID  string     `gorm:"size:40" json:"accepted_by_id,omitempty"`
	AcceptedByTag string     `gorm:"size:120" json:"accepted_by_tag,omitempty"`
	AcceptedBy    string     `gorm:"size:120" json:"accepted_by,omitempty"`
	AcceptedAt    *time.Time `json:"accepted_at,omitempty"`

	// RenderedMessage is the exact text sent to the chat channel at creation
	// time. The claim-side message edit appends to it rather than
	// reformatting, so it must survive as written.
	RenderedMessage string `gorm:"type:text" json:"-"`
	ChannelID       string `gorm:"size:40" json:"-"`
	MessageID       string `gorm:"size:40" json:"-"`

	// DispatchFailed marks a request whose chat notification could not be
	// delivered. The request stays queryable but has no claim control.
	DispatchFailed bool `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Request) TableName() string {
	return "mentor_requests"
}

// Accepted reports whether the request has been claimed.
func (r *Request) Accepted() bool {
	return r.Status == RequestStatusAccepted
}

// AcceptorName returns the best display name for the mentor who claimed the
// request, falling back through tag to a generic label.
func (r *Request) AcceptorName() string {
	if r.AcceptedBy != "" {
		return r.AcceptedBy
	}
	if r.AcceptedByTag != "" {
		return r.AcceptedByTag
	}
	return "another mentor"
}

// RequestSnapshot is the externally visible status view of a request,
// returned by the status query endpoint.
type RequestSnapshot struct {
	RequestID      string     `json:"requestId"`
	Status         RequestStatus `json:"status"`
	AcceptedBy     *Responder `json:"acceptedBy,omitempty"`
	AcceptedAt     *time.Time `json:"acceptedAt,omitempty"`
	TeamName       string     `json:"teamName"`
	TableNumber    string     `json:"tableNumber"`
	QueryCategory  string     `json:"queryCategory"`
	Details        string     `json:"details"`
	DispatchFailed bool       `json:"dispatchFailed,omitempty"`
}

// Snapshot builds the external status view from the request.
func (r *Request) Snapshot() *RequestSnapshot {
	snap := &RequestSnapshot{
		RequestID:      r.ID,
		Status:         r.Status,
		AcceptedAt:     r.AcceptedAt,
		TeamName:       r.TeamName,
		TableNumber:    r.TableNumber,
		QueryCategory:  r.QueryCategory,
		Details:        r.Details,
		DispatchFailed: r.DispatchFailed,
	}
	if r.Accepted() {
		snap.AcceptedBy = &Responder{
			ID:          r.AcceptedByID,
			Tag:         r.AcceptedByTag,
			DisplayName: r.AcceptedBy,
		}
	}
	return snap
}
