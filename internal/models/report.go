package models

import (
	"time"

	"github.com/rajivgeraev/skillswap-api/internal/store"
)

const (
	CollectionReports      = "reports"
	CollectionAdminActions = "adminActions"
)

type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusResolved ReportStatus = "resolved"
)

// Report представляет жалобу на пользователя
type Report struct {
	ID             string       `json:"id"`
	ReporterID     string       `json:"reporterId"`
	ReportedUserID string       `json:"reportedUserId"`
	Reason         string       `json:"reason"`
	Description    string       `json:"description"`
	Status         ReportStatus `json:"status"`
	CreatedAt      time.Time    `json:"createdAt"`
}

func (r Report) Fields() store.Fields {
	return store.Fields{
		"reporterId":     r.ReporterID,
		"reportedUserId": r.ReportedUserID,
		"reason":         r.Reason,
		"description":    r.Description,
		"status":         string(r.Status),
		"createdAt":      r.CreatedAt,
	}
}

func ReportFromDocument(doc store.Document) Report {
	f := doc.Fields
	return Report{
		ID:             doc.ID,
		ReporterID:     f.String("reporterId"),
		ReportedUserID: f.String("reportedUserId"),
		Reason:         f.String("reason"),
		Description:    f.String("description"),
		Status:         ReportStatus(f.String("status")),
		CreatedAt:      f.Time("createdAt"),
	}
}

// AdminAction - запись журнала действий администратора
type AdminAction struct {
	ID         string    `json:"id"`
	AdminID    string    `json:"adminId"`
	ActionType string    `json:"actionType"`
	TargetID   string    `json:"targetId"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (a AdminAction) Fields() store.Fields {
	return store.Fields{
		"adminId":    a.AdminID,
		"actionType": a.ActionType,
		"targetId":   a.TargetID,
		"details":    a.Details,
		"createdAt":  a.CreatedAt,
	}
}

func AdminActionFromDocument(doc store.Document) AdminAction {
	f := doc.Fields
	return AdminAction{
		ID:         doc.ID,
		AdminID:    f.String("adminId"),
		ActionType: f.String("actionType"),
		TargetID:   f.String("targetId"),
		Details:    f.String("details"),
		CreatedAt:  f.Time("createdAt"),
	}
}
