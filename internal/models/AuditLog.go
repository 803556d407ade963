package models

import "gorm.io/datatypes"

// AuditLog is append-only. A nil ActorID marks a system action.
type AuditLog struct {
	Base
	ActorID     *string           `json:"actor_id" gorm:"type:uuid;index"`
	Action      string            `json:"action" gorm:"index;not null"`
	TargetTable string            `json:"target_table"`
	TargetID    *string           `json:"target_id" gorm:"index"`
	Metadata    datatypes.JSONMap `json:"metadata"`
}

func NewAudit(actorID *string, action, table, targetID string, metadata map[string]any) AuditLog {
	entry := AuditLog{
		ActorID:     actorID,
		Action:      action,
		TargetTable: table,
		Metadata:    datatypes.JSONMap(metadata),
	}
	if targetID != "" {
		entry.TargetID = &targetID
	}
	return entry
}
