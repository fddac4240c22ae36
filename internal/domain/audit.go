package domain

import "time"

// AuditLog records a request or a blueprint mutation.
type AuditLog struct {
	ID          string    `json:"id"           db:"id"`
	RequestID   string    `json:"request_id"   db:"request_id"`
	Action      string    `json:"action"       db:"action"`
	BlueprintID string    `json:"blueprint_id" db:"blueprint_id"`
	Path        string    `json:"path"         db:"path"`
	Details     string    `json:"details"      db:"details"` // JSON blob
	IP          string    `json:"ip"           db:"ip"`
	UserAgent   string    `json:"user_agent"   db:"user_agent"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
}

// Audit action constants.
const (
	AuditActionHTTPRequest = "http_request"
	AuditActionChat        = "chat_message"
	AuditActionEditConfirm = "edit_confirm"
	AuditActionIndex       = "blueprint_index"
	AuditActionMCPCall     = "mcp_call"
)
