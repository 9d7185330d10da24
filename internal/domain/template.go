package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// TemplateStatus enumerates template lifecycle states.
type TemplateStatus string

const (
	TemplateActive   TemplateStatus = "active"
	TemplateArchived TemplateStatus = "archived"
)

// EmailTemplate is a reusable message body authored in MJML with Liquid
// variables. CompiledHTML is the cached output of the MJML compiler for
// the source identified by SourceChecksum; when the checksum no longer
// matches the current source the cache is stale.
type EmailTemplate struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	UserID         uuid.UUID      `json:"user_id" db:"user_id"`
	TeamID         *uuid.UUID     `json:"team_id,omitempty" db:"team_id"`
	Name           string         `json:"name" db:"name"`
	Description    string         `json:"description,omitempty" db:"description"`
	Subject        string         `json:"subject" db:"subject"`
	MJMLSource     string         `json:"mjml_source" db:"mjml_source"`
	CompiledHTML   string         `json:"compiled_html,omitempty" db:"compiled_html"`
	PlainContent   string         `json:"plain_content,omitempty" db:"plain_content"`
	SourceChecksum string         `json:"-" db:"source_checksum"`
	Status         TemplateStatus `json:"status" db:"status"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// ChecksumSource returns the checksum of the given MJML source. Stored on
// the row at compile time so staleness is a string comparison.
func ChecksumSource(src string) string {
	h := sha256.Sum256([]byte(src))
	return hex.EncodeToString(h[:])
}

// CompiledFresh reports whether the cached HTML matches the current source.
func (t *EmailTemplate) CompiledFresh() bool {
	return t.CompiledHTML != "" && t.SourceChecksum == ChecksumSource(t.MJMLSource)
}
