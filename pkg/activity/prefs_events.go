package activity

import (
	"strings"
	"time"
)

const (
	VerbLoaded        = "prefs.loaded"
	VerbSaved         = "prefs.saved"
	VerbWriteFailed   = "prefs.write_failed"
	VerbFieldRejected = "prefs.field_rejected"

	ObjectDocument = "prefs.document"
	ObjectField    = "prefs.field"
)

// DocumentEventInput describes the common fields for document lifecycle events.
type DocumentEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Document   string
	SnapshotID string
	Format     string
	Version    int
	Fields     []string
	Skipped    []string
	Bytes      int
	Duration   time.Duration
	Err        error
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// FieldEventInput describes a single field that was rejected during load.
type FieldEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Document   string
	Field      string
	Reason     error
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildLoadedEvent reports the completion of the startup load.
func BuildLoadedEvent(input DocumentEventInput) Event {
	return buildDocumentEvent(VerbLoaded, input)
}

// BuildSavedEvent reports a completed write.
func BuildSavedEvent(input DocumentEventInput) Event {
	return buildDocumentEvent(VerbSaved, input)
}

// BuildWriteFailedEvent reports a failed write that will be retried.
func BuildWriteFailedEvent(input DocumentEventInput) Event {
	return buildDocumentEvent(VerbWriteFailed, input)
}

// BuildFieldRejectedEvent reports a persisted field that could not be applied.
func BuildFieldRejectedEvent(input FieldEventInput) Event {
	metadata := cloneMap(input.Metadata)
	document := strings.TrimSpace(input.Document)
	if document != "" {
		metadata = ensureMetadata(metadata)
		metadata["document"] = document
	}
	if input.Reason != nil {
		metadata = ensureMetadata(metadata)
		metadata["reason"] = input.Reason.Error()
	}

	objectID := strings.TrimSpace(input.Field)
	if objectID == "" {
		objectID = ObjectField
	}
	if document != "" {
		objectID = document + "." + objectID
	}

	return Event{
		Verb:       VerbFieldRejected,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectField,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func buildDocumentEvent(verb string, input DocumentEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.SnapshotID != "" {
		metadata = ensureMetadata(metadata)
		metadata["snapshot_id"] = input.SnapshotID
	}
	if input.Format != "" {
		metadata = ensureMetadata(metadata)
		metadata["format"] = input.Format
	}
	if input.Version > 0 {
		metadata = ensureMetadata(metadata)
		metadata["version"] = input.Version
	}
	if len(input.Fields) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["fields"] = append([]string{}, input.Fields...)
	}
	if len(input.Skipped) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["skipped"] = append([]string{}, input.Skipped...)
	}
	if input.Bytes > 0 {
		metadata = ensureMetadata(metadata)
		metadata["bytes"] = input.Bytes
	}
	if input.Duration > 0 {
		metadata = ensureMetadata(metadata)
		metadata["duration_ms"] = input.Duration.Milliseconds()
	}
	if input.Err != nil {
		metadata = ensureMetadata(metadata)
		metadata["error"] = input.Err.Error()
	}

	objectID := strings.TrimSpace(input.Document)
	if objectID == "" {
		objectID = strings.TrimSpace(input.SnapshotID)
	}
	if objectID == "" {
		objectID = ObjectDocument
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectDocument,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
