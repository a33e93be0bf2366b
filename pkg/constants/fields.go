package constants

// Common field API names
const (
	FieldID             = "Id"
	FieldName           = "Name"
	FieldParentID       = "ParentId"
	FieldWhatID         = "WhatId"
	FieldWhoID          = "WhoId"
	FieldLinkedEntityID = "LinkedEntityId"
	FieldContentDocID   = "ContentDocumentId"
	FieldTitle          = "Title"
	FieldPathOnClient   = "PathOnClient"
	FieldFileExtension  = "FileExtension"
	FieldContentSize    = "ContentSize"
	FieldVersionData    = "VersionData"
	FieldDescription    = "Description"
	FieldShareType      = "ShareType"
	FieldVisibility     = "Visibility"
	FieldIsLatest       = "IsLatestVersion"
)

// Objects the activity and file stages are hard-wired to
const (
	ObjectTask                = "Task"
	ObjectEvent               = "Event"
	ObjectContentVersion      = "ContentVersion"
	ObjectContentDocumentLink = "ContentDocumentLink"
)

// Content link defaults for re-created links
const (
	ShareTypeViewer    = "V"
	VisibilityAllUsers = "AllUsers"
)

// SystemReadOnlyFields are audit and system fields the platform populates
// itself. They are never part of an insertable field set.
var SystemReadOnlyFields = map[string]bool{
	"Id":                 true,
	"IsDeleted":          true,
	"CreatedDate":        true,
	"CreatedById":        true,
	"LastModifiedDate":   true,
	"LastModifiedById":   true,
	"SystemModstamp":     true,
	"LastActivityDate":   true,
	"LastViewedDate":     true,
	"LastReferencedDate": true,
}

// ActivitySystemFields are additional read-only fields on Task and Event
// that the create API rejects.
var ActivitySystemFields = map[string]bool{
	"IsClosed":             true,
	"IsArchived":           true,
	"IsRecurrence":         true,
	"IsHighPriority":       true,
	"TaskSubtype":          true,
	"EventSubtype":         true,
	"IsGroupEvent":         true,
	"GroupEventType":       true,
	"IsChild":              true,
	"IsAllDayEvent":        true,
	"IsReminderSet":        true,
	"RecurrenceActivityId": true,
}
