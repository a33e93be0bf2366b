package constants

// SystemLookupObjects are platform objects whose record IDs are org-local
// and cannot be carried across orgs. References into any of these are
// stripped rather than remapped.
var SystemLookupObjects = map[string]bool{
	// Platform identity
	"User":                 true,
	"Group":                true,
	"Profile":              true,
	"Role":                 true,
	"UserRole":             true,
	"PermissionSet":        true,
	"PermissionSetGroup":   true,
	"ConnectedApplication": true,
	"Organization":         true,

	// Metadata and configuration
	"RecordType":       true,
	"BusinessProcess":  true,
	"ApexClass":        true,
	"ApexTrigger":      true,
	"CustomPermission": true,
	"EmailTemplate":    true,
	"Folder":           true,
	"ListView":         true,
	"Layout":           true,

	// Entitlements
	"BusinessHours":       true,
	"Entitlement":         true,
	"EntitlementTemplate": true,
	"Milestone":           true,
	"MilestoneType":       true,
	"SlaProcess":          true,

	// Territory and currency
	"Territory2":          true,
	"Territory2Model":     true,
	"Territory2Type":      true,
	"CurrencyType":        true,
	"DatedConversionRate": true,

	// Miscellaneous platform objects
	"Division":            true,
	"QueueSobject":        true,
	"Calendar":            true,
	"CollaborationGroup":  true,
	"Network":             true,
	"Site":                true,
	"Community":           true,
	"BrandTemplate":       true,
	"DandBCompany":        true,
	"PartnerRole":         true,
	"DuplicateRecordSet":  true,
	"DuplicateRecordItem": true,
	"DuplicateRule":       true,
	"MatchingRule":        true,
	"Period":              true,
	"FiscalYearSettings":  true,
}

// ChildObjectDenyList names platform child objects that never make sense
// as declared child tiers: activities, feeds, content links, subscriptions,
// topic assignments, and recent-history rows. Activities and files are
// handled by their own pipeline stages instead.
var ChildObjectDenyList = map[string]bool{
	"Task":                    true,
	"Event":                   true,
	"ActivityHistory":         true,
	"OpenActivity":            true,
	"FeedItem":                true,
	"FeedComment":             true,
	"ContentDocumentLink":     true,
	"AttachedContentDocument": true,
	"CombinedAttachment":      true,
	"EntitySubscription":      true,
	"TopicAssignment":         true,
	"RecentlyViewed":          true,
	"RecordActionHistory":     true,
}

// ChildObjectDenySuffixes excludes generated companion objects by name
// suffix (history tracking, sharing, change data capture, feeds).
var ChildObjectDenySuffixes = []string{
	"__Feed",
	"__History",
	"__Share",
	"__ChangeEvent",
	"History",
	"Feed",
	"Share",
	"ChangeEvent",
}
