package events

// Topics emitted by local mutations. The sync scheduler subscribes to all of
// them; anything that changes persisted state must emit one.
const (
	TopicOrderCreated      = "order.created"
	TopicOrderUpdated      = "order.updated"
	TopicOrderDeleted      = "order.deleted"
	TopicCatalogChanged    = "catalog.changed"
	TopicCategoriesChanged = "categories.changed"
	TopicSettingsChanged   = "settings.changed"
	TopicDataRestored      = "data.restored"
)
