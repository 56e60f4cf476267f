package constant

const (
	EventChatMessageSent        = "CHAT_MESSAGE_SENT"
	EventChatSessionDeleted     = "CHAT_SESSION_DELETED"
	EventChatHistorySwept       = "CHAT_HISTORY_SWEPT"
	EventRetentionPolicyUpdated = "RETENTION_POLICY_UPDATED"
)
