package constant

// User roles
const (
	RoleStudent  = "student"
	RoleLecturer = "lecturer"
	RoleAdmin    = "admin"
)

// Notification types
const (
	NotificationTypeSystem      = "system"
	NotificationTypeMessage     = "message"
	NotificationTypeOrderStatus = "order_status"
	NotificationTypePayment     = "payment"
	NotificationTypeCourse      = "course"
)

// Server -> client events
const (
	EventNewMessage            = "new-message"
	EventNewConversation       = "new-conversation"
	EventReadMessage           = "read-message"
	EventOnlineUsers           = "online-users"
	EventNewNotification       = "new-notification"
	EventOrderStatusUpdated    = "order-status-updated"
	EventPaymentConfirmed      = "payment-confirmed"
	EventNotificationRead      = "notification-read"
	EventBroadcastNotification = "broadcast-notification"
	EventError                 = "error"
)

// Client -> server events
const (
	EventJoinConversation  = "join-conversation"
	EventLeaveConversation = "leave-conversation"
	EventJoinUserRoom      = "join-user-room"
	EventLeaveUserRoom     = "leave-user-room"
)

// Room name prefixes
const (
	UserRoomPrefix         = "user:"
	ConversationRoomPrefix = "conversation:"
)

// UserRoom returns the broadcast group of a single user
func UserRoom(userId string) string {
	return UserRoomPrefix + userId
}

// ConversationRoom returns the broadcast group of a conversation
func ConversationRoom(conversationId string) string {
	return ConversationRoomPrefix + conversationId
}

// Cookie names
const (
	CookieAccessToken  = "access_token"
	CookieRefreshToken = "refresh_token"
)

// Message pagination
const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 100
)

// Notification pagination
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Redis key patterns (without prefix, use RedisKey() to get full key)
const (
	redisKeyOnlineUsers      = "online:users"          // set of online user ids
	redisKeyOnlineConns      = "online:conns:%s"       // online:conns:{user_id}
	redisKeyRefreshTokenUsed = "token:refresh_used:%s" // token:refresh_used:{user_id}
)

// redisKeyPrefix is the global prefix for all Redis keys
var redisKeyPrefix = "coursehub:"

// InitRedisKeyPrefix initializes the Redis key prefix from config
func InitRedisKeyPrefix(prefix string) {
	if prefix != "" {
		redisKeyPrefix = prefix
	}
}

// GetRedisKeyPrefix returns the current Redis key prefix
func GetRedisKeyPrefix() string {
	return redisKeyPrefix
}

// Redis key getters with prefix
func RedisKeyOnlineUsers() string      { return redisKeyPrefix + redisKeyOnlineUsers }
func RedisKeyOnlineConns() string      { return redisKeyPrefix + redisKeyOnlineConns }
func RedisKeyRefreshTokenUsed() string { return redisKeyPrefix + redisKeyRefreshTokenUsed }
