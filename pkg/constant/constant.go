package constant

import "time"

// Message types
const (
	MsgTypeText   = "text"
	MsgTypeImage  = "image"
	MsgTypeSystem = "system"
)

// Display text used when the real value is gone or unknown
const (
	DeletedMessagePlaceholder = "This message was deleted"
	UnknownSenderName         = "Unknown"
	UnknownMemberName         = "Someone"
)

// TypingFreshnessWindow is how long a typing signal counts as live without a refresh
const TypingFreshnessWindow = 5000 * time.Millisecond

// Redis TTLs
const (
	UserCacheTTL   = 10 * time.Minute
	DirectLockTTL  = 5 * time.Second
	DirectLockWait = 50 * time.Millisecond
	DirectLockPoll = 10 * time.Millisecond
)

// Redis key patterns (without prefix, use RedisKey() to get full key)
const (
	redisKeyUserByAuth   = "user:auth:%s"      // user:auth:{external_auth_id}
	redisKeyDirectLock   = "lock:direct:%s:%s" // lock:direct:{min_user_id}:{max_user_id}
	redisKeyRevokedToken = "token:revoked:%s"  // token:revoked:{token_id}
)

// redisKeyPrefix is the global prefix for all Redis keys
var redisKeyPrefix = "parley:"

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
func RedisKeyUserByAuth() string   { return redisKeyPrefix + redisKeyUserByAuth }
func RedisKeyDirectLock() string   { return redisKeyPrefix + redisKeyDirectLock }
func RedisKeyRevokedToken() string { return redisKeyPrefix + redisKeyRevokedToken }
