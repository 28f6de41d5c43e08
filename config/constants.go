package config

import "time"

// Retrieval Constants
const (
	// FetchTimeout bounds each individual source request
	FetchTimeout = 5 * time.Second

	// MaxFragments is the most fragments taken from a single source
	MaxFragments = 3

	// MaxBodyBytes caps how much of a response body is read
	MaxBodyBytes = 2 << 20

	// DefaultUserAgent is sent with every source request
	DefaultUserAgent = "Mozilla/5.0"

	// ResultSnippetSelector matches result snippets on the basic-HTML result pages
	ResultSnippetSelector = "div.BNeawe.s3v9rd.AP7Wnd"
)

// Conversation Constants
const (
	// DefaultMaxTurns caps a session's history (user and assistant turns together)
	DefaultMaxTurns = 40

	// DefaultSessionIdleTTL is how long an untouched session is kept
	DefaultSessionIdleTTL = time.Hour

	// DefaultSweepSchedule is the cron spec for evicting idle sessions
	DefaultSweepSchedule = "@every 10m"
)

// Responder Constants
const (
	// DefaultResponderTimeout bounds a single call to the language model
	DefaultResponderTimeout = 60 * time.Second

	// ChatOperation is the operation name sent with every generation request
	ChatOperation = "/chat"

	// DefaultCohereModel is used when COHERE_MODEL is unset
	DefaultCohereModel = "command-r-plus"

	// DefaultOpenAIBaseURL is used when LLM_BASE_URL is unset
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// DefaultOpenAIModel is used when LLM_MODEL is unset
	DefaultOpenAIModel = "gpt-4o-mini"

	// DefaultBreakerFailures consecutive model failures open the circuit
	DefaultBreakerFailures = 5

	// DefaultBreakerCooldown is how long an open circuit rejects calls
	DefaultBreakerCooldown = 30 * time.Second
)

// Cache and Events Constants
const (
	// DefaultCacheTTL is how long an aggregated result is reused for the same query
	DefaultCacheTTL = 5 * time.Minute

	// DefaultCacheKeyPrefix namespaces cache keys in Redis
	DefaultCacheKeyPrefix = "searchbot:retrieval:"

	// DefaultKafkaTopic receives one message per completed exchange
	DefaultKafkaTopic = "searchbot.exchanges"
)

// Server Constants
const (
	DefaultPort = "8080"

	// SessionCookie carries the browser's session id
	SessionCookie = "searchbot_session"

	// SessionHeader lets API clients pass a session id without cookies
	SessionHeader = "X-Session-ID"

	// DefaultRateLimitPerMinute is the per-client-IP allowance for chat requests; 0 disables limiting
	DefaultRateLimitPerMinute = 20

	// DefaultRateLimitBurst is how many chat requests a session may send back to back
	DefaultRateLimitBurst = 5
)
