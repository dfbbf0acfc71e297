package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserLoginKey returns the cache key holding a user's active login JTI.
func (r *CacheKeyStruct) UserLoginKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// SessionStartKey returns the cache key for a test session's start time.
func (r *CacheKeyStruct) SessionStartKey(sessionID string) string {
	return fmt.Sprintf("session:%s:started_at", sessionID)
}

// SessionPaperKey returns the cache key for a session's "doing" paper
// payload (answer correctness stripped).
func (r *CacheKeyStruct) SessionPaperKey(sessionID string) string {
	return fmt.Sprintf("session:%s:paper", sessionID)
}

// SessionDraftKey returns the cache key for a learner's autosaved draft
// answers within a session.
func (r *CacheKeyStruct) SessionDraftKey(sessionID string) string {
	return fmt.Sprintf("session:%s:drafts", sessionID)
}

// TestMonitorChannel returns the Redis PubSub channel name for live
// session events of a test.
func (r *CacheKeyStruct) TestMonitorChannel(testID string) string {
	return fmt.Sprintf("test:%s:monitor", testID)
}

var CacheKey = NewCacheKeyStruct()
