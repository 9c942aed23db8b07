package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionLockKey returns the lock key guarding a session's submit path.
func (r *CacheKeyStruct) SessionLockKey(sessionID string) string {
	return fmt.Sprintf("session:%s:lock", sessionID)
}

// PageOpenedCounterKey returns the funnel counter of landing page opens.
func (r *CacheKeyStruct) PageOpenedCounterKey() string {
	return "analytics:page_opened"
}

var CacheKey = NewCacheKeyStruct()
