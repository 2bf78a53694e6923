package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionsKey returns the cache key for the set of live token IDs of a user
func (r *CacheKeyStruct) UserSessionsKey(userID string) string {
	return fmt.Sprintf("user:%s:sessions", userID)
}

// SharedTemplateKey returns the cache key for a template's respondent view
func (r *CacheKeyStruct) SharedTemplateKey(templateID string) string {
	return fmt.Sprintf("template:%s:shared", templateID)
}

// AttemptKey returns the cache key for a timed attempt's start record
func (r *CacheKeyStruct) AttemptKey(attemptID string) string {
	return fmt.Sprintf("attempt:%s", attemptID)
}

// TemplateFeedChannel returns the Redis PubSub channel name for a template's live feed
func (r *CacheKeyStruct) TemplateFeedChannel(templateID string) string {
	return fmt.Sprintf("template:%s:feed", templateID)
}

var CacheKey = NewCacheKeyStruct()
