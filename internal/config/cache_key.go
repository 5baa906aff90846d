package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ReviewerSessionKey returns the cache key for a reviewer's login session.
func (r *CacheKeyStruct) ReviewerSessionKey(reviewerID int) string {
	return fmt.Sprintf("reviewer:%d:login", reviewerID)
}

// AttemptAnswersKey returns the cache key holding a learner's autosaved
// answers for one attempt (hash: question index -> answer JSON).
func (r *CacheKeyStruct) AttemptAnswersKey(attemptID string) string {
	return fmt.Sprintf("attempt:%s:answers", attemptID)
}

// AttemptExpiryIndexKey returns the sorted-set key indexing active attempts
// by their deadline (score = unix seconds). Swept by the expiry worker.
func (r *CacheKeyStruct) AttemptExpiryIndexKey() string {
	return "attempts:expiry_index"
}

// AttemptMonitorChannel returns the Pub/Sub channel carrying live proctoring
// events for one attempt.
func (r *CacheKeyStruct) AttemptMonitorChannel(attemptID string) string {
	return fmt.Sprintf("attempt:%s:monitor", attemptID)
}

var CacheKey = NewCacheKeyStruct()
