package config

import (
	"testing"
	"time"
)

// Handlers use these helpers before ConnectRedisWithRetry has finished, so
// all of them must degrade to no-ops instead of panicking.
func TestRedisHelpers_NilClientIsSafe(t *testing.T) {
	if GetRedisDB() != nil || GetRedisLock() != nil {
		t.Fatalf("redis globals unexpectedly initialized in tests")
	}

	val, found, err := GetRedisValue("cache:items")
	if err != nil {
		t.Fatalf("GetRedisValue returned error without a client: %v", err)
	}
	if found || val != "" {
		t.Fatalf("GetRedisValue = (%q, %v), expected miss", val, found)
	}

	if err := SetRedisValue("cache:items", "[]", 30*time.Second); err != nil {
		t.Fatalf("SetRedisValue returned error without a client: %v", err)
	}
	if err := RemoveRedisKey("cache:items"); err != nil {
		t.Fatalf("RemoveRedisKey returned error without a client: %v", err)
	}
}
