package utils

/**
 * This file contains utility functions to format the keys for Redis
 * (key, value) pairs. It avoids having to call "fmt.Sprintf(...)"
 * with the same format spec every time, potentially confusing the key format.
 */

import (
	"fmt"
	"strconv"
)

// Sorted set of conversation ids scored by last activity
func FormatActivityKey(userID uint) string {
	return fmt.Sprintf("user:%d:activity", userID)
}

func FormatConversationMember(conversationID uint) string {
	return strconv.FormatUint(uint64(conversationID), 10)
}

func ParseConversationMember(member string) (uint, error) {
	id, err := strconv.ParseUint(member, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid conversation member %q: %v", member, err)
	}
	return uint(id), nil
}
