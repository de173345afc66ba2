package common

import "fmt"

func RedisKeyEligibilitySnapshot(eventID, walletAddress, discordUserID string) string {
	return fmt.Sprintf("eligibility:%s:%s:%s", eventID, walletAddress, discordUserID)
}

func RedisKeyCandidateFacts(walletAddress string) string {
	return fmt.Sprintf("facts:%s", walletAddress)
}
