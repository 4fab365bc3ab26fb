package common

import "fmt"

// RedisKeyGroupWins is the sorted set of historical win counts per user in a
// group. It feeds the winner leaderboard and mirrors what
// ParticipantRepository.CountWinsByGroup computes from the database.
func RedisKeyGroupWins(groupID string) string {
	return fmt.Sprintf("groupwins:%s", groupID)
}
