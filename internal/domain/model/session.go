package model

import "time"

// ChatSession is an unordered pair of users in a live conversation.
type ChatSession struct {
	UserA     int64     `json:"user_a"`
	UserB     int64     `json:"user_b"`
	StartedAt time.Time `json:"started_at"`
}
