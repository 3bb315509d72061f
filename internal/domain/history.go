package domain

import "time"

// BucketCount is one card's red/yellow/green tally at a point in time.
type BucketCount struct {
	Metric  string    `json:"metric"`
	Red     int       `json:"red"`
	Yellow  int       `json:"yellow"`
	Green   int       `json:"green"`
	Total   int       `json:"total"`
	TakenAt time.Time `json:"taken_at"`
}
