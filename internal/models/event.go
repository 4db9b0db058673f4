package models

import "time"

type EventAction string

const (
	ActionStartView EventAction = "startView"
	ActionEndView   EventAction = "endView"
)

// ViewEvent is one half of a viewing session: a startView/endView pair
// sharing the same session id. Events are append-only.
type ViewEvent struct {
	PostID  string      `json:"postId"`
	Session string      `json:"session"`
	Action  EventAction `json:"action"`
	Date    time.Time   `json:"date"`
}

type TrackEventRequest struct {
	PostID  string    `json:"postId"`
	Action  string    `json:"action"`
	Session string    `json:"session,omitempty"`
	Date    time.Time `json:"date,omitzero"`
}

type TrackEventResponse struct {
	Session string `json:"session"`
}

type DailyViews struct {
	Day   time.Time `json:"day"`
	Views int       `json:"views"`
}

type DailyDuration struct {
	Day               time.Time `json:"day"`
	AverageDurationMs float64   `json:"averageDurationMs"`
	TotalDurationMs   int64     `json:"totalDurationMs"`
	SessionCount      int       `json:"sessionCount"`
}
