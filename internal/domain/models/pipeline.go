package model

import "time"

type Stage string

const (
	StageIdle           Stage = "idle"
	StageSelecting      Stage = "selecting"
	StageResolvingMedia Stage = "resolving_media"
	StageSplitting      Stage = "splitting"
	StagePublishing     Stage = "publishing"
	StageFinalizing     Stage = "finalizing"
	StageAborted        Stage = "aborted"
)

type Outcome string

const (
	OutcomePublished     Outcome = "published"
	OutcomeNoPendingPost Outcome = "no_pending_post"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeAborted       Outcome = "aborted"
)

type FallbackPolicy string

const (
	FallbackPolicyAbort    FallbackPolicy = "abort"
	FallbackPolicyTextOnly FallbackPolicy = "text_only"
)

// RunResult describes one pipeline run. Stage is the last stage reached.
type RunResult struct {
	RunID       string        `json:"run_id"`
	Outcome     Outcome       `json:"outcome"`
	PostID      int64         `json:"post_id,omitempty"`
	Stage       Stage         `json:"stage"`
	PostHandles []PostHandle  `json:"post_handles,omitempty"`
	MediaCount  int           `json:"media_count"`
	Duration    time.Duration `json:"duration"`
}
