package model

import "fmt"

// StageError records where a pipeline run aborted.
type StageError struct {
	Stage  Stage
	PostID int64
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline %s (post %d): %v", e.Stage, e.PostID, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
