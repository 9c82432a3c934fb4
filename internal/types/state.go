package types

import "fmt"

// AppState is the screen the analyzer is currently showing.
type AppState string

// AppState values.
const (
	StateIdle          AppState = "idle"
	StateUploading     AppState = "uploading"
	StateAnalyzing     AppState = "analyzing"
	StateResult        AppState = "result"
	StateViewingResume AppState = "viewing_resume"
	StateRoadmap       AppState = "roadmap"
	StateHistory       AppState = "history"
)

var allStates = []AppState{
	StateIdle,
	StateUploading,
	StateAnalyzing,
	StateResult,
	StateViewingResume,
	StateRoadmap,
	StateHistory,
}

// ParseAppState converts a state name into an AppState.
func ParseAppState(s string) (AppState, error) {
	for _, st := range allStates {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown state: %q", s)
}

// RequiresResult reports whether the state can only be shown with an analysis result.
func (s AppState) RequiresResult() bool {
	switch s {
	case StateResult, StateViewingResume, StateRoadmap:
		return true
	}
	return false
}
