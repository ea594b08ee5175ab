package ports

import (
	"context"
)

// GitInfo describes the repository a session ran in. Session records keep
// only the branch.
type GitInfo struct {
	Branch     string
	Commit     string
	CommitMsg  string
	IsClean    bool
	Repository string
}

// GitDetector finds the repository around a working directory.
type GitDetector interface {
	Detect(ctx context.Context, workingDir string) (*GitInfo, error)
	IsAvailable() bool
}
