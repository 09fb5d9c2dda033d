package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ReloadRequest is the decoded body of one bridge connection.
type ReloadRequest struct {
	WorkspacePath  string
	TargetFilePath string
}

// ParseReloadRequest splits a "<workspace>\n<file>" payload. Trailing
// whitespace and CRLF line endings are tolerated.
func ParseReloadRequest(payload string) (ReloadRequest, error) {
	trimmed := strings.TrimRight(payload, " \t\r\n")
	lines := strings.Split(trimmed, "\n")
	if len(lines) != 2 {
		return ReloadRequest{}, fmt.Errorf("%w: expected 2 lines, got %d", ErrMalformedRequest, len(lines))
	}

	workspace := strings.TrimRight(lines[0], " \t\r")
	target := strings.TrimRight(lines[1], " \t\r")
	if workspace == "" || target == "" {
		return ReloadRequest{}, fmt.Errorf("%w: empty path", ErrMalformedRequest)
	}

	return ReloadRequest{
		WorkspacePath:  filepath.Clean(workspace),
		TargetFilePath: filepath.Clean(target),
	}, nil
}

func (r ReloadRequest) Payload() string {
	return r.WorkspacePath + "\n" + r.TargetFilePath
}
