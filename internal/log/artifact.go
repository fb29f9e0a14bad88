package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ArtifactLogger records intermediate pipeline artifacts (reference document,
// header text) with optional file output.
type ArtifactLogger interface {
	Log(stage string, data []byte)
}

// artifactLogger implements ArtifactLogger with thread-safe writes.
type artifactLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewArtifact creates a new ArtifactLogger. If writer is nil, returns a no-op logger.
func NewArtifact(w io.Writer) ArtifactLogger {
	return &artifactLogger{w: w}
}

// Log writes a timestamped header line followed by the artifact verbatim.
func (a *artifactLogger) Log(stage string, data []byte) {
	if len(data) == 0 {
		return
	}
	if a.w == nil {
		return
	}

	header := fmt.Sprintf("%s ==> %s (%d bytes)\n",
		time.Now().Format("2006/01/02 15:04:05"),
		stage,
		len(data))

	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = io.WriteString(a.w, header)
	_, _ = a.w.Write(data)
	if data[len(data)-1] != '\n' {
		_, _ = io.WriteString(a.w, "\n")
	}
}
