package worker

import (
	"fmt"
	"strings"

	"github.com/orchestra-ai/orchestra/internal/task"
)

// DefaultDigestLimit is the per-output truncation bound applied when
// building context digests. Later subtasks see at most this many bytes
// of each prior output.
const DefaultDigestLimit = 4096

const truncationMarker = "[... output truncated ...]"

// BuildDigest compresses prior worker results into the context digest
// passed to the next worker. The compression contract is deliberate:
// only final outputs propagate forward, never trajectories, and each
// output is truncated to limit bytes so context growth stays bounded in
// the number of subtasks rather than the size of their work.
//
// Failed subtasks appear in the digest with their error message, so a
// later worker knows a gap exists instead of silently missing data.
func BuildDigest(results []task.WorkerResult, limit int) string {
	if len(results) == 0 {
		return ""
	}
	if limit <= 0 {
		limit = DefaultDigestLimit
	}

	var b strings.Builder
	for _, res := range results {
		fmt.Fprintf(&b, "## Task %d (%s)\n", res.SubtaskIndex+1, res.WorkerRole)
		if res.Failed() {
			fmt.Fprintf(&b, "FAILED: %s\n\n", res.Error.Message)
			continue
		}
		b.WriteString(truncate(res.Output, limit))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// truncate cuts s to at most limit bytes, marking the cut.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "\n" + truncationMarker
}
