package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Failure records one operation that did not survive retries.
type Failure struct {
	Path string
	Op   string
	Err  error
}

// Summary accumulates the outcome of one reconciliation run.
type Summary struct {
	RunID          string
	Created        int
	Updated        int
	Deleted        int
	Unchanged      int
	Failed         int
	Bytes          int64
	Took           time.Duration
	CacheRecovered bool
	Failures       []Failure
}

// Ok reports whether every operation either succeeded or was Unchanged.
func (s *Summary) Ok() bool {
	return s.Failed == 0
}

func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "created %d, updated %d, deleted %d, unchanged %d, failed %d",
		s.Created, s.Updated, s.Deleted, s.Unchanged, s.Failed)
	if s.Bytes > 0 {
		fmt.Fprintf(&b, ", pushed %s", humanize.Bytes(uint64(s.Bytes)))
	}
	fmt.Fprintf(&b, " in %s", s.Took.Round(time.Millisecond))
	if s.CacheRecovered {
		b.WriteString(" (cache was corrupted and rebuilt)")
	}
	for _, f := range s.Failures {
		fmt.Fprintf(&b, "\n  failed %s %s: %v", f.Op, f.Path, f.Err)
	}
	return b.String()
}
