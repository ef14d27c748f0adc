package execution

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextTestIDMonotonic(t *testing.T) {
	r := NewProgressReporter(&bytes.Buffer{}, NewStatusMap())
	first := r.NextTestID()
	second := r.NextTestID()
	assert.Equal(t, first+1, second)
}

func TestNextTestIDConcurrentSafe(t *testing.T) {
	r := NewProgressReporter(&bytes.Buffer{}, NewStatusMap())
	seen := make(chan int, 100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- r.NextTestID()
		}()
	}
	wg.Wait()
	close(seen)

	ids := make(map[int]struct{})
	for id := range seen {
		ids[id] = struct{}{}
	}
	assert.Len(t, ids, 100)
}

func TestReportStartWritesLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewProgressReporter(&buf, NewStatusMap())
	r.ReportStart("test_bgp", 1, "worker-0")
	assert.Contains(t, buf.String(), "test_bgp")
}
