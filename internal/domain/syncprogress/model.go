package syncprogress

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// Job names, one progress record each.
const (
	JobHistoryBackward = "history_backward"
	JobHistoryForward  = "history_forward"
	JobStatsImport     = "stats_import"
	JobReference       = "reference"
)

// IDSet is a set of provider ids that serializes as an ordered array.
type IDSet struct {
	order []int64
	index map[int64]struct{}
}

func NewIDSet(ids ...int64) *IDSet {
	s := &IDSet{index: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *IDSet) Has(id int64) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

// Add inserts id and reports whether it was new.
func (s *IDSet) Add(id int64) bool {
	if s.index == nil {
		s.index = make(map[int64]struct{})
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *IDSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// IDs returns the ids in insertion order.
func (s *IDSet) IDs() []int64 {
	if s == nil {
		return nil
	}
	out := make([]int64, len(s.order))
	copy(out, s.order)
	return out
}

func (s *IDSet) MarshalJSON() ([]byte, error) {
	if s == nil || len(s.order) == 0 {
		return []byte("[]"), nil
	}
	return sonic.Marshal(s.order)
}

func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []int64
	if err := sonic.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = IDSet{index: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return nil
}

// State is the resumable cursor of one sync job.
type State struct {
	Job          string           `json:"job"`
	CurrentPage  int              `json:"currentPage"`
	TotalPages   int              `json:"totalPages"`
	CurrentDate  string           `json:"currentDate"`
	Processed    int              `json:"processed"`
	Created      int              `json:"created"`
	Updated      int              `json:"updated"`
	Skipped      int              `json:"skipped"`
	Failed       int              `json:"failed"`
	ProcessedIDs *IDSet           `json:"processedIds"`
	Extra        map[string]int64 `json:"extra,omitempty"`
	StartTime    time.Time        `json:"startTime"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// Fresh returns a zeroed state for job.
func Fresh(job string, now time.Time) State {
	return State{
		Job:          strings.TrimSpace(job),
		ProcessedIDs: NewIDSet(),
		StartTime:    now.UTC(),
	}
}

// Normalize fills nil collections after decoding.
func (s *State) Normalize(job string) {
	if s.Job == "" {
		s.Job = strings.TrimSpace(job)
	}
	if s.ProcessedIDs == nil {
		s.ProcessedIDs = NewIDSet()
	}
}

// Incr bumps a job-specific counter.
func (s *State) Incr(key string, delta int64) {
	if s.Extra == nil {
		s.Extra = make(map[string]int64)
	}
	s.Extra[key] += delta
}

// ExtraKeys returns the job-specific counter names in stable order.
func (s State) ExtraKeys() []string {
	keys := make([]string, 0, len(s.Extra))
	for k := range s.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store persists progress. Load never fails a run: unreadable state comes
// back fresh together with the read error for logging.
type Store interface {
	Load(ctx context.Context, job string) (State, error)
	Save(ctx context.Context, state State) error
}
