package service

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// EntityKind names one of the seven imported record kinds.
type EntityKind string

const (
	KindUsers      EntityKind = "users"
	KindCategories EntityKind = "categories"
	KindTags       EntityKind = "tags"
	KindMedia      EntityKind = "media"
	KindPosts      EntityKind = "posts"
	KindPages      EntityKind = "pages"
	KindComments   EntityKind = "comments"
)

// AllKinds is the import order.
var AllKinds = []EntityKind{KindUsers, KindCategories, KindTags, KindMedia, KindPosts, KindPages, KindComments}

// IDMap maps WordPress numeric ids to generated record ids, per kind.
type IDMap struct {
	mu   sync.RWMutex
	maps map[EntityKind]map[int64]string
}

func NewIDMap() *IDMap {
	m := &IDMap{maps: make(map[EntityKind]map[int64]string, len(AllKinds))}
	for _, kind := range AllKinds {
		m.maps[kind] = map[int64]string{}
	}
	return m
}

func (m *IDMap) Set(kind EntityKind, wpID int64, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maps[kind] == nil {
		m.maps[kind] = map[int64]string{}
	}
	m.maps[kind][wpID] = id
}

func (m *IDMap) Get(kind EntityKind, wpID int64) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.maps[kind][wpID]
	return id, ok
}

func (m *IDMap) Len(kind EntityKind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.maps[kind])
}

// IDMappingFile is the on-disk shape of id-mappings.json.
type IDMappingFile struct {
	Users      map[string]string `json:"users"`
	Posts      map[string]string `json:"posts"`
	Pages      map[string]string `json:"pages"`
	Categories map[string]string `json:"categories"`
	Tags       map[string]string `json:"tags"`
	Media      map[string]string `json:"media"`
	Comments   map[string]string `json:"comments"`
}

func (m *IDMap) Export() *IDMappingFile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv := func(kind EntityKind) map[string]string {
		out := make(map[string]string, len(m.maps[kind]))
		for k, v := range m.maps[kind] {
			out[strconv.FormatInt(k, 10)] = v
		}
		return out
	}
	return &IDMappingFile{
		Users:      conv(KindUsers),
		Posts:      conv(KindPosts),
		Pages:      conv(KindPages),
		Categories: conv(KindCategories),
		Tags:       conv(KindTags),
		Media:      conv(KindMedia),
		Comments:   conv(KindComments),
	}
}

// PhaseStats counts the outcome of every source item of one kind.
type PhaseStats struct {
	Total    int `json:"total"`
	Created  int `json:"created"`
	Existing int `json:"existing"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
	Linked   int `json:"linked"`
}

// Report is the outcome of a migration run. Omitted counts references that
// were dropped because their target was never mapped, keyed like
// "page.parent".
type Report struct {
	mu       sync.Mutex
	Phases   map[EntityKind]*PhaseStats `json:"phases"`
	Omitted  map[string]int             `json:"omitted"`
	Duration time.Duration              `json:"duration"`
}

func NewReport() *Report {
	r := &Report{Phases: map[EntityKind]*PhaseStats{}, Omitted: map[string]int{}}
	for _, kind := range AllKinds {
		r.Phases[kind] = &PhaseStats{}
	}
	return r
}

func (r *Report) Phase(kind EntityKind) *PhaseStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Phases[kind] == nil {
		r.Phases[kind] = &PhaseStats{}
	}
	return r.Phases[kind]
}

func (r *Report) Omit(link string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Omitted[link]++
}

func (r *Report) TotalOmitted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, n := range r.Omitted {
		total += n
	}
	return total
}

// OmittedKeys returns the omitted link kinds in sorted order.
func (r *Report) OmittedKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.Omitted))
	for k := range r.Omitted {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Session carries the state shared by the import phases of one run.
type Session struct {
	IDs    *IDMap
	Report *Report
	// DefaultAuthorID is the first mapped user, used when fallback authors
	// are enabled.
	DefaultAuthorID string
	excluded        map[EntityKind]map[int64]bool
}

func NewSession() *Session {
	return &Session{IDs: NewIDMap(), Report: NewReport(), excluded: map[EntityKind]map[int64]bool{}}
}

// Exclude records a source id that was deliberately not imported, so a
// reference to it is not reported as a gap.
func (s *Session) Exclude(kind EntityKind, wpID int64) {
	if s.excluded[kind] == nil {
		s.excluded[kind] = map[int64]bool{}
	}
	s.excluded[kind][wpID] = true
}

func (s *Session) IsExcluded(kind EntityKind, wpID int64) bool {
	return s.excluded[kind][wpID]
}
