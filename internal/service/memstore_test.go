package service

import (
	"context"
	"fmt"
	"sync"

	"LocationSync/internal/interfaces"
	"LocationSync/internal/model"
)

// memStore 内存版存储，模拟已提交状态；memSession 模拟真实会话的
// 暂存语义（暂存写入对本会话可见，Commit才合并进store）。
// 查询返回副本，未提交的修改不会泄漏进已提交状态。
type memStore struct {
	mu        sync.Mutex
	locations map[string]*model.Location       // id → 定位
	googleIDs map[string]string                // google_id → id
	metrics   map[string]*model.LocationMetric // id → 快照
	types     map[string]*model.LocationType   // name → 条目

	failCommits       int    // 前N次Commit返回commitErr
	commitErr         error
	failFindGoogleID  string // 查询该google_id时报错（构造行级失败）
	panicFindGoogleID string // 查询该google_id时panic（构造行内panic）
	commitCalls       int
}

func newMemStore() *memStore {
	return &memStore{
		locations: make(map[string]*model.Location),
		googleIDs: make(map[string]string),
		metrics:   make(map[string]*model.LocationMetric),
		types:     make(map[string]*model.LocationType),
	}
}

func (s *memStore) NewSession() interfaces.StoreSession {
	return &memSession{
		store:         s,
		locByGoogleID: make(map[string]*model.Location),
		locInsertIDs:  make(map[string]struct{}),
		locUpdates:    make(map[string]*model.Location),
		typesByName:   make(map[string]*model.LocationType),
	}
}

var _ interfaces.SessionFactory = (*memStore)(nil)

func (s *memStore) locationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locations)
}

func (s *memStore) metricCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.metrics)
}

func (s *memStore) committedByGoogleID(googleID string) *model.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.googleIDs[googleID]; ok {
		return cloneLocation(s.locations[id])
	}
	return nil
}

func (s *memStore) metricsOf(locationID string) []*model.LocationMetric {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.LocationMetric
	for _, m := range s.metrics {
		if m.LocationID == locationID {
			out = append(out, m)
		}
	}
	return out
}

type memSession struct {
	store *memStore

	locByGoogleID map[string]*model.Location
	locInserts    []*model.Location
	locInsertIDs  map[string]struct{}
	locUpdates    map[string]*model.Location
	metrics       []*model.LocationMetric
	types         []*model.LocationType
	typesByName   map[string]*model.LocationType
}

func (m *memSession) FindLocationByGoogleID(_ context.Context, googleID string) (*model.Location, error) {
	if googleID == "" {
		return nil, nil
	}
	if googleID == m.store.failFindGoogleID {
		return nil, fmt.Errorf("injected find failure, google_id: %s", googleID)
	}
	if googleID == m.store.panicFindGoogleID {
		panic(fmt.Sprintf("injected lookup panic, google_id: %s", googleID))
	}
	if loc, ok := m.locByGoogleID[googleID]; ok {
		return loc, nil
	}
	return m.store.committedByGoogleID(googleID), nil
}

func (m *memSession) FindTypesByNames(_ context.Context, names []string) (map[string]*model.LocationType, error) {
	result := make(map[string]*model.LocationType, len(names))
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, name := range names {
		if t, ok := m.typesByName[name]; ok {
			result[name] = t
			continue
		}
		if t, ok := m.store.types[name]; ok {
			result[name] = &model.LocationType{ID: t.ID, Name: t.Name}
		}
	}
	return result, nil
}

func (m *memSession) StageLocationInsert(loc *model.Location) {
	m.locInserts = append(m.locInserts, loc)
	m.locInsertIDs[loc.ID] = struct{}{}
	if loc.GoogleID != "" {
		m.locByGoogleID[loc.GoogleID] = loc
	}
}

func (m *memSession) StageLocationUpdate(loc *model.Location) {
	if _, pending := m.locInsertIDs[loc.ID]; pending {
		return
	}
	m.locUpdates[loc.ID] = loc
	if loc.GoogleID != "" {
		m.locByGoogleID[loc.GoogleID] = loc
	}
}

func (m *memSession) StageMetricInsert(mt *model.LocationMetric) {
	m.metrics = append(m.metrics, mt)
}

func (m *memSession) StageTypeInsert(t *model.LocationType) {
	m.types = append(m.types, t)
	m.typesByName[t.Name] = t
}

func (m *memSession) Commit(_ context.Context) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.commitCalls++
	if m.store.failCommits > 0 {
		m.store.failCommits--
		return m.store.commitErr
	}
	for _, t := range m.types {
		if _, exists := m.store.types[t.Name]; !exists {
			m.store.types[t.Name] = &model.LocationType{ID: t.ID, Name: t.Name}
		}
	}
	for _, loc := range m.locInserts {
		m.store.locations[loc.ID] = cloneLocation(loc)
		if loc.GoogleID != "" {
			m.store.googleIDs[loc.GoogleID] = loc.ID
		}
	}
	for _, loc := range m.locUpdates {
		m.store.locations[loc.ID] = cloneLocation(loc)
		if loc.GoogleID != "" {
			m.store.googleIDs[loc.GoogleID] = loc.ID
		}
	}
	for _, mt := range m.metrics {
		clone := *mt
		m.store.metrics[mt.ID] = &clone
	}
	m.reset()
	return nil
}

func (m *memSession) Rollback() { m.reset() }

func (m *memSession) Close() error {
	m.reset()
	return nil
}

func (m *memSession) reset() {
	m.locByGoogleID = make(map[string]*model.Location)
	m.locInserts = nil
	m.locInsertIDs = make(map[string]struct{})
	m.locUpdates = make(map[string]*model.Location)
	m.metrics = nil
	m.types = nil
	m.typesByName = make(map[string]*model.LocationType)
}

func cloneLocation(loc *model.Location) *model.Location {
	clone := *loc
	if loc.MetricID != nil {
		id := *loc.MetricID
		clone.MetricID = &id
	}
	return &clone
}
