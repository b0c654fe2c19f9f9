package repository

import (
	"context"
	"errors"
	"fmt"

	"LocationSync/internal/interfaces"
	"LocationSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sessionFactory struct {
	db *gorm.DB
}

// NewSessionFactory 基于共享的gorm连接池创建会话工厂（每批次一个独立会话）
func NewSessionFactory(db *gorm.DB) interfaces.SessionFactory {
	return &sessionFactory{db: db}
}

func (f *sessionFactory) NewSession() interfaces.StoreSession {
	return &storeSession{
		db:            f.db,
		locByGoogleID: make(map[string]*model.Location),
		locInsertIDs:  make(map[string]struct{}),
		locUpdates:    make(map[string]*model.Location),
		typesByName:   make(map[string]*model.LocationType),
	}
}

// storeSession 暂存式会话：写入积累在内存，Commit统一在一个事务里落库。
// 本会话的查询先命中暂存（同批次可见性），且查询绝不会把暂存数据刷下去。
type storeSession struct {
	db *gorm.DB

	locByGoogleID map[string]*model.Location // 暂存定位（新增+待更新），按google_id索引
	locInserts    []*model.Location
	locInsertIDs  map[string]struct{}
	locUpdates    map[string]*model.Location // key: location id
	metrics       []*model.LocationMetric
	types         []*model.LocationType
	typesByName   map[string]*model.LocationType
	closed        bool
}

func (s *storeSession) FindLocationByGoogleID(ctx context.Context, googleID string) (*model.Location, error) {
	if googleID == "" {
		return nil, nil
	}
	// 1. 先查暂存（同批次前面行刚建的定位也要能命中）
	if loc, ok := s.locByGoogleID[googleID]; ok {
		return loc, nil
	}
	// 2. 再查已提交数据
	var loc model.Location
	err := s.db.WithContext(ctx).Where("google_id = ?", googleID).First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询定位失败, google_id: %s: %w", googleID, err)
	}
	return &loc, nil
}

func (s *storeSession) FindTypesByNames(ctx context.Context, names []string) (map[string]*model.LocationType, error) {
	result := make(map[string]*model.LocationType, len(names))
	missing := make([]string, 0, len(names))
	for _, name := range names {
		if t, ok := s.typesByName[name]; ok {
			result[name] = t
		} else {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return result, nil
	}
	var rows []*model.LocationType
	if err := s.db.WithContext(ctx).Where("name IN ?", missing).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询类型目录失败: %w", err)
	}
	for _, t := range rows {
		result[t.Name] = t
	}
	return result, nil
}

func (s *storeSession) StageLocationInsert(loc *model.Location) {
	s.locInserts = append(s.locInserts, loc)
	s.locInsertIDs[loc.ID] = struct{}{}
	if loc.GoogleID != "" {
		s.locByGoogleID[loc.GoogleID] = loc
	}
}

func (s *storeSession) StageLocationUpdate(loc *model.Location) {
	// 暂存新增的定位原地修改即可，无需再登记更新
	if _, pending := s.locInsertIDs[loc.ID]; pending {
		return
	}
	s.locUpdates[loc.ID] = loc
	if loc.GoogleID != "" {
		s.locByGoogleID[loc.GoogleID] = loc
	}
}

func (s *storeSession) StageMetricInsert(m *model.LocationMetric) {
	s.metrics = append(s.metrics, m)
}

func (s *storeSession) StageTypeInsert(t *model.LocationType) {
	s.types = append(s.types, t)
	s.typesByName[t.Name] = t
}

// Commit 把暂存写入按 类型→定位新增→定位更新→快照 的顺序在一个事务内落库。
// 失败时事务回滚、暂存保留，调用方可重试；成功后清空暂存。
func (s *storeSession) Commit(ctx context.Context) (err error) {
	if s.isEmpty() {
		return nil
	}
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			err = fmt.Errorf("提交过程panic: %v", p)
		}
	}()

	// 1. 类型目录：并发批次可能抢先插入同名标签，唯一索引冲突时静默跳过
	for _, t := range s.types {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(t).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("保存类型目录失败, name: %s: %w", t.Name, err)
		}
	}

	// 2. 新增定位
	for _, loc := range s.locInserts {
		if err := tx.Create(loc).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("保存定位失败, google_id: %s: %w", loc.GoogleID, err)
		}
	}

	// 3. 更新定位（Save全字段写回，verified=false也要落库）
	for _, loc := range s.locUpdates {
		if err := tx.Save(loc).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("更新定位失败, id: %s: %w", loc.ID, err)
		}
	}

	// 4. 指标快照
	for _, m := range s.metrics {
		if err := tx.Create(m).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("保存指标快照失败, location_id: %s: %w", m.LocationID, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	s.reset()
	return nil
}

func (s *storeSession) Rollback() {
	s.reset()
}

func (s *storeSession) Close() error {
	if !s.closed {
		s.reset()
		s.closed = true
	}
	return nil
}

func (s *storeSession) isEmpty() bool {
	return len(s.types) == 0 && len(s.locInserts) == 0 && len(s.locUpdates) == 0 && len(s.metrics) == 0
}

func (s *storeSession) reset() {
	s.locByGoogleID = make(map[string]*model.Location)
	s.locInserts = nil
	s.locInsertIDs = make(map[string]struct{})
	s.locUpdates = make(map[string]*model.Location)
	s.metrics = nil
	s.types = nil
	s.typesByName = make(map[string]*model.LocationType)
}
