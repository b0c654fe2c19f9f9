package interfaces

import (
	"context"

	"LocationSync/internal/model"
)

// StoreSession 批次范围内的存储会话。
// 写入先暂存在会话内，Commit时一次性落库；本会话的查询必须先看到暂存写入
// （同批次重复google_id的后续行要能匹配到前面行暂存的定位），且任何查询都
// 不得触发暂存数据的提前落库。
type StoreSession interface {
	// FindLocationByGoogleID 按google_id查找定位：先查暂存，再查已提交数据；未命中返回 nil, nil
	FindLocationByGoogleID(ctx context.Context, googleID string) (*model.Location, error)
	// FindTypesByNames 按标签批量查类型目录（含暂存），返回 名称→条目
	FindTypesByNames(ctx context.Context, names []string) (map[string]*model.LocationType, error)

	StageLocationInsert(loc *model.Location)
	// StageLocationUpdate 登记已有定位的更新；若该定位本身是暂存新增，则为空操作（原地修改已生效）
	StageLocationUpdate(loc *model.Location)
	StageMetricInsert(m *model.LocationMetric)
	StageTypeInsert(t *model.LocationType)

	// Commit 把全部暂存写入在一个事务内落库，成功后清空暂存；失败时暂存保留（供重试）
	Commit(ctx context.Context) error
	// Rollback 丢弃全部暂存写入
	Rollback()
	Close() error
}

// SessionFactory 为每个批次worker创建独立会话（会话间不共享任何事务状态）
type SessionFactory interface {
	NewSession() StoreSession
}
