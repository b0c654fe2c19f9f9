package service

import (
	"context"
	"fmt"

	"LocationSync/internal/interfaces"
	"LocationSync/internal/model"

	"github.com/google/uuid"
)

// ResolveTypes 批次开始前一次性解析类型目录：收集本批次出现的全部非空类型标签，
// 一次查询找出已有条目，缺失的暂存新增。逐行查询改为批前解析，既省N次往返，
// 也缩小并发批次间重复插入同名标签的窗口（跨批次残余竞态由存储层唯一索引兜底）。
// 返回 标签→条目 以及新建条目数。
func ResolveTypes(ctx context.Context, session interfaces.StoreSession, records []*model.Record) (map[string]*model.LocationType, int, error) {
	seen := make(map[string]struct{})
	labels := make([]string, 0)
	for _, rec := range records {
		if rec.Type == "" {
			continue
		}
		if _, ok := seen[rec.Type]; ok {
			continue
		}
		seen[rec.Type] = struct{}{}
		labels = append(labels, rec.Type)
	}
	if len(labels) == 0 {
		return map[string]*model.LocationType{}, 0, nil
	}

	found, err := session.FindTypesByNames(ctx, labels)
	if err != nil {
		return nil, 0, fmt.Errorf("解析类型目录失败: %w", err)
	}

	created := 0
	for _, name := range labels {
		if _, ok := found[name]; ok {
			continue
		}
		t := &model.LocationType{
			ID:   uuid.NewString(),
			Name: name,
		}
		session.StageTypeInsert(t)
		found[name] = t
		created++
	}
	return found, created, nil
}
