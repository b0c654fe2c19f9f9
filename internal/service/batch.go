package service

import (
	"context"
	"sync"
	"time"

	"LocationSync/internal/interfaces"
	"LocationSync/internal/model"
	"LocationSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// 同一错误文本最多打这么多条，之后静默计数，避免坏文件刷爆日志
const maxDuplicateErrLogs = 3

// BatchConfig 批处理参数
type BatchConfig struct {
	BatchSize   int           // 每批行数（最后一批可不足）
	CommitEvery int           // 每暂存N条快照做一次中间提交，约束事务大小与锁持有时长
	MaxWorkers  int           // 并发批次上限，<=1为串行
	RetryCount  int           // 最终提交的重试上限（仅瞬时争用）
	RetryDelay  time.Duration // 重试间隔
}

func (c *BatchConfig) applyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.CommitEvery <= 0 {
		c.CommitEvery = 50
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = 1
	}
	if c.RetryCount <= 0 {
		c.RetryCount = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
}

// BatchCommitter 批次提交器：把整表行切成定长批次逐批入库，
// 行级失败只丢行、中间提交失败只丢窗口、最终提交失败才丢整批。
// 已知边界：并发批次间不保证重复google_id的可见性——同一个全新google_id
// 落在两个并发批次里时，可能各自插入一条定位（与原始实现一致，见DESIGN.md）。
type BatchCommitter struct {
	factory interfaces.SessionFactory
	logger  *logrus.Logger
	cfg     BatchConfig
	retry   RetryPolicy
	now     func() time.Time // 测试可注入
}

func NewBatchCommitter(factory interfaces.SessionFactory, logger *logrus.Logger, cfg BatchConfig) *BatchCommitter {
	cfg.applyDefaults()
	return &BatchCommitter{
		factory: factory,
		logger:  logger,
		cfg:     cfg,
		retry: RetryPolicy{
			MaxAttempts: cfg.RetryCount,
			Delay:       cfg.RetryDelay,
			Retriable:   repository.IsTransient,
		},
		now: time.Now,
	}
}

// ProcessTable 处理一整张归一化表。批次可并发执行，每个worker持有独立会话，
// 只写自己下标的结果槽位；汇总在全部worker结束后单线程完成，不存在共享计数器。
func (c *BatchCommitter) ProcessTable(ctx context.Context, records []*model.Record) *model.FileResult {
	file := &model.FileResult{}
	if len(records) == 0 {
		return file
	}

	// 1. 定长切批
	var batches [][]*model.Record
	for start := 0; start < len(records); start += c.cfg.BatchSize {
		end := start + c.cfg.BatchSize
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}

	// 2. 逐批执行（串行或有界并发）
	results := make([]model.BatchResult, len(batches))
	if c.cfg.MaxWorkers <= 1 || len(batches) == 1 {
		for i, batch := range batches {
			results[i] = c.runBatch(ctx, i, batch)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, c.cfg.MaxWorkers)
		for i, batch := range batches {
			wg.Add(1)
			sem <- struct{}{}
			go func(idx int, rows []*model.Record) {
				defer wg.Done()
				defer func() { <-sem }()
				results[idx] = c.runBatch(ctx, idx, rows)
			}(i, batch)
		}
		wg.Wait()
	}

	// 3. 单线程汇总
	for _, res := range results {
		file.AddBatch(res)
	}
	return file
}

// runBatch 单批次：开会话→批前解析类型目录→按文件顺序逐行对账→
// 按节奏中间提交→最终提交（瞬时争用重试）
func (c *BatchCommitter) runBatch(ctx context.Context, idx int, rows []*model.Record) model.BatchResult {
	res := model.BatchResult{Index: idx}
	session := c.factory.NewSession()
	defer func() {
		if err := session.Close(); err != nil {
			c.logger.WithError(err).Warnf("批次%d关闭会话失败", idx)
		}
	}()

	// pending* 为未提交窗口的计数，提交成功才并入批次结果，
	// 窗口提交失败时整窗计为失败行
	var pending model.UpsertCounts
	pendingRows := 0

	_, typesAdded, err := ResolveTypes(ctx, session, rows)
	if err != nil {
		// 类型目录都查不动，说明会话已不可用，整批失败
		c.logger.WithError(err).Errorf("批次%d类型目录解析失败，整批跳过", idx)
		res.Failed = true
		res.RowsFailed = len(rows)
		return res
	}
	pending.TypesAdded = typesAdded

	sinceCommit := 0
	errLogCounts := make(map[string]int)
	for _, rec := range rows {
		inserted, err := reconcileRowSafe(ctx, session, rec, c.now())
		if err != nil {
			res.RowsFailed++
			c.logRowError(idx, rec.GoogleID, err, errLogCounts)
			continue
		}
		if inserted {
			pending.LocationsAdded++
		} else {
			pending.LocationsUpdated++
		}
		pending.MetricsAdded++
		pendingRows++
		sinceCommit++

		// 中间提交：失败只回滚当前窗口，批次继续
		if sinceCommit >= c.cfg.CommitEvery {
			if err := session.Commit(ctx); err != nil {
				c.logger.WithError(err).Warnf("批次%d中间提交失败，窗口内%d行回滚", idx, pendingRows)
				session.Rollback()
				res.RowsFailed += pendingRows
			} else {
				res.Counts.Merge(pending)
				res.RowsProcessed += pendingRows
			}
			pending = model.UpsertCounts{}
			pendingRows = 0
			sinceCommit = 0
		}
	}

	// 最终提交：仅瞬时争用走重试，致命错误或重试耗尽则整窗回滚、批次计失败
	if err := c.retry.Do(ctx, func() error { return session.Commit(ctx) }); err != nil {
		session.Rollback()
		res.RowsFailed += pendingRows
		res.Failed = true
		c.logger.WithError(err).Errorf("批次%d最终提交失败", idx)
		return res
	}
	res.Counts.Merge(pending)
	res.RowsProcessed += pendingRows
	return res
}

// logRowError 行级错误日志，相同错误文本打满maxDuplicateErrLogs条后抑制
func (c *BatchCommitter) logRowError(idx int, googleID string, err error, counts map[string]int) {
	counts[err.Error()]++
	n := counts[err.Error()]
	if n <= maxDuplicateErrLogs {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"batch":     idx,
			"google_id": googleID,
		}).Warn("行处理失败，已跳过")
		if n == maxDuplicateErrLogs {
			c.logger.Warnf("批次%d相同错误已达%d次，后续同类错误不再打印", idx, maxDuplicateErrLogs)
		}
	}
}
