package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"LocationSync/internal/config"
	"LocationSync/internal/excel"
	"LocationSync/internal/interfaces"
	"LocationSync/internal/model"
	"LocationSync/internal/utils/fileutil"

	"github.com/sirupsen/logrus"
)

// ErrFileBusy 该文件正被另一个触发源（监听事件/目录扫描/手动接口）处理
var ErrFileBusy = errors.New("文件正在处理中")

// IngestService 文件编排：读表→归一化→批量入库→归档，并输出文件级结论。
// 在途文件集合放在这里而不是监听器里，手动触发与监听事件竞争同一文件时
// 也只会处理一次。
type IngestService struct {
	committer     *BatchCommitter
	logger        *logrus.Logger
	watchFolder   string
	archiveFolder string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewIngestService(factory interfaces.SessionFactory, logger *logrus.Logger, cfg *config.Config) *IngestService {
	return &IngestService{
		committer: NewBatchCommitter(factory, logger, BatchConfig{
			BatchSize:   cfg.Ingest.BatchSize,
			CommitEvery: cfg.Ingest.CommitEvery,
			MaxWorkers:  cfg.Ingest.MaxWorkers,
			RetryCount:  cfg.Ingest.RetryCount,
			RetryDelay:  cfg.Ingest.RetryDelay,
		}),
		logger:        logger,
		watchFolder:   cfg.Ingest.WatchFolder,
		archiveFolder: cfg.Ingest.ArchiveFolder,
		inFlight:      make(map[string]struct{}),
	}
}

// markInFlight 登记在途文件，已在处理中返回false
func (s *IngestService) markInFlight(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[path]; busy {
		return false
	}
	s.inFlight[path] = struct{}{}
	return true
}

func (s *IngestService) releaseInFlight(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, path)
}

// IsExcelFile 是否为受理的工作簿文件
func IsExcelFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls")
}

// ProcessFile 处理单个工作簿文件。成功或部分成功都归档；
// 全部批次失败时文件留在原地待人工排查。读不开文件直接返回错误（不归档）。
// 同一文件已在处理中时返回ErrFileBusy。
func (s *IngestService) ProcessFile(ctx context.Context, path string) (*model.FileResult, error) {
	path = filepath.Clean(path)
	if !s.markInFlight(path) {
		return nil, fmt.Errorf("%w: %s", ErrFileBusy, path)
	}
	defer s.releaseInFlight(path)

	start := time.Now()
	s.logger.Infof("开始处理文件: %s", path)

	// 1. 读表
	rawRows, err := excel.ReadTargetColumns(path, s.logger)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败, path: %s: %w", path, err)
	}
	if len(rawRows) == 0 {
		s.logger.Warnf("文件无数据行: %s", path)
	}

	// 2. 整表归一化（纯转换，不会失败）
	records := make([]*model.Record, len(rawRows))
	for i, raw := range rawRows {
		records[i] = NormalizeRow(raw)
	}

	// 3. 批量入库
	result := s.committer.ProcessTable(ctx, records)
	status := result.Status()
	s.logger.WithFields(logrus.Fields{
		"file":              filepath.Base(path),
		"status":            status,
		"locations_added":   result.Counts.LocationsAdded,
		"locations_updated": result.Counts.LocationsUpdated,
		"metrics_added":     result.Counts.MetricsAdded,
		"types_added":       result.Counts.TypesAdded,
		"types_updated":     result.Counts.TypesUpdated,
		"rows_failed":       result.RowsFailed,
		"error_batches":     result.ErrorBatches,
		"total_batches":     result.TotalBatches,
		"elapsed":           time.Since(start).Round(time.Millisecond).String(),
	}).Info("文件处理完成")

	// 4. 归档（全败不归档）
	if status != model.FileFailed {
		if err := s.archive(path); err != nil {
			s.logger.WithError(err).Errorf("归档失败: %s", path)
		}
	} else {
		s.logger.Errorf("文件全部批次失败，保留原地: %s", path)
	}
	return result, nil
}

// ScanFolder 处理监听目录下已有的全部工作簿文件，返回处理过的文件数
func (s *IngestService) ScanFolder(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.watchFolder)
	if err != nil {
		return 0, fmt.Errorf("读取监听目录失败: %w", err)
	}
	processed := 0
	for _, entry := range entries {
		if entry.IsDir() || !IsExcelFile(entry.Name()) {
			continue
		}
		path := filepath.Join(s.watchFolder, entry.Name())
		if _, err := s.ProcessFile(ctx, path); err != nil {
			if errors.Is(err, ErrFileBusy) {
				s.logger.Infof("文件已有处理中的任务，跳过: %s", path)
			} else {
				s.logger.WithError(err).Errorf("处理文件失败: %s", path)
			}
			continue
		}
		processed++
	}
	return processed, nil
}

// archive 把处理完的文件移入归档目录，重名时附加时间戳避免覆盖
func (s *IngestService) archive(path string) error {
	if err := fileutil.EnsureDir(s.archiveFolder); err != nil {
		return fmt.Errorf("创建归档目录失败: %w", err)
	}
	name := filepath.Base(path)
	dst := filepath.Join(s.archiveFolder, name)
	if _, err := os.Stat(dst); err == nil {
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		dst = filepath.Join(s.archiveFolder, fmt.Sprintf("%s_%s%s", stem, time.Now().Format("20060102_150405"), ext))
	}
	if err := fileutil.MoveFile(path, dst); err != nil {
		return err
	}
	s.logger.Infof("文件已归档: %s -> %s", path, dst)
	return nil
}
