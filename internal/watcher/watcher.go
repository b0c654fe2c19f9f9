package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"LocationSync/internal/service"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// 新文件落盘稳定判定：大小连续两次采样不变视为写完
const (
	stablePollInterval = 500 * time.Millisecond
	stableMaxPolls     = 20
)

// FolderWatcher 监听目录中新出现的工作簿文件并触发入库。
// 同一文件的重复触发由IngestService的在途集合去重（监听/扫描/手动接口共用）
type FolderWatcher struct {
	ingest *service.IngestService
	logger *logrus.Logger
	folder string
}

func New(ingest *service.IngestService, logger *logrus.Logger, folder string) *FolderWatcher {
	return &FolderWatcher{
		ingest: ingest,
		logger: logger,
		folder: folder,
	}
}

// Run 先处理目录里已有的文件，再阻塞监听新文件，直到ctx取消
func (w *FolderWatcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听失败: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.folder); err != nil {
		return fmt.Errorf("监听目录失败, folder: %s: %w", w.folder, err)
	}
	w.logger.Infof("开始监听目录: %s", w.folder)

	// 1. 存量文件
	if n, err := w.ingest.ScanFolder(ctx); err != nil {
		w.logger.WithError(err).Error("存量文件扫描失败")
	} else if n > 0 {
		w.logger.Infof("存量文件处理完成，共%d个", n)
	}

	// 2. 增量监听
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !service.IsExcelFile(event.Name) {
				continue
			}
			go w.handleFile(ctx, event.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("文件监听错误")
		}
	}
}

func (w *FolderWatcher) handleFile(ctx context.Context, path string) {
	w.logger.Infof("检测到新文件: %s", path)
	if !w.waitForStable(ctx, path) {
		w.logger.Warnf("文件一直未写完或已消失，跳过: %s", path)
		return
	}
	if _, err := w.ingest.ProcessFile(ctx, path); err != nil {
		if errors.Is(err, service.ErrFileBusy) {
			w.logger.Infof("文件已有处理中的任务，跳过: %s", path)
			return
		}
		w.logger.WithError(err).Errorf("处理文件失败: %s", path)
	}
}

// waitForStable 轮询文件大小直到稳定（写入方可能还在落盘）
func (w *FolderWatcher) waitForStable(ctx context.Context, path string) bool {
	var lastSize int64 = -1
	for i := 0; i < stableMaxPolls; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(stablePollInterval):
		}
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		if info.Size() > 0 && info.Size() == lastSize {
			return true
		}
		lastSize = info.Size()
	}
	return false
}
