package model

// FileStatus 单文件处理结果状态
type FileStatus string

const (
	FileSuccess FileStatus = "success" // 所有批次均提交成功
	FilePartial FileStatus = "partial" // 部分批次成功（成功部分已入库）
	FileFailed  FileStatus = "failed"  // 所有批次失败，文件保留原地待排查
)

// UpsertCounts 入库计数（批次与文件共用同一形状）
type UpsertCounts struct {
	LocationsAdded   int `json:"locations_added"`
	LocationsUpdated int `json:"locations_updated"`
	MetricsAdded     int `json:"metrics_added"`
	TypesAdded       int `json:"types_added"`
	TypesUpdated     int `json:"types_updated"` // 类型目录只增不改，恒为0，保留字段对齐结果形状
}

// Merge 累加另一份计数
func (c *UpsertCounts) Merge(o UpsertCounts) {
	c.LocationsAdded += o.LocationsAdded
	c.LocationsUpdated += o.LocationsUpdated
	c.MetricsAdded += o.MetricsAdded
	c.TypesAdded += o.TypesAdded
	c.TypesUpdated += o.TypesUpdated
}

// BatchResult 单批次结果：批次worker返回的不可变值，汇总在所有worker结束后单线程进行
type BatchResult struct {
	Index         int          `json:"index"`
	Counts        UpsertCounts `json:"counts"`
	RowsProcessed int          `json:"rows_processed"`
	RowsFailed    int          `json:"rows_failed"`
	Failed        bool         `json:"failed"` // 最终提交失败（或会话不可用），整批计为失败
}

// FileResult 单文件汇总结果
type FileResult struct {
	Counts        UpsertCounts `json:"counts"`
	TotalBatches  int          `json:"total_batches"`
	ErrorBatches  int          `json:"error_batches"`
	RowsProcessed int          `json:"rows_processed"`
	RowsFailed    int          `json:"rows_failed"`
}

// AddBatch 把一个批次结果并入文件汇总
func (r *FileResult) AddBatch(b BatchResult) {
	r.TotalBatches++
	if b.Failed {
		r.ErrorBatches++
	}
	r.Counts.Merge(b.Counts)
	r.RowsProcessed += b.RowsProcessed
	r.RowsFailed += b.RowsFailed
}

// Status 文件级结论：全部批次成功/部分成功/全部失败
func (r *FileResult) Status() FileStatus {
	switch {
	case r.TotalBatches > 0 && r.ErrorBatches == r.TotalBatches:
		return FileFailed
	case r.ErrorBatches > 0:
		return FilePartial
	default:
		return FileSuccess
	}
}
