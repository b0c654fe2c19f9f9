package excel

import (
	"fmt"
	"strings"

	"LocationSync/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// TargetColumns 识别的列集合（顺序与原始导出模板一致）
var TargetColumns = []string{
	"name",
	"type",
	"phone",
	"full_address",
	"postal_code",
	"state",
	"latitude",
	"longitude",
	"rating",
	"reviews",
	"reviews_per_score_1",
	"reviews_per_score_2",
	"reviews_per_score_3",
	"reviews_per_score_4",
	"reviews_per_score_5",
	"photos_count",
	"verified",
	"location_link",
	"place_id",
	"google_id",
	"cid",
	"country",
	"country_code",
	"time_zone",
}

// ReadTargetColumns 读工作簿第一张表，按表头把每行投影到识别列上。
// 表里缺的识别列只告警不报错（对应字段由归一化兜底为默认值）。
func ReadTargetColumns(path string, logger *logrus.Logger) ([]model.RawRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("打开工作簿失败: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.WithError(cerr).Warnf("关闭工作簿失败: %s", path)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("工作簿没有工作表: %s", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(rows) == 0 {
		return []model.RawRow{}, nil
	}

	// 1. 表头 → 列下标
	header := rows[0]
	colIndex := make(map[string]int, len(TargetColumns))
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if _, exists := colIndex[name]; !exists {
			colIndex[name] = i
		}
	}
	var missing []string
	for _, col := range TargetColumns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		logger.Warnf("工作簿缺少识别列: %s", strings.Join(missing, ", "))
	}

	// 2. 数据行投影（只保留识别列，缺格不写key，由归一化补默认值）
	out := make([]model.RawRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		raw := model.RawRow{}
		for _, col := range TargetColumns {
			idx, ok := colIndex[col]
			if !ok || idx >= len(row) {
				continue
			}
			raw[col] = row[idx]
		}
		out = append(out, raw)
	}
	return out, nil
}
