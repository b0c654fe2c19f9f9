package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"LocationSync/internal/model"
)

// NormalizeRow 把原始行转为全类型化记录。全函数无失败路径：
// 每个识别字段都会得到一个值，最坏情况是整条记录全为默认值。
func NormalizeRow(raw model.RawRow) *model.Record {
	return &model.Record{
		Name:         cleanString(raw["name"]),
		Type:         cleanString(raw["type"]),
		Phone:        cleanString(raw["phone"]),
		FullAddress:  cleanString(raw["full_address"]),
		PostalCode:   cleanString(raw["postal_code"]),
		State:        cleanString(raw["state"]),
		Country:      cleanString(raw["country"]),
		CountryCode:  cleanString(raw["country_code"]),
		TimeZone:     cleanString(raw["time_zone"]),
		LocationLink: cleanString(raw["location_link"]),
		PlaceID:      cleanString(raw["place_id"]),
		GoogleID:     cleanString(raw["google_id"]),
		CID:          cleanString(raw["cid"]),

		Latitude:  toFloat(raw["latitude"]),
		Longitude: toFloat(raw["longitude"]),
		Rating:    toFloat(raw["rating"]),

		Reviews:          toInt(raw["reviews"]),
		ReviewsPerScore1: toInt(raw["reviews_per_score_1"]),
		ReviewsPerScore2: toInt(raw["reviews_per_score_2"]),
		ReviewsPerScore3: toInt(raw["reviews_per_score_3"]),
		ReviewsPerScore4: toInt(raw["reviews_per_score_4"]),
		ReviewsPerScore5: toInt(raw["reviews_per_score_5"]),
		PhotosCount:      toInt(raw["photos_count"]),

		Verified: toBool(raw["verified"]),
	}
}

// cleanString 字符串字段归一化：缺失→空串；"nan"/"none"（不区分大小写）→空串；
// 数字转文本产生的尾缀".0"（表格数值列串化的产物）剥掉
func cleanString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(val)
		switch strings.ToLower(s) {
		case "nan", "none":
			return ""
		}
		return stripFloatArtifact(s)
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) && !math.IsNaN(val) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}

// stripFloatArtifact "12345.0" → "12345"（仅当小数点前全为数字时）
func stripFloatArtifact(s string) string {
	if !strings.HasSuffix(s, ".0") {
		return s
	}
	head := strings.TrimSuffix(s, ".0")
	head = strings.TrimPrefix(head, "-")
	if head == "" {
		return s
	}
	for _, r := range head {
		if r < '0' || r > '9' {
			return s
		}
	}
	return strings.TrimSuffix(s, ".0")
}

// toFloat 浮点字段：解析失败或缺失一律回落0.0
func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0
		}
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		s := strings.TrimSpace(val)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

// toInt 整数字段：解析失败或缺失一律回落0（"10.0"这类数值串按浮点截断）
func toInt(v interface{}) int {
	switch val := v.(type) {
	case nil:
		return 0
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0
		}
		return int(val)
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int(f)
		}
		return 0
	default:
		return 0
	}
}

// toBool 布尔字段：非零数值或可解析的真值→true，其余（含解析失败）→false
func toBool(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0 && !math.IsNaN(val)
	case int:
		return val != 0
	case int64:
		return val != 0
	case string:
		s := strings.TrimSpace(val)
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f != 0 && !math.IsNaN(f)
		}
		return false
	default:
		return false
	}
}
