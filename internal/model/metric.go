package model

import (
	"time"

	"gorm.io/datatypes"
)

// LocationMetric 指标快照表：一行入库一条，落库后不再修改
// location_id 指回所属定位，locations.metric_id 反向指向最新一条
type LocationMetric struct {
	ID               string         `gorm:"column:id;type:varchar(64);primaryKey;comment:内部主键（UUID）"`
	LocationID       string         `gorm:"column:location_id;type:varchar(64);index:idx_metric_location;comment:所属定位ID"`
	Rating           float64        `gorm:"column:rating;type:numeric(19,4);default:0;comment:评分"`
	Reviews          int            `gorm:"column:reviews;type:int;default:0;comment:评论总数"`
	ReviewsPerScore1 int            `gorm:"column:reviews_per_score_1;type:int;default:0;comment:1星评论数"`
	ReviewsPerScore2 int            `gorm:"column:reviews_per_score_2;type:int;default:0;comment:2星评论数"`
	ReviewsPerScore3 int            `gorm:"column:reviews_per_score_3;type:int;default:0;comment:3星评论数"`
	ReviewsPerScore4 int            `gorm:"column:reviews_per_score_4;type:int;default:0;comment:4星评论数"`
	ReviewsPerScore5 int            `gorm:"column:reviews_per_score_5;type:int;default:0;comment:5星评论数"`
	PhotosCount      int            `gorm:"column:photos_count;type:int;default:0;comment:照片数"`
	SourceRow        datatypes.JSON `gorm:"column:source_row;type:jsonb;comment:归一化后的原始行（审计用）"`
	CreateDate       time.Time      `gorm:"column:create_date;type:timestamp;comment:快照时间"`
	CreateYear       int            `gorm:"column:create_year;type:int;comment:快照年份（分区/报表用）"`
	CreateMonth      int            `gorm:"column:create_month;type:int;comment:快照月份（分区/报表用）"`
}

func (LocationMetric) TableName() string { return "location_metrics" }
