package model

import (
	"time"
)

// LocationType 类型目录表：每个不同的类型标签一条，只增不改
type LocationType struct {
	ID        string    `gorm:"column:id;type:varchar(64);primaryKey;comment:内部主键（UUID）"`
	Name      string    `gorm:"column:name;type:varchar(255);uniqueIndex:uk_type_name;not null;comment:类型标签"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
}

func (LocationType) TableName() string { return "location_types" }
