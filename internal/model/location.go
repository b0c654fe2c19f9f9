package model

import (
	"time"
)

// Location 商户定位主表（同一google_id多次出现只保留一条，重复出现时原地更新）
type Location struct {
	ID           string    `gorm:"column:id;type:varchar(64);primaryKey;comment:内部主键（UUID）"`
	MetricID     *string   `gorm:"column:metric_id;type:varchar(64);comment:最新指标快照ID"`
	PlaceID      string    `gorm:"column:place_id;type:varchar(255);comment:外部PlaceID"`
	GoogleID     string    `gorm:"column:google_id;type:varchar(255);index:idx_google_id;comment:外部唯一ID（去重键）"`
	CID          string    `gorm:"column:cid;type:varchar(64);comment:外部CID（十进制字符串，可能超出int64）"`
	Name         string    `gorm:"column:name;type:varchar(1000);comment:商户名称"`
	Type         string    `gorm:"column:type;type:varchar(255);comment:类型标签（明文，非外键）"`
	Phone        string    `gorm:"column:phone;type:varchar(255);comment:电话"`
	FullAddress  string    `gorm:"column:full_address;type:varchar(4000);comment:完整地址"`
	PostalCode   string    `gorm:"column:postal_code;type:varchar(32);comment:邮编"`
	State        string    `gorm:"column:state;type:varchar(255);comment:州/省"`
	Country      string    `gorm:"column:country;type:varchar(255);comment:国家"`
	CountryCode  string    `gorm:"column:country_code;type:varchar(16);comment:国家代码"`
	TimeZone     string    `gorm:"column:time_zone;type:varchar(64);comment:时区"`
	Latitude     float64   `gorm:"column:latitude;type:numeric(19,4);default:0;comment:纬度"`
	Longitude    float64   `gorm:"column:longitude;type:numeric(19,4);default:0;comment:经度"`
	Verified     bool      `gorm:"column:verified;type:boolean;default:false;comment:是否已认证"`
	LocationLink string    `gorm:"column:location_link;type:text;comment:定位链接"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

func (Location) TableName() string { return "locations" }
