package model

// RawRow 工作表原始行：列名 → 单元格值（类型不可靠：字符串/数字/布尔/缺失）
type RawRow map[string]interface{}

// Record 归一化后的行记录：每个识别列都有确定类型的值，不存在缺失字段
type Record struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Phone        string `json:"phone"`
	FullAddress  string `json:"full_address"`
	PostalCode   string `json:"postal_code"`
	State        string `json:"state"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code"`
	TimeZone     string `json:"time_zone"`
	LocationLink string `json:"location_link"`
	PlaceID      string `json:"place_id"`
	GoogleID     string `json:"google_id"`
	CID          string `json:"cid"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Rating    float64 `json:"rating"`

	Reviews          int `json:"reviews"`
	ReviewsPerScore1 int `json:"reviews_per_score_1"`
	ReviewsPerScore2 int `json:"reviews_per_score_2"`
	ReviewsPerScore3 int `json:"reviews_per_score_3"`
	ReviewsPerScore4 int `json:"reviews_per_score_4"`
	ReviewsPerScore5 int `json:"reviews_per_score_5"`
	PhotosCount      int `json:"photos_count"`

	Verified bool `json:"verified"`
}
