package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"LocationSync/internal/interfaces"
	"LocationSync/internal/model"

	"github.com/google/uuid"
)

// ReconcileRow 单行对账：按google_id判定新增还是更新，并且无论哪种情况都
// 生成一条新的指标快照，双向关联（快照→定位，定位→最新快照）。
// 所有暂存操作集中在行处理的最后，任何失败都不会留下半行写入。
// 返回 inserted=true 表示本行新建了定位。
func ReconcileRow(ctx context.Context, session interfaces.StoreSession, rec *model.Record, now time.Time) (inserted bool, err error) {
	// 1. 按google_id匹配已有定位（含同批次暂存的，见StoreSession约定）；
	//    google_id为空的行无法对账，一律按新增处理
	var existing *model.Location
	if rec.GoogleID != "" {
		existing, err = session.FindLocationByGoogleID(ctx, rec.GoogleID)
		if err != nil {
			return false, err
		}
	}

	// 2. 每行必建一条快照
	metric := &model.LocationMetric{
		ID:               uuid.NewString(),
		Rating:           rec.Rating,
		Reviews:          rec.Reviews,
		ReviewsPerScore1: rec.ReviewsPerScore1,
		ReviewsPerScore2: rec.ReviewsPerScore2,
		ReviewsPerScore3: rec.ReviewsPerScore3,
		ReviewsPerScore4: rec.ReviewsPerScore4,
		ReviewsPerScore5: rec.ReviewsPerScore5,
		PhotosCount:      rec.PhotosCount,
		CreateDate:       now,
		CreateYear:       now.Year(),
		CreateMonth:      int(now.Month()),
	}
	if payload, jerr := json.Marshal(rec); jerr == nil {
		metric.SourceRow = payload
	}

	if existing != nil {
		// 3. 命中：原地更新（空值不覆盖），最新快照指针换成新快照
		applyRecord(existing, rec)
		existing.MetricID = &metric.ID
		metric.LocationID = existing.ID
		session.StageLocationUpdate(existing)
		session.StageMetricInsert(metric)
		return false, nil
	}

	// 4. 未命中：新建定位，全字段取归一化值
	loc := newLocation(rec)
	loc.MetricID = &metric.ID
	metric.LocationID = loc.ID
	session.StageLocationInsert(loc)
	session.StageMetricInsert(metric)
	return true, nil
}

// applyRecord 把记录套到已有定位上：非空来值覆盖，空串/0视为"无新信息"保留旧值。
// verified是唯一例外：无条件覆盖，false也照写。
func applyRecord(loc *model.Location, rec *model.Record) {
	setString(&loc.PlaceID, rec.PlaceID)
	setString(&loc.CID, rec.CID)
	setString(&loc.Name, rec.Name)
	setString(&loc.Type, rec.Type)
	setString(&loc.Phone, rec.Phone)
	setString(&loc.FullAddress, rec.FullAddress)
	setString(&loc.PostalCode, rec.PostalCode)
	setString(&loc.State, rec.State)
	setString(&loc.Country, rec.Country)
	setString(&loc.CountryCode, rec.CountryCode)
	setString(&loc.TimeZone, rec.TimeZone)
	setString(&loc.LocationLink, rec.LocationLink)
	if rec.Latitude != 0 {
		loc.Latitude = rec.Latitude
	}
	if rec.Longitude != 0 {
		loc.Longitude = rec.Longitude
	}
	loc.Verified = rec.Verified
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func newLocation(rec *model.Record) *model.Location {
	return &model.Location{
		ID:           uuid.NewString(),
		PlaceID:      rec.PlaceID,
		GoogleID:     rec.GoogleID,
		CID:          rec.CID,
		Name:         rec.Name,
		Type:         rec.Type,
		Phone:        rec.Phone,
		FullAddress:  rec.FullAddress,
		PostalCode:   rec.PostalCode,
		State:        rec.State,
		Country:      rec.Country,
		CountryCode:  rec.CountryCode,
		TimeZone:     rec.TimeZone,
		Latitude:     rec.Latitude,
		Longitude:    rec.Longitude,
		Verified:     rec.Verified,
		LocationLink: rec.LocationLink,
	}
}

// reconcileRowSafe 行级隔离封装：panic转error，坏行不拖垮整个批次
func reconcileRowSafe(ctx context.Context, session interfaces.StoreSession, rec *model.Record, now time.Time) (inserted bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("行处理panic: %v", p)
		}
	}()
	return ReconcileRow(ctx, session, rec, now)
}
