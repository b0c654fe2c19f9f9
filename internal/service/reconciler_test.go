package service

import (
	"context"
	"testing"
	"time"

	"LocationSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCommit(t *testing.T, session interface{ Commit(context.Context) error }) {
	t.Helper()
	require.NoError(t, session.Commit(context.Background()))
}

func TestReconcileRowInsertsNewLocation(t *testing.T) {
	store := newMemStore()
	session := store.NewSession()
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	rec := &model.Record{GoogleID: "g1", Name: "Cafe A", Rating: 4.5, Reviews: 10, ReviewsPerScore5: 7, Verified: true}
	inserted, err := ReconcileRow(context.Background(), session, rec, now)
	require.NoError(t, err)
	assert.True(t, inserted)
	mustCommit(t, session)

	loc := store.committedByGoogleID("g1")
	require.NotNil(t, loc)
	assert.Equal(t, "Cafe A", loc.Name)
	assert.True(t, loc.Verified)
	require.NotNil(t, loc.MetricID)

	metrics := store.metricsOf(loc.ID)
	require.Len(t, metrics, 1)
	assert.Equal(t, *loc.MetricID, metrics[0].ID)
	assert.Equal(t, 4.5, metrics[0].Rating)
	assert.Equal(t, 10, metrics[0].Reviews)
	assert.Equal(t, 7, metrics[0].ReviewsPerScore5)
	assert.Equal(t, 2026, metrics[0].CreateYear)
	assert.Equal(t, 8, metrics[0].CreateMonth)
}

// google_id为空的行无法对账，永远新增
func TestReconcileRowEmptyGoogleIDAlwaysInserts(t *testing.T) {
	store := newMemStore()
	session := store.NewSession()
	now := time.Now()

	for i := 0; i < 3; i++ {
		inserted, err := ReconcileRow(context.Background(), session, &model.Record{Name: "NoID"}, now)
		require.NoError(t, err)
		assert.True(t, inserted)
	}
	mustCommit(t, session)
	assert.Equal(t, 3, store.locationCount())
	assert.Equal(t, 3, store.metricCount())
}

// 空字段不覆盖旧值，非空覆盖
func TestReconcileRowEmptyFieldPreservation(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	s1 := store.NewSession()
	_, err := ReconcileRow(ctx, s1, &model.Record{GoogleID: "g1", Name: "Cafe A", Phone: "555-0100", Latitude: 41.1}, time.Now())
	require.NoError(t, err)
	mustCommit(t, s1)

	// 第二次出现：phone为空 → 保留；name非空 → 覆盖
	s2 := store.NewSession()
	inserted, err := ReconcileRow(ctx, s2, &model.Record{GoogleID: "g1", Name: "Cafe A Renamed", Phone: ""}, time.Now())
	require.NoError(t, err)
	assert.False(t, inserted)
	mustCommit(t, s2)

	loc := store.committedByGoogleID("g1")
	assert.Equal(t, "Cafe A Renamed", loc.Name)
	assert.Equal(t, "555-0100", loc.Phone)
	assert.Equal(t, 41.1, loc.Latitude) // 0值坐标同样视为"无新信息"

	// 第三次出现：phone非空 → 覆盖
	s3 := store.NewSession()
	_, err = ReconcileRow(ctx, s3, &model.Record{GoogleID: "g1", Phone: "555-0199"}, time.Now())
	require.NoError(t, err)
	mustCommit(t, s3)
	assert.Equal(t, "555-0199", store.committedByGoogleID("g1").Phone)
}

// verified是唯一的例外：false也无条件覆盖
func TestReconcileRowVerifiedAlwaysOverwrites(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	s1 := store.NewSession()
	_, err := ReconcileRow(ctx, s1, &model.Record{GoogleID: "g1", Name: "Cafe A", Verified: true}, time.Now())
	require.NoError(t, err)
	mustCommit(t, s1)
	require.True(t, store.committedByGoogleID("g1").Verified)

	s2 := store.NewSession()
	_, err = ReconcileRow(ctx, s2, &model.Record{GoogleID: "g1", Verified: false}, time.Now())
	require.NoError(t, err)
	mustCommit(t, s2)
	assert.False(t, store.committedByGoogleID("g1").Verified)
}

// 每次出现都新建快照，latest指针换到最新一条，历史快照不动
func TestReconcileRowSnapshotAccumulation(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	s1 := store.NewSession()
	_, err := ReconcileRow(ctx, s1, &model.Record{GoogleID: "g1", Rating: 4.0}, time.Now())
	require.NoError(t, err)
	mustCommit(t, s1)
	first := store.committedByGoogleID("g1")

	s2 := store.NewSession()
	_, err = ReconcileRow(ctx, s2, &model.Record{GoogleID: "g1", Rating: 4.2}, time.Now())
	require.NoError(t, err)
	mustCommit(t, s2)

	second := store.committedByGoogleID("g1")
	assert.Equal(t, first.ID, second.ID)
	metrics := store.metricsOf(first.ID)
	require.Len(t, metrics, 2)
	assert.NotEqual(t, *first.MetricID, *second.MetricID)
}

// 同会话内的重复google_id要能命中前面行暂存的定位（未提交也可见）
func TestReconcileRowSeesPendingWrites(t *testing.T) {
	store := newMemStore()
	session := store.NewSession()
	ctx := context.Background()

	inserted, err := ReconcileRow(ctx, session, &model.Record{GoogleID: "g1", Name: "Row1"}, time.Now())
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = ReconcileRow(ctx, session, &model.Record{GoogleID: "g1", Name: "Row2"}, time.Now())
	require.NoError(t, err)
	assert.False(t, inserted, "第二行必须对账到第一行暂存的定位")

	mustCommit(t, session)
	assert.Equal(t, 1, store.locationCount())
	loc := store.committedByGoogleID("g1")
	assert.Equal(t, "Row2", loc.Name)
	assert.Len(t, store.metricsOf(loc.ID), 2)
}
