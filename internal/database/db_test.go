package database

import (
	"database/sql"
	"path/filepath"
	"testing"

	"firewall_feature_collector/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndCountRows(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "res.db")
	db, err := InitDB(dbPath, "task_test")
	require.NoError(t, err)
	defer db.Close()

	rows := []model.FeatureRow{
		{
			Timestamp:     1700000000,
			Host:          "192.168.56.10",
			AvgLatency:    sql.NullFloat64{Float64: 2.345, Valid: true},
			ICMPReachable: 1,
			SynAckRatio:   0.6,
			FirewallLabel: sql.NullInt64{Int64: 2, Valid: true},
		},
		{Timestamp: 1700000001, Host: "192.168.56.11"},
	}

	require.NoError(t, SaveRows(db, "task_test", rows))
	// 同一目标的重复采集是独立样本，不去重
	require.NoError(t, SaveRows(db, "task_test", rows[:1]))

	count, err := CountRows(db, "task_test")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSaveRowsNullFields(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "res.db")
	db, err := InitDB(dbPath, "task_null")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, SaveRows(db, "task_null", []model.FeatureRow{
		{Timestamp: 1700000000, Host: "10.9.9.9"},
	}))

	var latency sql.NullFloat64
	var label sql.NullInt64
	err = db.QueryRow("SELECT avg_latency, firewall_label FROM task_null").Scan(&latency, &label)
	require.NoError(t, err)

	assert.False(t, latency.Valid)
	assert.False(t, label.Valid)
}
