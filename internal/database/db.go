package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"firewall_feature_collector/internal/model"

	_ "modernc.org/sqlite"
)

// InitDB 初始化 SQLite 数据库和本次任务的结果表
// 每次运行一张表（task_<taskID>），同一库可累积多次运行的结果
func InitDB(dbPath string, tableName string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		os.MkdirAll(dir, os.ModePerm)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	createStmt := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp INTEGER,
    host TEXT,
    avg_latency REAL,
    packet_loss REAL,
    ttl_return INTEGER,
    icmp_reachable INTEGER,
    filtered_ports_count INTEGER,
    scan_time REAL,
    syn_ack_ratio REAL,
    tcp_reset_ratio REAL,
    response_time REAL,
    header_modified INTEGER,
    firewall_label INTEGER
);
`, tableName)

	if _, err := db.Exec(createStmt); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// SaveRows 事务批量写入一轮采集的特征行
// 每行都是独立样本，不做去重；缺失值落库为NULL
func SaveRows(db *sql.DB, tableName string, rows []model.FeatureRow) error {
	insertSQL := fmt.Sprintf(`
INSERT INTO %s (timestamp, host, avg_latency, packet_loss, ttl_return, icmp_reachable,
    filtered_ports_count, scan_time, syn_ack_ratio, tcp_reset_ratio,
    response_time, header_modified, firewall_label)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`, tableName)

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.Exec(
			r.Timestamp,
			r.Host,
			r.AvgLatency,
			r.PacketLoss,
			r.TTLReturn,
			r.ICMPReachable,
			r.FilteredPortsCount,
			r.ScanTime,
			r.SynAckRatio,
			r.TCPResetRatio,
			r.ResponseTime,
			r.HeaderModified,
			r.FirewallLabel,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("写入样本失败 host=%s: %w", r.Host, err)
		}
	}

	return tx.Commit()
}

// CountRows 查询表内样本总数，用于运行结束时的汇总统计
func CountRows(db *sql.DB, tableName string) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", tableName)
	if err := db.QueryRow(query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
