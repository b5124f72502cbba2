package util

import (
	"fmt"
	"time"
)

// GenerateTaskID 生成统一的任务ID，例如 20250824_56789012
func GenerateTaskID() string {
	now := time.Now()
	dateStr := now.Format("20060102")
	tsStr := fmt.Sprintf("%d", now.Unix())
	shortTS := tsStr[len(tsStr)-8:]
	return fmt.Sprintf("%s_%s", dateStr, shortTS)
}

// GenerateTableName 生成本次运行的结果表名
func GenerateTableName(taskID string) string {
	return fmt.Sprintf("task_%s", taskID)
}

// GenerateCSVFileName 生成带任务ID的CSV文件名
func GenerateCSVFileName(taskID, suffix string) string {
	return fmt.Sprintf("%s_%s.csv", taskID, suffix)
}
