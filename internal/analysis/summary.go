package analysis

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// HostSummary 单个目标在本次运行中的采集概况
type HostSummary struct {
	Host        string
	Samples     int  // 采集到的样本数
	Reachable   int  // icmp可达的样本数
	Labeled     int  // 带标签的样本数
	EmptyProbes bool // 所有样本都完全无探测数据，建议复采
}

// SummarizeHosts 按目标汇总采集质量
// 完全无数据的目标（不可达且无时延/扫描/响应特征）会被标记出来
func SummarizeHosts(db *sql.DB, tableName string) ([]HostSummary, error) {
	query := fmt.Sprintf(`
		SELECT host, COUNT(*) AS samples,
		       SUM(icmp_reachable) AS reachable,
		       SUM(CASE WHEN firewall_label IS NOT NULL THEN 1 ELSE 0 END) AS labeled,
		       SUM(CASE WHEN icmp_reachable = 0 AND avg_latency IS NULL
		                 AND scan_time IS NULL AND response_time IS NULL
		            THEN 1 ELSE 0 END) AS empty_samples
		FROM %s
		GROUP BY host
		ORDER BY host
	`, tableName)

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("查询采集概况失败: %w", err)
	}
	defer rows.Close()

	var results []HostSummary
	for rows.Next() {
		var s HostSummary
		var emptySamples int
		if err := rows.Scan(&s.Host, &s.Samples, &s.Reachable, &s.Labeled, &emptySamples); err != nil {
			continue
		}
		s.EmptyProbes = s.Samples > 0 && emptySamples == s.Samples
		results = append(results, s)
	}

	return results, rows.Err()
}

// ExportSummary 导出采集概况CSV，供人工检查哪些目标需要复采
func ExportSummary(summaries []HostSummary, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"host", "samples", "reachable", "labeled", "need_recollect", "generated_at"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("写入概况表头失败: %w", err)
	}

	generatedAt := time.Now().Format("2006-01-02 15:04:05")
	for _, s := range summaries {
		needRecollect := "0"
		if s.EmptyProbes {
			needRecollect = "1"
		}
		row := []string{
			s.Host,
			strconv.Itoa(s.Samples),
			strconv.Itoa(s.Reachable),
			strconv.Itoa(s.Labeled),
			needRecollect,
			generatedAt,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("写入概况数据行失败: %w", err)
		}
	}

	log.Printf("[*] 采集概况已导出到: %s", outputPath)
	return nil
}
