package runner

import (
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"firewall_feature_collector/internal/analysis"
	"firewall_feature_collector/internal/collector"
	"firewall_feature_collector/internal/config"
	"firewall_feature_collector/internal/database"
	"firewall_feature_collector/internal/exporter"
	"firewall_feature_collector/internal/loader"
	"firewall_feature_collector/internal/model"
	"firewall_feature_collector/internal/probe"
	"firewall_feature_collector/internal/util"

	"github.com/remeh/sizedwaitgroup"
)

// RunAll 检查外部工具后执行完整采集流程
func RunAll(cfg *config.Config) error {
	if err := probe.CheckRequiredTools(); err != nil {
		return err
	}
	probe.WarnIfNotRoot()

	return Run(cfg, probe.CommandRunner{})
}

// Run 用指定的执行器执行完整采集流程（测试注入假执行器）
// 按配置重复repeat轮，第一轮重建数据集文件，后续轮次追加；
// 全程零样本视为运行失败
func Run(cfg *config.Config, runner probe.Runner) error {
	targets, err := resolveTargets(cfg)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("没有采集目标，请在配置中填写 input.targets 或 input.target_file")
	}
	fmt.Printf("[*] 共加载目标: %d 个 | 并发: %d | 重复: %d 轮\n",
		len(targets), cfg.Collect.Parallel, cfg.Collect.Repeat)

	c := collector.New(runner, collector.Options{
		Labels:    cfg.Labels,
		ProbeRate: cfg.Collect.ProbeRate,
	})

	// 可选的sqlite落库
	var db *dbHandle
	if cfg.Output.Database != "" {
		db, err = openDB(cfg.Output.Database)
		if err != nil {
			return fmt.Errorf("数据库初始化失败: %w", err)
		}
		defer db.Close()
	}

	interval := time.Duration(cfg.Collect.IntervalSeconds) * time.Second
	totalCollected := 0

	for iteration := 0; iteration < cfg.Collect.Repeat; iteration++ {
		if cfg.Collect.Repeat > 1 {
			fmt.Printf("[*] 第 %d/%d 轮采集开始\n", iteration+1, cfg.Collect.Repeat)
		}

		rows := collectBatch(c, targets, cfg.Collect.Parallel)

		if len(rows) == 0 {
			log.Printf("[!] 第 %d 轮未采集到任何样本", iteration+1)
		} else {
			// 第一轮重建文件，后续轮次追加
			if err := exporter.WriteCSV(rows, cfg.Output.Dataset, iteration > 0); err != nil {
				return fmt.Errorf("导出CSV失败: %w", err)
			}
			if db != nil {
				if err := database.SaveRows(db.conn, db.tableName, rows); err != nil {
					log.Printf("[!] sqlite落库失败: %v", err)
				}
			}
			totalCollected += len(rows)
			fmt.Printf("[*] 第 %d 轮完成: %d 个样本已写入 %s\n", iteration+1, len(rows), cfg.Output.Dataset)
		}

		// 迭代间暂停，减轻目标负载
		if iteration < cfg.Collect.Repeat-1 {
			fmt.Printf("[*] 等待 %s 后进入下一轮...\n", interval)
			time.Sleep(interval)
		}
	}

	if totalCollected == 0 {
		return fmt.Errorf("整个运行未采集到任何样本")
	}

	if db != nil {
		exportDBSummary(db, cfg.Output.Dataset)
	}

	fmt.Printf("[+] 采集完成: 共 %d 个样本（%d 轮 × %d 目标） -> %s\n",
		totalCollected, cfg.Collect.Repeat, len(targets), cfg.Output.Dataset)
	return nil
}

// collectBatch 对一批目标各产出一条特征行
// parallel>1 时走固定大小worker池，行顺序为完成顺序；
// 单个目标的意外失败只记日志并跳过，不影响其他目标
func collectBatch(c *collector.Collector, targets []string, parallel int) []model.FeatureRow {
	var rows []model.FeatureRow
	var mu sync.Mutex

	if parallel <= 1 {
		for _, host := range targets {
			collectOne(c, host, &rows, &mu)
		}
		return rows
	}

	swg := sizedwaitgroup.New(parallel)
	for _, host := range targets {
		swg.Add()
		go func(host string) {
			defer swg.Done()
			collectOne(c, host, &rows, &mu)
		}(host)
	}
	swg.Wait()

	return rows
}

func collectOne(c *collector.Collector, host string, rows *[]model.FeatureRow, mu *sync.Mutex) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[!] 采集 %s 时发生意外错误，已跳过: %v", host, r)
		}
	}()

	row := c.Collect(host)

	mu.Lock()
	*rows = append(*rows, row)
	mu.Unlock()
}

func resolveTargets(cfg *config.Config) ([]string, error) {
	if len(cfg.Input.Targets) > 0 {
		return cfg.Input.Targets, nil
	}
	if cfg.Input.TargetFile != "" {
		return loader.ReadTargetsFromFile(cfg.Input.TargetFile)
	}
	return nil, nil
}

type dbHandle struct {
	conn      *sql.DB
	tableName string
	taskID    string
}

func openDB(path string) (*dbHandle, error) {
	taskID := util.GenerateTaskID()
	tableName := util.GenerateTableName(taskID)
	conn, err := database.InitDB(path, tableName)
	if err != nil {
		return nil, err
	}
	fmt.Printf("[*] sqlite结果库: %s（表 %s）\n", path, tableName)
	return &dbHandle{conn: conn, tableName: tableName, taskID: taskID}, nil
}

func (h *dbHandle) Close() {
	h.conn.Close()
}

// exportDBSummary 运行结束后导出按目标汇总的采集概况
func exportDBSummary(db *dbHandle, datasetPath string) {
	summaries, err := analysis.SummarizeHosts(db.conn, db.tableName)
	if err != nil {
		log.Printf("[!] 采集概况分析失败: %v", err)
		return
	}
	if len(summaries) == 0 {
		return
	}

	summaryPath := filepath.Join(filepath.Dir(datasetPath), util.GenerateCSVFileName(db.taskID, "summary"))
	if err := analysis.ExportSummary(summaries, summaryPath); err != nil {
		log.Printf("[!] 导出采集概况失败: %v", err)
	}
}
