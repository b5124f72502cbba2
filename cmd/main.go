package main

import (
	"fmt"
	"log"
	"os"

	"firewall_feature_collector/internal/config"
	"firewall_feature_collector/internal/runner"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"
)

func main() {
	// 1. 读取配置
	cfg, shouldExit, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	if shouldExit {
		fmt.Println("程序已退出，请配置好相关文件后重新运行。")
		os.Exit(0)
	}

	// debug开关只放大诊断输出，不改变采集行为
	if cfg.Debug {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelDebug)
	}

	fmt.Println("========================================")
	fmt.Println(" 防火墙行为特征采集器")
	fmt.Println(" 仅可用于已获授权的网络环境")
	fmt.Println("========================================")

	// 2. 执行采集
	if err := runner.RunAll(cfg); err != nil {
		log.Fatalf("采集失败: %v", err)
	}
}
