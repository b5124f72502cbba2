package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Input struct {
		Targets    []string `yaml:"targets"`     // 显式目标列表
		TargetFile string   `yaml:"target_file"` // 目标文件，一行一个IP，与targets二选一
	} `yaml:"input"`

	Output struct {
		Dataset  string `yaml:"dataset"`  // 数据集CSV路径
		Database string `yaml:"database"` // sqlite结果库路径，留空不落库
	} `yaml:"output"`

	Collect struct {
		Parallel        int     `yaml:"parallel"`         // worker数量，1为串行
		Repeat          int     `yaml:"repeat"`           // 整批重复采集次数
		IntervalSeconds int     `yaml:"interval_seconds"` // 迭代间暂停秒数
		ProbeRate       float64 `yaml:"probe_rate"`       // 每秒探测命令数上限，0不限速
	} `yaml:"collect"`

	Labels map[string]int `yaml:"labels"` // 目标IP→防火墙类型标签（0-3），可选

	Debug bool `yaml:"debug"` // 只影响诊断输出，不影响控制流
}

// LoadConfig 加载YAML配置
// 配置文件不存在时生成默认配置并提示退出（shouldExit=true）
func LoadConfig(path string) (*Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("配置文件 %s 不存在，正在生成默认配置文件...\n", path)
			if err := generateDefaultConfig(path); err != nil {
				return nil, true, fmt.Errorf("生成默认配置文件失败: %w", err)
			}
			fmt.Printf("默认配置文件已生成: %s\n", path)
			fmt.Println("请编辑配置文件，填入采集目标后重新运行程序。")
			return nil, true, nil
		}
		return nil, true, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, true, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, false, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Output.Dataset == "" {
		cfg.Output.Dataset = "dataset.csv"
	}
	if cfg.Collect.Parallel < 1 {
		cfg.Collect.Parallel = 1
	}
	if cfg.Collect.Repeat < 1 {
		cfg.Collect.Repeat = 1
	}
	if cfg.Collect.IntervalSeconds <= 0 {
		cfg.Collect.IntervalSeconds = 2
	}
}

// generateDefaultConfig 生成带注释的默认配置文件
func generateDefaultConfig(path string) error {
	defaultConfigContent := `# config.yaml
# 防火墙特征采集器配置
# 注意：只对拥有授权的网络发起探测

# 采集目标（二选一）
input:
  targets: []                  # 显式目标IP列表，例如 ["192.168.56.10", "192.168.56.11"]
  target_file: ""              # 目标文件路径，一行一个IP，支持#注释

# 输出配置
output:
  dataset: "dataset.csv"       # 数据集CSV，重复运行按迭代追加
  database: ""                 # sqlite结果库路径（可选），留空不落库

# 采集参数
collect:
  parallel: 1                  # 并发worker数量，1为串行
  repeat: 1                    # 整批重复采集次数，>1时后续轮次追加写入
  interval_seconds: 2          # 两轮迭代之间的暂停秒数
  probe_rate: 0                # 每秒探测命令数上限，0为不限速

# 目标→防火墙类型标签（可选，训练集需要）
# 0=无防火墙 1=无状态 2=有状态 3=代理
labels: {}
#  "192.168.56.10": 0
#  "192.168.56.11": 2

# 调试输出
debug: false
`

	if err := os.WriteFile(path, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("写入默认配置文件失败: %w", err)
	}

	return nil
}
