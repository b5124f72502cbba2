// Package collector 按固定阶段顺序驱动外部探测并合并为一条特征行
// 阶段顺序：L3(ping×2) → L4(nmap、hping3×2) → L7(curl计时、直连头、代理端口试探) → 标签注入
// 任一阶段拿不到数据只会留下空特征，不会中断后续阶段
package collector

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"firewall_feature_collector/internal/model"
	"firewall_feature_collector/internal/parser"
	"firewall_feature_collector/internal/probe"

	"golang.org/x/time/rate"
)

// 每轮hping3的SYN发包数
const synProbeCount = 5

// 常见HTTP代理端口（squid及通用代理），直连未发现代理头时逐个试探
var proxySweepPorts = []int{3128, 8080, 8888}

// Options 采集器配置
type Options struct {
	Labels    map[string]int // 目标IP→防火墙类型标签，精确匹配
	ProbeRate float64        // 每秒探测命令数上限，0为不限速
}

// Collector 单目标特征采集器，可被多个worker并发复用
type Collector struct {
	runner  probe.Runner
	labels  map[string]int
	limiter *rate.Limiter
}

// New 构造采集器；标签表会被拷贝，采集过程中不会再读外部状态
func New(runner probe.Runner, opts Options) *Collector {
	labels := make(map[string]int, len(opts.Labels))
	for host, label := range opts.Labels {
		labels[host] = label
	}

	var limiter *rate.Limiter
	if opts.ProbeRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.ProbeRate), 1)
	}

	return &Collector{runner: runner, labels: labels, limiter: limiter}
}

// Collect 对单个目标完整采集一条特征行（同步调用，实时分类方也用这个入口）
// 没有整机超时：全暗目标最多耗时为各探测超时之和
func (c *Collector) Collect(host string) model.FeatureRow {
	fmt.Printf("[*] 开始采集: %s\n", host)

	row := model.FeatureRow{
		Timestamp: time.Now().Unix(),
		Host:      host,
	}

	// L3: 标准ping
	fmt.Printf("  [L3] ping探测: %s\n", host)
	ping := parser.ParsePing(c.run("ping", []string{"-c", "5", host}, 10*time.Second))
	row.AvgLatency = ping.AvgLatency
	row.PacketLoss = ping.PacketLoss
	row.TTLReturn = ping.TTLReturn
	row.ICMPReachable = ping.Reachable

	// L3: 大包ping，丢包率只在更大时覆盖（MTU敏感丢包）
	large := parser.ParsePing(c.run("ping", []string{"-c", "5", "-s", "1400", host}, 10*time.Second))
	row.PacketLoss = parser.MergeLargePingLoss(row.PacketLoss, large.PacketLoss)

	// L4: SYN端口扫描 1-1024
	fmt.Printf("  [L4] nmap端口扫描: %s\n", host)
	nmap := parser.ParseNmap(c.run("nmap", []string{"-sS", "-p", "1-1024", host, "-oN", "-"}, 120*time.Second))
	row.FilteredPortsCount = nmap.FilteredPortsCount
	row.ScanTime = nmap.ScanTime

	// L4: 80端口SYN回复比例
	fmt.Printf("  [L4] SYN回复测试(80): %s\n", host)
	syn80 := c.run("hping3", []string{"-S", "-p", "80", "-c", "5", host}, 10*time.Second)
	row.SynAckRatio = parser.ReplyRatio(syn80, synProbeCount)

	// L4: 22端口RST比例
	fmt.Printf("  [L4] RST测试(22): %s\n", host)
	syn22 := c.run("hping3", []string{"-S", "-p", "22", "-c", "5", host}, 10*time.Second)
	row.TCPResetRatio = parser.ResetRatio(syn22, synProbeCount)

	// L7: HTTP HEAD往返耗时
	fmt.Printf("  [L7] HTTP响应耗时: %s\n", host)
	timing := c.run("curl", []string{"-s", "-I", "-w", "%{time_total}", "-o", "/dev/null",
		"--max-time", "5", "http://" + host}, 7*time.Second)
	if rt := parser.ParseTimeTotal(timing); rt.Valid {
		row.ResponseTime = rt
	}

	// L7: 直连响应头的代理/缓存特征
	fmt.Printf("  [L7] 响应头检测: %s\n", host)
	headers := c.run("curl", []string{"-s", "-I", "-H", "X-FWFP-Probe: 1",
		"--max-time", "5", "http://" + host}, 8*time.Second)
	row.HeaderModified = parser.ParseHeaders(headers)

	// L7: 直连无代理特征时，把目标当代理逐个端口试探第三方站点
	// 首个命中即停，全部落空保持0
	if row.HeaderModified == 0 {
		fmt.Printf("  [L7] 常见代理端口试探: %s\n", host)
		for _, port := range proxySweepPorts {
			out := c.run("curl", []string{"-s", "-I", "-x", fmt.Sprintf("http://%s:%d", host, port),
				"http://example.com", "--connect-timeout", "3"}, 10*time.Second)
			if parser.HasProxyIndicator(out) {
				row.HeaderModified = 1
				fmt.Printf("  [L7] 在 %s:%d 检测到代理\n", host, port)
				break
			}
		}
	}

	// 固定小数精度，只作用于已填充的值
	row.AvgLatency = roundNull(row.AvgLatency, 3)
	row.PacketLoss = roundNull(row.PacketLoss, 2)
	row.ScanTime = roundNull(row.ScanTime, 2)
	row.SynAckRatio = roundTo(row.SynAckRatio, 3)
	row.TCPResetRatio = roundTo(row.TCPResetRatio, 3)
	row.ResponseTime = roundNull(row.ResponseTime, 3)

	// 标签注入：目标IP与标签表key完全一致才生效，不做任何格式归一化
	if label, ok := c.labels[host]; ok {
		row.FirewallLabel = sql.NullInt64{Int64: int64(label), Valid: true}
	}

	fmt.Printf("[+] 采集完成: %s\n", host)
	return row
}

// run 统一的探测入口，带可选限速
func (c *Collector) run(name string, args []string, timeout time.Duration) probe.Output {
	if c.limiter != nil {
		c.limiter.Wait(context.Background())
	}
	return c.runner.Run(name, args, timeout)
}

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow10(decimals)
	return math.Round(v*pow) / pow
}

func roundNull(v sql.NullFloat64, decimals int) sql.NullFloat64 {
	if !v.Valid {
		return v
	}
	return sql.NullFloat64{Float64: roundTo(v.Float64, decimals), Valid: true}
}
