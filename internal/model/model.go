package model

import (
	"database/sql"
	"strconv"
)

// FeatureColumns 数据集固定列顺序（13列），所有输出必须严格按此顺序
var FeatureColumns = []string{
	"timestamp", "host", "avg_latency", "packet_loss", "ttl_return", "icmp_reachable",
	"filtered_ports_count", "scan_time", "syn_ack_ratio", "tcp_reset_ratio",
	"response_time", "header_modified", "firewall_label",
}

// ModelFeatureColumns 分类模型输入特征列（排除 timestamp/host/firewall_label），顺序固定
var ModelFeatureColumns = []string{
	"avg_latency", "packet_loss", "ttl_return", "icmp_reachable",
	"filtered_ports_count", "scan_time", "syn_ack_ratio", "tcp_reset_ratio",
	"response_time", "header_modified",
}

// FeatureRow 是单个目标单轮采集后规范化的特征行
// 可缺失的数值字段用 sql.Null* 表示，序列化时缺失写空值而不是哨兵字符串
type FeatureRow struct {
	Timestamp          int64           // 采集开始时间（unix秒）
	Host               string          // 目标IP
	AvgLatency         sql.NullFloat64 // ICMP平均往返时延，ms
	PacketLoss         sql.NullFloat64 // 丢包率（%），两次ping取较大值
	TTLReturn          sql.NullInt64   // 回包TTL
	ICMPReachable      int             // 0/1，任一次ping收到回复
	FilteredPortsCount int             // 1-1024扫描中filtered端口数量
	ScanTime           sql.NullFloat64 // 端口扫描耗时，秒
	SynAckRatio        float64         // 80端口SYN探测回复比例 [0,1]
	TCPResetRatio      float64         // 22端口SYN探测RST比例 [0,1]
	ResponseTime       sql.NullFloat64 // HTTP HEAD往返耗时，ms
	HeaderModified     int             // 0/1，命中代理/缓存头特征
	FirewallLabel      sql.NullInt64   // 外部提供的防火墙类型标签
}

// Record 按 FeatureColumns 顺序输出CSV记录，缺失字段写空字符串
func (r *FeatureRow) Record() []string {
	return []string{
		strconv.FormatInt(r.Timestamp, 10),
		r.Host,
		formatNullFloat(r.AvgLatency),
		formatNullFloat(r.PacketLoss),
		formatNullInt(r.TTLReturn),
		strconv.Itoa(r.ICMPReachable),
		strconv.Itoa(r.FilteredPortsCount),
		formatNullFloat(r.ScanTime),
		formatFloat(r.SynAckRatio),
		formatFloat(r.TCPResetRatio),
		formatNullFloat(r.ResponseTime),
		strconv.Itoa(r.HeaderModified),
		formatNullInt(r.FirewallLabel),
	}
}

// Vector 按 ModelFeatureColumns 顺序输出模型输入向量，缺失值按0处理
func (r *FeatureRow) Vector() []float64 {
	return []float64{
		nullFloatOrZero(r.AvgLatency),
		nullFloatOrZero(r.PacketLoss),
		nullIntOrZero(r.TTLReturn),
		float64(r.ICMPReachable),
		float64(r.FilteredPortsCount),
		nullFloatOrZero(r.ScanTime),
		r.SynAckRatio,
		r.TCPResetRatio,
		nullFloatOrZero(r.ResponseTime),
		float64(r.HeaderModified),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatNullFloat(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return formatFloat(v.Float64)
}

func formatNullInt(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}

func nullFloatOrZero(v sql.NullFloat64) float64 {
	if !v.Valid {
		return 0
	}
	return v.Float64
}

func nullIntOrZero(v sql.NullInt64) float64 {
	if !v.Valid {
		return 0
	}
	return float64(v.Int64)
}
