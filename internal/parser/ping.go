// Package parser 把各外部探测工具的自由文本输出解析成部分特征
// 每个工具一个独立解析单元，互不影响；输入缺失或格式不符时一律
// 退化为空特征，绝不报错
package parser

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"

	"firewall_feature_collector/internal/probe"
)

var (
	ttlPattern  = regexp.MustCompile(`(?i)ttl=(\d+)`)
	lossPattern = regexp.MustCompile(`(?i)(\d+\.?\d*)%\s+packet loss`)
	// rtt汇总行有两种方言（linux iputils / bsd），取 min/avg/max 中间的avg值
	rttPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)rtt.*?=\s*[\d.]+/([\d.]+)/`),
		regexp.MustCompile(`(?i)round-trip.*?=\s*[\d.]+/([\d.]+)/`),
	}
)

// PingFeatures ping输出解析出的L3特征
type PingFeatures struct {
	AvgLatency sql.NullFloat64
	PacketLoss sql.NullFloat64
	TTLReturn  sql.NullInt64
	Reachable  int
}

// ParsePing 解析ping输出，提取时延/丢包/TTL/可达性
func ParsePing(out probe.Output) PingFeatures {
	var f PingFeatures
	if !out.OK {
		return f
	}

	lower := strings.ToLower(out.Text)
	if strings.Contains(lower, "bytes from") || strings.Contains(lower, "icmp_seq=") {
		f.Reachable = 1
		if m := ttlPattern.FindStringSubmatch(out.Text); m != nil {
			if ttl, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				f.TTLReturn = sql.NullInt64{Int64: ttl, Valid: true}
			}
		}
	}

	if m := lossPattern.FindStringSubmatch(out.Text); m != nil {
		if loss, err := strconv.ParseFloat(m[1], 64); err == nil {
			f.PacketLoss = sql.NullFloat64{Float64: loss, Valid: true}
		}
	}

	// 两种rtt格式先匹配先赢
	for _, p := range rttPatterns {
		if m := p.FindStringSubmatch(out.Text); m != nil {
			if avg, err := strconv.ParseFloat(m[1], 64); err == nil {
				f.AvgLatency = sql.NullFloat64{Float64: avg, Valid: true}
				break
			}
		}
	}

	return f
}

// MergeLargePingLoss 大包ping的丢包率只在大于现有值时覆盖
// （MTU敏感的丢包只有大包才暴露）；现有值缺失时直接填充
func MergeLargePingLoss(base, large sql.NullFloat64) sql.NullFloat64 {
	if !large.Valid {
		return base
	}
	if !base.Valid || large.Float64 > base.Float64 {
		return large
	}
	return base
}
