package parser

import (
	"database/sql"
	"strconv"
	"strings"

	"firewall_feature_collector/internal/probe"
)

// 直连响应头中的代理/缓存特征子串
var proxyHeaderIndicators = []string{"via:", "x-cache:", "x-proxy", "proxy-agent:", "x-forwarded"}

// 通过目标做代理转发时的特征子串（含squid专有头）
var proxySweepIndicators = []string{"via:", "x-squid", "cache-status:", "x-cache", "x-forwarded", "squid"}

// ParseHeaders 直连HTTP响应头命中任一代理/缓存特征则返回1
func ParseHeaders(out probe.Output) int {
	if !out.OK {
		return 0
	}
	if containsAny(strings.ToLower(out.Text), proxyHeaderIndicators) {
		return 1
	}
	return 0
}

// HasProxyIndicator 代理端口探测响应是否带代理特征
func HasProxyIndicator(out probe.Output) bool {
	if !out.OK || out.Text == "" {
		return false
	}
	return containsAny(strings.ToLower(out.Text), proxySweepIndicators)
}

// ParseTimeTotal 解析curl -w %{time_total} 输出（最后一行，单位秒），换算为毫秒
func ParseTimeTotal(out probe.Output) sql.NullFloat64 {
	if !out.OK {
		return sql.NullFloat64{}
	}

	lines := strings.Split(strings.TrimSpace(out.Text), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	secs, err := strconv.ParseFloat(last, 64)
	if err != nil {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: secs * 1000, Valid: true}
}

func containsAny(text string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(text, sub) {
			return true
		}
	}
	return false
}
