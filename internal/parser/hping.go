package parser

import (
	"regexp"

	"firewall_feature_collector/internal/probe"
)

var (
	replyPattern = regexp.MustCompile(`(?i)flags=|len=\d+`)
	bytesPattern = regexp.MustCompile(`(?m)^\s*\d+\s+bytes from`)
	// R 必须出现在flags字段本身，不能匹配到同行后面的 rtt= 列
	rstPattern = regexp.MustCompile(`(?i)flags=\S*R`)
)

// ReplyRatio 计算SYN探测的回复比例
// 以 flags=/len= 回复行计数，没有时退回统计 "N bytes from" 行；
// 重复或伪造回复可能让计数超过发包数，结果必须钳制在 [0,1]
func ReplyRatio(out probe.Output, sentCount int) float64 {
	if !out.OK || sentCount <= 0 {
		return 0.0
	}

	replyCount := len(replyPattern.FindAllString(out.Text, -1))
	if replyCount == 0 {
		replyCount = len(bytesPattern.FindAllString(out.Text, -1))
	}

	return clampRatio(float64(replyCount) / float64(sentCount))
}

// ResetRatio 计算SYN探测中flags字段带R（RST）的回复比例，钳制在 [0,1]
func ResetRatio(out probe.Output, sentCount int) float64 {
	if !out.OK || sentCount <= 0 {
		return 0.0
	}

	rstCount := len(rstPattern.FindAllString(out.Text, -1))
	return clampRatio(float64(rstCount) / float64(sentCount))
}

func clampRatio(ratio float64) float64 {
	if ratio < 0 {
		return 0.0
	}
	if ratio > 1 {
		return 1.0
	}
	return ratio
}
