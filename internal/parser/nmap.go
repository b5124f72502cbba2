package parser

import (
	"database/sql"
	"regexp"
	"strconv"

	"firewall_feature_collector/internal/probe"
)

var (
	filteredPattern = regexp.MustCompile(`(?i)\d+/tcp\s+filtered`)
	scanTimePattern = regexp.MustCompile(`(?i)scanned in ([\d.]+) seconds`)
)

// NmapFeatures 端口扫描输出解析出的L4特征
type NmapFeatures struct {
	FilteredPortsCount int
	ScanTime           sql.NullFloat64
}

// ParseNmap 统计filtered端口数量并提取扫描耗时
func ParseNmap(out probe.Output) NmapFeatures {
	var f NmapFeatures
	if !out.OK {
		return f
	}

	f.FilteredPortsCount = len(filteredPattern.FindAllString(out.Text, -1))

	if m := scanTimePattern.FindStringSubmatch(out.Text); m != nil {
		if secs, err := strconv.ParseFloat(m[1], 64); err == nil {
			f.ScanTime = sql.NullFloat64{Float64: secs, Valid: true}
		}
	}

	return f
}
