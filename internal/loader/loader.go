package loader

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// ReadTargetsFromFile 读取目标文件，一行一个目标IP
// 跳过空行和#注释行；非UTF-8编码的文件按GBK兜底转换
// 不做IP格式校验，目标串原样传给探测层
func ReadTargetsFromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取目标文件失败: %w", err)
	}

	if !isUTF8(data) {
		converted, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), data)
		if err == nil {
			data = converted
		}
	}

	var targets []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}

	return targets, nil
}

// isUTF8 粗略检测字节序列是否为合法UTF-8
func isUTF8(data []byte) bool {
	for i := 0; i < len(data); i++ {
		if data[i] < 0x80 {
			continue
		}
		switch {
		case i+1 < len(data) && data[i]&0xE0 == 0xC0 && data[i+1]&0xC0 == 0x80:
			i++
		case i+2 < len(data) && data[i]&0xF0 == 0xE0 && data[i+1]&0xC0 == 0x80 && data[i+2]&0xC0 == 0x80:
			i += 2
		default:
			return false
		}
	}
	return true
}
