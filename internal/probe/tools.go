package probe

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// RequiredTools 采集依赖的外部探测工具
var RequiredTools = []string{"ping", "nmap", "curl", "hping3"}

// CheckRequiredTools 启动前一次性检查外部工具是否齐全
// 缺少任一工具返回错误（致命），调用方应终止进程
func CheckRequiredTools() error {
	var missing []string
	for _, tool := range RequiredTools {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("缺少必需的外部工具: %s\n安装方法:\n  sudo apt update\n  sudo apt install -y %s",
			strings.Join(missing, ", "), strings.Join(missing, " "))
	}

	return nil
}

// WarnIfNotRoot nmap/hping3 的原始套接字探测通常需要root权限
// 无权限只告警不阻断
func WarnIfNotRoot() {
	if os.Geteuid() != 0 {
		fmt.Println("[!] 当前非root运行，nmap/hping3 的SYN探测可能失败，建议使用 sudo")
	}
}
