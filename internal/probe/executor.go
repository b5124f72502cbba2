package probe

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/projectdiscovery/gologger"
)

// Output 是单次探测命令的结果，仅在解析期间存活
// OK=false 表示超时或命令无法启动，调用方按"该阶段无数据"处理
type Output struct {
	Text string
	OK   bool
}

// Absent 无数据哨兵
var Absent = Output{}

// Runner 抽象外部探测命令的执行，便于用确定性假探测做测试
type Runner interface {
	Run(name string, args []string, timeout time.Duration) Output
}

// CommandRunner 基于 os/exec 的真实执行器
// 约定：退出码0只返回stdout；非0返回stdout+stderr（hping3等工具
// 即使探测成功也会把有用的诊断写到stderr，解析器必须能看到）
type CommandRunner struct{}

func (CommandRunner) Run(name string, args []string, timeout time.Duration) Output {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	gologger.Debug().Msgf("执行命令: %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		gologger.Debug().Msgf("命令超时（%s）: %s", timeout, name)
		return Absent
	}

	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			gologger.Debug().Msgf("命令退出码非0: %s -> %v", name, err)
			return Output{Text: stdout.String() + stderr.String(), OK: true}
		}
		// 命令无法启动（路径错误、权限等），视为无数据
		gologger.Debug().Msgf("命令启动失败: %s -> %v", name, err)
		return Absent
	}

	return Output{Text: stdout.String(), OK: true}
}
