package collector

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"firewall_feature_collector/internal/model"
	"firewall_feature_collector/internal/probe"

	"github.com/stretchr/testify/assert"
)

// fakeRunner 确定性假探测器，按命令行全文匹配返回预置输出
type fakeRunner struct {
	outputs map[string]probe.Output
	calls   []string
}

func (f *fakeRunner) Run(name string, args []string, timeout time.Duration) probe.Output {
	key := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if out, ok := f.outputs[key]; ok {
		return out
	}
	return probe.Absent
}

const testHost = "192.168.56.10"

func fullProbeOutputs() map[string]probe.Output {
	pingText := `64 bytes from 192.168.56.10: icmp_seq=1 ttl=64 time=2.1 ms
5 packets transmitted, 5 received, 0% packet loss, time 4005ms
rtt min/avg/max/mdev = 1.0/2.345/3.0/0.5 ms
`
	largePingText := `64 bytes from 192.168.56.10: icmp_seq=1 ttl=64 time=4.1 ms
5 packets transmitted, 4 received, 20% packet loss, time 4005ms
rtt min/avg/max/mdev = 3.0/4.123/5.0/0.5 ms
`
	nmapText := `22/tcp  filtered ssh
80/tcp  filtered http
443/tcp filtered https
Nmap done: 1 IP address (1 host up) scanned in 12.34 seconds
`
	synText := strings.Repeat("sport=80 flags=SA seq=0\n", 3)
	rstText := "sport=22 flags=RA seq=0\nsport=22 flags=RA seq=1\n"

	return map[string]probe.Output{
		"ping -c 5 " + testHost:         {Text: pingText, OK: true},
		"ping -c 5 -s 1400 " + testHost: {Text: largePingText, OK: true},
		"nmap -sS -p 1-1024 " + testHost + " -oN -": {Text: nmapText, OK: true},
		"hping3 -S -p 80 -c 5 " + testHost:          {Text: synText, OK: true},
		"hping3 -S -p 22 -c 5 " + testHost:          {Text: rstText, OK: true},
		"curl -s -I -w %{time_total} -o /dev/null --max-time 5 http://" + testHost: {Text: "0.015203", OK: true},
		"curl -s -I -H X-FWFP-Probe: 1 --max-time 5 http://" + testHost:            {Text: "HTTP/1.1 200 OK\nServer: nginx\n", OK: true},
	}
}

func TestCollectFullScenario(t *testing.T) {
	runner := &fakeRunner{outputs: fullProbeOutputs()}
	c := New(runner, Options{Labels: map[string]int{testHost: 2}})

	row := c.Collect(testHost)

	assert.Equal(t, testHost, row.Host)
	assert.NotZero(t, row.Timestamp)
	assert.Equal(t, 1, row.ICMPReachable)
	assert.Equal(t, sql.NullInt64{Int64: 64, Valid: true}, row.TTLReturn)
	assert.Equal(t, sql.NullFloat64{Float64: 2.345, Valid: true}, row.AvgLatency)
	// 大包ping丢包率20%大于首轮0%，覆盖生效
	assert.Equal(t, sql.NullFloat64{Float64: 20, Valid: true}, row.PacketLoss)
	assert.Equal(t, 3, row.FilteredPortsCount)
	assert.Equal(t, sql.NullFloat64{Float64: 12.34, Valid: true}, row.ScanTime)
	assert.Equal(t, 0.6, row.SynAckRatio)
	assert.Equal(t, 0.4, row.TCPResetRatio)
	assert.Equal(t, sql.NullFloat64{Float64: 15.203, Valid: true}, row.ResponseTime)
	assert.Equal(t, 0, row.HeaderModified)
	assert.Equal(t, sql.NullInt64{Int64: 2, Valid: true}, row.FirewallLabel)
}

func TestCollectPhaseOrder(t *testing.T) {
	runner := &fakeRunner{outputs: fullProbeOutputs()}
	c := New(runner, Options{})

	c.Collect(testHost)

	// L3 → L4 → L7，阶段顺序固定；直连无代理头时追加三个代理端口试探
	expected := []string{
		"ping -c 5 " + testHost,
		"ping -c 5 -s 1400 " + testHost,
		"nmap -sS -p 1-1024 " + testHost + " -oN -",
		"hping3 -S -p 80 -c 5 " + testHost,
		"hping3 -S -p 22 -c 5 " + testHost,
		"curl -s -I -w %{time_total} -o /dev/null --max-time 5 http://" + testHost,
		"curl -s -I -H X-FWFP-Probe: 1 --max-time 5 http://" + testHost,
		"curl -s -I -x http://" + testHost + ":3128 http://example.com --connect-timeout 3",
		"curl -s -I -x http://" + testHost + ":8080 http://example.com --connect-timeout 3",
		"curl -s -I -x http://" + testHost + ":8888 http://example.com --connect-timeout 3",
	}
	assert.Equal(t, expected, runner.calls)
}

func TestCollectDarkHost(t *testing.T) {
	// 所有探测都拿不到输出：仍然产出一条行，全部可缺失字段为空
	runner := &fakeRunner{outputs: map[string]probe.Output{}}
	c := New(runner, Options{})

	row := c.Collect("10.9.9.9")

	assert.Equal(t, "10.9.9.9", row.Host)
	assert.Equal(t, 0, row.ICMPReachable)
	assert.False(t, row.AvgLatency.Valid)
	assert.False(t, row.PacketLoss.Valid)
	assert.False(t, row.TTLReturn.Valid)
	assert.Equal(t, 0, row.FilteredPortsCount)
	assert.False(t, row.ScanTime.Valid)
	assert.Equal(t, 0.0, row.SynAckRatio)
	assert.Equal(t, 0.0, row.TCPResetRatio)
	assert.False(t, row.ResponseTime.Valid)
	assert.Equal(t, 0, row.HeaderModified)
	assert.False(t, row.FirewallLabel.Valid)
	assert.Equal(t, len(model.FeatureColumns), len(row.Record()))
}

func TestCollectProxySweepStopsOnFirstHit(t *testing.T) {
	outputs := fullProbeOutputs()
	outputs["curl -s -I -x http://"+testHost+":3128 http://example.com --connect-timeout 3"] =
		probe.Output{Text: "HTTP/1.1 200 OK\nVia: 1.1 squid\n", OK: true}
	runner := &fakeRunner{outputs: outputs}
	c := New(runner, Options{})

	row := c.Collect(testHost)

	assert.Equal(t, 1, row.HeaderModified)
	// 首个端口命中后不再试探后续端口
	for _, call := range runner.calls {
		assert.NotContains(t, call, ":8080")
		assert.NotContains(t, call, ":8888")
	}
}

func TestCollectDirectProxyHeaderSkipsSweep(t *testing.T) {
	outputs := fullProbeOutputs()
	outputs["curl -s -I -H X-FWFP-Probe: 1 --max-time 5 http://"+testHost] =
		probe.Output{Text: "HTTP/1.1 200 OK\nX-Cache: HIT\n", OK: true}
	runner := &fakeRunner{outputs: outputs}
	c := New(runner, Options{})

	row := c.Collect(testHost)

	assert.Equal(t, 1, row.HeaderModified)
	for _, call := range runner.calls {
		assert.NotContains(t, call, "-x http://")
	}
}

func TestCollectLabelExactMatchOnly(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]probe.Output{}}
	c := New(runner, Options{Labels: map[string]int{"192.168.056.10": 1}})

	// "192.168.56.10" 与 "192.168.056.10" 不做格式归一化，不注入标签
	row := c.Collect(testHost)

	assert.False(t, row.FirewallLabel.Valid)
}

func TestCollectRounding(t *testing.T) {
	outputs := map[string]probe.Output{
		"ping -c 5 " + testHost: {Text: `64 bytes from h: icmp_seq=1 ttl=64 time=2 ms
5 packets transmitted, 5 received, 0.123% packet loss
rtt min/avg/max/mdev = 1.0/2.34567/3.0/0.5 ms
`, OK: true},
		"curl -s -I -w %{time_total} -o /dev/null --max-time 5 http://" + testHost: {Text: "0.0152039", OK: true},
	}
	runner := &fakeRunner{outputs: outputs}
	c := New(runner, Options{})

	row := c.Collect(testHost)

	// avg_latency保留3位，packet_loss保留2位，response_time保留3位
	assert.Equal(t, 2.346, row.AvgLatency.Float64)
	assert.Equal(t, 0.12, row.PacketLoss.Float64)
	assert.Equal(t, 15.204, row.ResponseTime.Float64)
}
