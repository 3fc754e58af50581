// Package metrics 提供Prometheus风格的求解指标
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry 指标注册表
type Registry struct {
	counters map[string]*Counter
	gauges   map[string]*Gauge
	mu       sync.RWMutex
}

// Counter 计数器
type Counter struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Gauge 仪表盘
type Gauge struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

var (
	registry *Registry
	once     sync.Once
)

// GetRegistry 获取全局注册表
func GetRegistry() *Registry {
	once.Do(func() {
		registry = &Registry{
			counters: make(map[string]*Counter),
			gauges:   make(map[string]*Gauge),
		}
		initDefaultMetrics()
	})
	return registry
}

// initDefaultMetrics 初始化默认指标
func initDefaultMetrics() {
	// 求解运行计数器
	registry.NewCounter("nsp_solve_runs_total", "求解运行次数", []string{"mode", "feasible"})

	// 优化迭代次数
	registry.NewCounter("nsp_iterations_total", "优化器迭代次数", []string{})

	// 接受的移动数
	registry.NewCounter("nsp_accepted_moves_total", "被接受的移动次数", []string{})

	// 多样化重启次数
	registry.NewCounter("nsp_restarts_total", "多样化重启次数", []string{})

	// 最优解得分
	registry.NewGauge("nsp_best_hard_score", "最优解硬约束得分", []string{"run_id"})
	registry.NewGauge("nsp_best_soft_score", "最优解软约束得分", []string{"run_id"})

	// 求解耗时
	registry.NewGauge("nsp_solve_duration_seconds", "求解耗时", []string{"run_id"})
}

// NewCounter 创建计数器
func (r *Registry) NewCounter(name, help string, labels []string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	counter := &Counter{
		Name:   name,
		Help:   help,
		Labels: labels,
		values: make(map[string]float64),
	}
	r.counters[name] = counter
	return counter
}

// NewGauge 创建仪表盘
func (r *Registry) NewGauge(name, help string, labels []string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	gauge := &Gauge{
		Name:   name,
		Help:   help,
		Labels: labels,
		values: make(map[string]float64),
	}
	r.gauges[name] = gauge
	return gauge
}

// GetCounter 获取计数器
func (r *Registry) GetCounter(name string) *Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// GetGauge 获取仪表盘
func (r *Registry) GetGauge(name string) *Gauge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// Inc 增加计数
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add 增加指定值
func (c *Counter) Add(value float64, labelValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[labelKey(labelValues)] += value
}

// Value 读取某组标签的当前值
func (c *Counter) Value(labelValues ...string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[labelKey(labelValues)]
}

// Set 设置值
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] = value
}

// Add 增加指定值
func (g *Gauge) Add(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] += value
}

// Value 读取某组标签的当前值
func (g *Gauge) Value(labelValues ...string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.values[labelKey(labelValues)]
}

// labelKey 标签值拼接为内部键
func labelKey(labelValues []string) string {
	return strings.Join(labelValues, "|")
}

// Expose 以文本格式导出全部指标
func (r *Registry) Expose() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder

	names := make([]string, 0, len(r.counters))
	for name := range r.counters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := r.counters[name]
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s counter\n", c.Name, c.Help, c.Name)
		c.mu.RLock()
		for key, value := range c.values {
			writeSample(&b, c.Name, c.Labels, key, value)
		}
		c.mu.RUnlock()
	}

	names = names[:0]
	for name := range r.gauges {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		g := r.gauges[name]
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s gauge\n", g.Name, g.Help, g.Name)
		g.mu.RLock()
		for key, value := range g.values {
			writeSample(&b, g.Name, g.Labels, key, value)
		}
		g.mu.RUnlock()
	}

	return b.String()
}

// writeSample 输出一条样本
func writeSample(b *strings.Builder, name string, labels []string, key string, value float64) {
	if key == "" || len(labels) == 0 {
		fmt.Fprintf(b, "%s %g\n", name, value)
		return
	}
	values := strings.Split(key, "|")
	pairs := make([]string, 0, len(labels))
	for i, label := range labels {
		if i < len(values) {
			pairs = append(pairs, fmt.Sprintf("%s=%q", label, values[i]))
		}
	}
	fmt.Fprintf(b, "%s{%s} %g\n", name, strings.Join(pairs, ","), value)
}
