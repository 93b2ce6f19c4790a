// Package timeline 提供甘特渲染用的日期与像素布局纯函数。
// 时间窗固定为 73 个月（当前月前 36 个月 + 当前月 + 后 36 个月），与数据无关。
package timeline

import (
	"sort"
	"strings"
	"time"

	"pmo_roadmap_go/internal/model"
)

// TimelineMonths 时间窗总月数。
const TimelineMonths = 73

// monthsBack 当前月之前的月数。
const monthsBack = 36

// avgCharWidthRatio 估算字符宽度为字号的 0.6 倍，用于不依赖字体度量的标签截断。
const avgCharWidthRatio = 0.6

// nowFunc 可在测试中替换，保证布局计算可复现。
var nowFunc = time.Now

// Range 是时间窗的锚点。
type Range struct {
	StartDate time.Time
}

// TimelineRange 返回固定时间窗的起点：当前月往前 36 个月的 1 号。
// 锚点只取决于时钟，不取决于数据。
func TimelineRange() Range {
	return timelineRangeAt(nowFunc())
}

func timelineRangeAt(now time.Time) Range {
	start := monthStart(now).AddDate(0, -monthsBack, 0)
	return Range{StartDate: start}
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// dateLayouts 按出现频率排列的源数据日期格式。
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01",
}

// ParseDate 解析源数据中的日期字符串，空串或无法识别时返回 nil。
// 源表的日期列不保证干净，坏值在这里统一归约为 "无日期"。
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// MonthsBetween 返回 start 到 d 的整月差（d 早于 start 时为负）。
func MonthsBetween(start, d time.Time) int {
	return (d.Year()-start.Year())*12 + int(d.Month()) - int(start.Month())
}

// CalculatePosition 返回日期相对时间窗起点的水平像素偏移。
func CalculatePosition(d, start time.Time, monthWidth float64) float64 {
	return float64(MonthsBetween(start, d)) * monthWidth
}

// CalculateMilestonePosition 与 CalculatePosition 相同，但传入 projectEnd 时
// 把结果收在条形右边缘以内，保证里程碑标记不画出条外。
func CalculateMilestonePosition(d, start time.Time, monthWidth float64, projectEnd *time.Time) float64 {
	pos := CalculatePosition(d, start, monthWidth)
	if projectEnd != nil {
		endPos := CalculatePosition(*projectEnd, start, monthWidth)
		if pos > endPos {
			return endPos
		}
	}
	return pos
}

// MonthKey 返回日期所属月份的 "YYYY-MM" 键。
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// GroupMilestonesByMonth 把里程碑按所属月份分组，键为 "YYYY-MM"。
// 日期无法解析的里程碑被丢弃。
func GroupMilestonesByMonth(list []model.Milestone) map[string][]model.Milestone {
	groups := make(map[string][]model.Milestone)
	for _, m := range list {
		t := ParseDate(m.Date)
		if t == nil {
			continue
		}
		key := MonthKey(*t)
		groups[key] = append(groups[key], m)
	}
	return groups
}

// MonthlyLabelPosition 返回分组月份标签的水平偏移（落在该月中线上）。
func MonthlyLabelPosition(monthKey string, start time.Time, monthWidth float64) float64 {
	t := ParseDate(monthKey)
	if t == nil {
		return 0
	}
	return CalculatePosition(*t, start, monthWidth) + monthWidth/2
}

// TruncateLabel 按估算字符宽度截断文本，超宽时以 "..." 结尾。
func TruncateLabel(text string, maxWidth float64, fontSize float64) string {
	if fontSize <= 0 {
		return text
	}
	charWidth := fontSize * avgCharWidthRatio
	maxChars := int(maxWidth / charWidth)
	if maxChars < 0 {
		maxChars = 0
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	if maxChars <= 3 {
		return string(runes[:maxChars])
	}
	return string(runes[:maxChars-3]) + "..."
}

// CreateVerticalMilestoneLabels 为共享一个月份的多个里程碑生成垂直堆叠的标签列表。
// 相邻下一个月没有里程碑时可以向右多借一个月的宽度，减少截断
//（借位策略参考时间轴渲染里的碰撞避让做法）。
func CreateVerticalMilestoneLabels(monthGroup []model.Milestone, maxWidth float64, fontSize float64, allMilestones []model.Milestone, monthWidth float64) []string {
	if len(monthGroup) == 0 {
		return []string{}
	}

	sorted := make([]model.Milestone, len(monthGroup))
	copy(sorted, monthGroup)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	available := maxWidth
	if t := ParseDate(sorted[0].Date); t != nil {
		nextKey := MonthKey(t.AddDate(0, 1, 0))
		if !monthOccupied(allMilestones, nextKey) && monthWidth > 0 {
			available = maxWidth + monthWidth
		}
	}

	labels := make([]string, 0, len(sorted))
	for _, m := range sorted {
		labels = append(labels, TruncateLabel(m.Label, available, fontSize))
	}
	return labels
}

func monthOccupied(all []model.Milestone, monthKey string) bool {
	for _, m := range all {
		if t := ParseDate(m.Date); t != nil && MonthKey(*t) == monthKey {
			return true
		}
	}
	return false
}

// InitialScrollPosition 返回让 "今天" 居中于可视区的水平滚动偏移。
func InitialScrollPosition(monthWidth, viewportWidth float64) float64 {
	r := TimelineRange()
	today := CalculatePosition(nowFunc(), r.StartDate, monthWidth)
	pos := today - viewportWidth/2
	if pos < 0 {
		return 0
	}
	return pos
}

// MonthOffsetCache 按行缓存日期到月偏移的映射。
// 渲染器逐像素查询位置，不能每次都重新解析日期；同一行内的日期
// 只解析一次，之后的位置查询是 map 命中 + 一次乘法。
type MonthOffsetCache struct {
	start   time.Time
	offsets map[string]int
}

// NewMonthOffsetCache 以时间窗起点创建缓存。
func NewMonthOffsetCache(start time.Time) *MonthOffsetCache {
	return &MonthOffsetCache{start: start, offsets: make(map[string]int)}
}

// Position 返回日期字符串的像素偏移，解析失败返回 -1。
func (c *MonthOffsetCache) Position(date string, monthWidth float64) float64 {
	offset, ok := c.offsets[date]
	if !ok {
		t := ParseDate(date)
		if t == nil {
			return -1
		}
		offset = MonthsBetween(c.start, *t)
		c.offsets[date] = offset
	}
	return float64(offset) * monthWidth
}
