package service

import (
	"pmo_roadmap_go/pkg/timeline"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// datePtr 把源数据日期字符串规范化为 YYYY-MM-DD 指针。
// 空串和坏日期统一归约为 nil，从不报错。
func datePtr(raw string) *string {
	t := timeline.ParseDate(raw)
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

// newNameCollator 创建名称排序用的排序器：按地区规则、忽略大小写。
// collate.Collator 不是并发安全的，每次投影各建一个。
func newNameCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}
