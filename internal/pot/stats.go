package pot

import "sort"

// TopStats 返回按吃锅次数从多到少排序的统计，次数相同时保持首次出现的顺序。
// top 为 nil 时返回全部，否则截取前 top 名。
func TopStats(stats []EaterStats, top *int) []EaterStats {
	out := append([]EaterStats{}, stats...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EatCount > out[j].EatCount
	})
	if top != nil {
		n := *top
		if n < 0 {
			n = 0
		}
		if n < len(out) {
			out = out[:n]
		}
	}
	return out
}
