package pot

// Selector 按ID或按索引定位一个锅。两者都给时ID优先，都不给时永远找不到。
type Selector struct {
	ID    *int `json:"id" form:"id"`
	Index *int `json:"index" form:"index"`
}

// ByID 构造按ID查找的选择器。
func ByID(id int) Selector {
	return Selector{ID: &id}
}

// ByIndex 构造按当前位置（从0开始）查找的选择器。
func ByIndex(index int) Selector {
	return Selector{Index: &index}
}

// position 返回选择器在 pots 中解析到的下标，找不到时返回 -1。
func (s Selector) position(pots []Pot) int {
	switch {
	case s.ID != nil:
		for i := range pots {
			if pots[i].ID == *s.ID {
				return i
			}
		}
		return -1
	case s.Index != nil:
		if *s.Index < 0 || *s.Index >= len(pots) {
			return -1
		}
		return *s.Index
	default:
		return -1
	}
}
