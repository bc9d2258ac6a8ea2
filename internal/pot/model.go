package pot

// Ledger 是约锅账本的完整内存状态，作为一个一致性单元整体读写和持久化。
// 它本身不包含任何锁，并发访问由 Repository 负责。
type Ledger struct {
	// Counter 是单调递增的锅ID计数器，只会因为约锅而增加，永不回退。
	Counter int `bson:"counter"`
	// Pots 是当前所有进行中的锅，顺序即插入/移除后的当前顺序。
	Pots []Pot `bson:"pots"`
	// Stats 是每个人的累计统计，顺序为首次出现的顺序。
	Stats []EaterStats `bson:"stats"`
}

// Pot 是一次约锅。
type Pot struct {
	ID       int     `bson:"id"`
	Position string  `bson:"position"` // 锅哪啊？
	Time     string  `bson:"time"`     // 啥时候锅啊？
	Taste    string  `bson:"taste"`    // 啥口味啊？
	Eaters   []Eater `bson:"eaters"`
	Note     *string `bson:"note"`
}

// Eater 是锅里的一个人和这个人的需求。
type Eater struct {
	Name string `bson:"name"`
	Mian int    `bson:"mian"` // 几面？
	Fan  int    `bson:"fan"`  // 几饭？
}

// EaterStats 是一个人的约锅统计，只会累加，不会被删除。
type EaterStats struct {
	Name     string `bson:"name"`
	Mian     int    `bson:"mian"`
	Fan      int    `bson:"fan"`
	EatCount int    `bson:"eat_count"` // 吃锅次数
	PotCount int    `bson:"pot_count"` // 约锅次数
}

// NewLedger 返回一个空账本。
func NewLedger() *Ledger {
	return &Ledger{
		Pots:  []Pot{},
		Stats: []EaterStats{},
	}
}

// TotalMian 返回锅里一共几面。
func (p Pot) TotalMian() int {
	total := 0
	for _, e := range p.Eaters {
		total += e.Mian
	}
	return total
}

// TotalFan 返回锅里一共几饭。
func (p Pot) TotalFan() int {
	total := 0
	for _, e := range p.Eaters {
		total += e.Fan
	}
	return total
}

// HasEater 判断某人是否已在锅里。
func (p Pot) HasEater(name string) bool {
	for _, e := range p.Eaters {
		if e.Name == name {
			return true
		}
	}
	return false
}

// Clone 返回锅的深拷贝，返回给调用方的锅不能与账本共享底层切片。
func (p Pot) Clone() Pot {
	out := p
	out.Eaters = append([]Eater(nil), p.Eaters...)
	if out.Eaters == nil {
		out.Eaters = []Eater{}
	}
	if p.Note != nil {
		note := *p.Note
		out.Note = &note
	}
	return out
}

// AvgMian 平均面数，没吃过锅时为0。
func (s EaterStats) AvgMian() float64 {
	if s.EatCount == 0 {
		return 0.0
	}
	return float64(s.Mian) / float64(s.EatCount)
}

// AvgFan 平均饭数，没吃过锅时为0。
func (s EaterStats) AvgFan() float64 {
	if s.EatCount == 0 {
		return 0.0
	}
	return float64(s.Fan) / float64(s.EatCount)
}

// Clone 返回整个账本的深拷贝。
func (l *Ledger) Clone() *Ledger {
	out := &Ledger{
		Counter: l.Counter,
		Pots:    ClonePots(l.Pots),
		Stats:   append([]EaterStats{}, l.Stats...),
	}
	return out
}

// ClonePots 深拷贝一组锅。
func ClonePots(pots []Pot) []Pot {
	out := make([]Pot, 0, len(pots))
	for _, p := range pots {
		out = append(out, p.Clone())
	}
	return out
}

// normalize 把反序列化得到的 nil 切片统一为空切片。
func (l *Ledger) normalize() {
	if l.Pots == nil {
		l.Pots = []Pot{}
	}
	if l.Stats == nil {
		l.Stats = []EaterStats{}
	}
	for i := range l.Pots {
		if l.Pots[i].Eaters == nil {
			l.Pots[i].Eaters = []Eater{}
		}
	}
}
