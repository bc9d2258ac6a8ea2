package pot

// 本文件中的方法都是纯内存操作，不加锁也不做I/O。
// 所有会失败的操作都先完成查找和校验，最后才修改状态。

// AllocateID 递增计数器并返回新的锅ID。
func (l *Ledger) AllocateID() int {
	l.Counter++
	return l.Counter
}

// Find 按选择器查找锅，返回的是账本内部的引用。
func (l *Ledger) Find(sel Selector) (*Pot, bool) {
	i := sel.position(l.Pots)
	if i < 0 {
		return nil, false
	}
	return &l.Pots[i], true
}

// UpsertStats 返回 name 的统计条目，不存在时追加一个全零条目。
func (l *Ledger) UpsertStats(name string) *EaterStats {
	for i := range l.Stats {
		if l.Stats[i].Name == name {
			return &l.Stats[i]
		}
	}
	l.Stats = append(l.Stats, EaterStats{Name: name})
	return &l.Stats[len(l.Stats)-1]
}

// CreatePotParams 是约锅的参数。
type CreatePotParams struct {
	Position string
	Time     string
	Taste    string
	Owner    string
	Mian     int
	Fan      int
	Note     *string
}

// CreatePot 约锅：发起人成为第一个吃锅的人，并记一次约锅次数。
func (l *Ledger) CreatePot(p CreatePotParams) Pot {
	var note *string
	if p.Note != nil {
		v := *p.Note
		note = &v
	}
	pot := Pot{
		ID:       l.AllocateID(),
		Position: p.Position,
		Time:     p.Time,
		Taste:    p.Taste,
		Eaters:   []Eater{{Name: p.Owner, Mian: p.Mian, Fan: p.Fan}},
		Note:     note,
	}
	l.Pots = append(l.Pots, pot)
	l.UpsertStats(p.Owner).PotCount++
	return pot.Clone()
}

// Join 吃锅。
func (l *Ledger) Join(sel Selector, name string, mian, fan int) (Pot, error) {
	pot, ok := l.Find(sel)
	if !ok {
		return Pot{}, ErrNotFound
	}
	if pot.HasEater(name) {
		return Pot{}, ErrAlreadyJoined
	}
	pot.Eaters = append(pot.Eaters, Eater{Name: name, Mian: mian, Fan: fan})
	return pot.Clone(), nil
}

// Leave 下车。名字不在锅里不算错误。
func (l *Ledger) Leave(sel Selector, name string) (Pot, error) {
	pot, ok := l.Find(sel)
	if !ok {
		return Pot{}, ErrNotFound
	}
	kept := pot.Eaters[:0]
	for _, e := range pot.Eaters {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	pot.Eaters = kept
	return pot.Clone(), nil
}

// Finish 吃完了：移除锅，并把锅里每个人的需求累加进统计。返回移除前的锅。
func (l *Ledger) Finish(sel Selector) (Pot, error) {
	i := sel.position(l.Pots)
	if i < 0 {
		return Pot{}, ErrNotFound
	}
	pot := l.Pots[i].Clone()
	l.Pots = append(l.Pots[:i], l.Pots[i+1:]...)
	l.fold(pot)
	return pot, nil
}

// EditParams 是改锅的参数，nil 表示不修改。
type EditParams struct {
	Position *string
	Time     *string
	Taste    *string
	Note     NoteUpdate
}

// Edit 改锅。
func (l *Ledger) Edit(sel Selector, p EditParams) (Pot, error) {
	pot, ok := l.Find(sel)
	if !ok {
		return Pot{}, ErrNotFound
	}
	if p.Position != nil {
		pot.Position = *p.Position
	}
	if p.Time != nil {
		pot.Time = *p.Time
	}
	if p.Taste != nil {
		pot.Taste = *p.Taste
	}
	p.Note.apply(&pot.Note)
	return pot.Clone(), nil
}

// EditDemand 改需求，只修改给出的字段。
func (l *Ledger) EditDemand(sel Selector, name string, mian, fan *int) (Pot, error) {
	pot, ok := l.Find(sel)
	if !ok {
		return Pot{}, ErrNotFound
	}
	var eater *Eater
	for i := range pot.Eaters {
		if pot.Eaters[i].Name == name {
			eater = &pot.Eaters[i]
			break
		}
	}
	if eater == nil {
		return Pot{}, ErrNotInPot
	}
	if mian != nil {
		eater.Mian = *mian
	}
	if fan != nil {
		eater.Fan = *fan
	}
	return pot.Clone(), nil
}

// Clear 清空锅：每个锅都按 Finish 的方式计入统计，然后清空。返回清空前的锅。
func (l *Ledger) Clear() []Pot {
	cleared := l.Pots
	l.Pots = []Pot{}
	for _, pot := range cleared {
		l.fold(pot)
	}
	return ClonePots(cleared)
}

// fold 把一个锅里所有人的需求计入统计。
func (l *Ledger) fold(pot Pot) {
	for _, e := range pot.Eaters {
		stats := l.UpsertStats(e.Name)
		stats.EatCount++
		stats.Mian += e.Mian
		stats.Fan += e.Fan
	}
}
