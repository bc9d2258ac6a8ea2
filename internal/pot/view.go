package pot

// --- API 响应模型 ---

// PotView 是锅的 API 表示，附带一共几面、几饭。
type PotView struct {
	ID       int         `json:"id"`
	Position string      `json:"position"`
	Time     string      `json:"time"`
	Taste    string      `json:"taste"`
	Eaters   []EaterView `json:"eaters"`
	Note     *string     `json:"note"`
	Mian     int         `json:"mian"`
	Fan      int         `json:"fan"`
}

// EaterView 是锅里一个人的 API 表示。
type EaterView struct {
	Name string `json:"name"`
	Mian int    `json:"mian"`
	Fan  int    `json:"fan"`
}

// EaterStatsView 是统计的 API 表示，平均值在这里计算而不落盘。
type EaterStatsView struct {
	Name     string  `json:"name"`
	Mian     int     `json:"mian"`
	Fan      int     `json:"fan"`
	EatCount int     `json:"eatCount"`
	PotCount int     `json:"potCount"`
	AvgMian  float64 `json:"avgMian"`
	AvgFan   float64 `json:"avgFan"`
}

// NewPotView 把锅转换为 API 表示并计算总面数、总饭数。
func NewPotView(p Pot) PotView {
	eaters := make([]EaterView, 0, len(p.Eaters))
	for _, e := range p.Eaters {
		eaters = append(eaters, EaterView{Name: e.Name, Mian: e.Mian, Fan: e.Fan})
	}
	return PotView{
		ID:       p.ID,
		Position: p.Position,
		Time:     p.Time,
		Taste:    p.Taste,
		Eaters:   eaters,
		Note:     p.Note,
		Mian:     p.TotalMian(),
		Fan:      p.TotalFan(),
	}
}

// NewPotViews 按原顺序转换一组锅。
func NewPotViews(pots []Pot) []PotView {
	out := make([]PotView, 0, len(pots))
	for _, p := range pots {
		out = append(out, NewPotView(p))
	}
	return out
}

// NewEaterStatsViews 转换一组统计并计算平均值。
func NewEaterStatsViews(stats []EaterStats) []EaterStatsView {
	out := make([]EaterStatsView, 0, len(stats))
	for _, s := range stats {
		out = append(out, EaterStatsView{
			Name:     s.Name,
			Mian:     s.Mian,
			Fan:      s.Fan,
			EatCount: s.EatCount,
			PotCount: s.PotCount,
			AvgMian:  s.AvgMian(),
			AvgFan:   s.AvgFan(),
		})
	}
	return out
}
