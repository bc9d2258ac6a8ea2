package pot

import (
	"context"

	"github.com/SlpAus/guo-backend/internal/platform/events"
	"github.com/SlpAus/guo-backend/internal/platform/logger"
)

// EventSink 接收已提交并落盘的变更事件。
type EventSink interface {
	Publish(ctx context.Context, eventType string, payload any)
}

type nopSink struct{}

func (nopSink) Publish(context.Context, string, any) {}

// Service 是锅模块的业务入口，每个方法对应一个对外操作。
type Service struct {
	repo *Repository
	sink EventSink
	log  *logger.Logger
}

// NewService 创建业务服务。sink 为 nil 时不发布事件。
func NewService(repo *Repository, sink EventSink, log *logger.Logger) *Service {
	if sink == nil {
		sink = nopSink{}
	}
	return &Service{repo: repo, sink: sink, log: log}
}

// Repository 返回底层仓库。
func (s *Service) Repository() *Repository {
	return s.repo
}

// ListPots 有锅吗？
func (s *Service) ListPots() []Pot {
	s.log.Info("/有锅吗")
	var pots []Pot
	s.repo.Read(func(l *Ledger) {
		pots = ClonePots(l.Pots)
	})
	return pots
}

// GetPot 查询一个锅。
func (s *Service) GetPot(sel Selector) (Pot, error) {
	s.log.Info("/查询锅", "id", sel.ID, "index", sel.Index)
	var (
		pot Pot
		ok  bool
	)
	s.repo.Read(func(l *Ledger) {
		var p *Pot
		if p, ok = l.Find(sel); ok {
			pot = p.Clone()
		}
	})
	if !ok {
		return Pot{}, ErrNotFound
	}
	return pot, nil
}

// Stats 查询统计，top 为 nil 时返回全部。
func (s *Service) Stats(top *int) []EaterStats {
	s.log.Info("/统计", "top", top)
	var stats []EaterStats
	s.repo.Read(func(l *Ledger) {
		stats = TopStats(l.Stats, top)
	})
	return stats
}

// CreatePot 约锅。
func (s *Service) CreatePot(ctx context.Context, p CreatePotParams) (Pot, error) {
	s.log.Info("/约锅", "name", p.Owner, "position", p.Position, "time", p.Time, "taste", p.Taste, "mian", p.Mian, "fan", p.Fan, "note", p.Note)
	pot, err := Modify(s.repo, func(l *Ledger) (Pot, error) {
		return l.CreatePot(p), nil
	})
	if err != nil {
		return Pot{}, err
	}
	s.sink.Publish(ctx, events.TypePotCreated, NewPotView(pot))
	return pot, nil
}

// Join 吃锅。
func (s *Service) Join(ctx context.Context, sel Selector, name string, mian, fan int) (Pot, error) {
	s.log.Info("/吃锅", "name", name, "id", sel.ID, "index", sel.Index, "mian", mian, "fan", fan)
	pot, err := Modify(s.repo, func(l *Ledger) (Pot, error) {
		return l.Join(sel, name, mian, fan)
	})
	if err != nil {
		return Pot{}, err
	}
	s.sink.Publish(ctx, events.TypePotJoined, NewPotView(pot))
	return pot, nil
}

// Finish 吃完了。
func (s *Service) Finish(ctx context.Context, sel Selector) (Pot, error) {
	s.log.Info("/吃完了", "id", sel.ID, "index", sel.Index)
	pot, err := Modify(s.repo, func(l *Ledger) (Pot, error) {
		return l.Finish(sel)
	})
	if err != nil {
		return Pot{}, err
	}
	s.sink.Publish(ctx, events.TypePotFinished, NewPotView(pot))
	return pot, nil
}

// Edit 改锅。
func (s *Service) Edit(ctx context.Context, sel Selector, p EditParams) (Pot, error) {
	s.log.Info("/改锅", "id", sel.ID, "index", sel.Index, "position", p.Position, "time", p.Time, "taste", p.Taste, "note_action", p.Note.Action)
	pot, err := Modify(s.repo, func(l *Ledger) (Pot, error) {
		return l.Edit(sel, p)
	})
	if err != nil {
		return Pot{}, err
	}
	s.sink.Publish(ctx, events.TypePotEdited, NewPotView(pot))
	return pot, nil
}

// Leave 下车。
func (s *Service) Leave(ctx context.Context, sel Selector, name string) (Pot, error) {
	s.log.Info("/下车", "id", sel.ID, "index", sel.Index, "name", name)
	pot, err := Modify(s.repo, func(l *Ledger) (Pot, error) {
		return l.Leave(sel, name)
	})
	if err != nil {
		return Pot{}, err
	}
	s.sink.Publish(ctx, events.TypePotLeft, NewPotView(pot))
	return pot, nil
}

// EditDemand 改需求。
func (s *Service) EditDemand(ctx context.Context, sel Selector, name string, mian, fan *int) (Pot, error) {
	s.log.Info("/改需求", "id", sel.ID, "index", sel.Index, "name", name, "mian", mian, "fan", fan)
	pot, err := Modify(s.repo, func(l *Ledger) (Pot, error) {
		return l.EditDemand(sel, name, mian, fan)
	})
	if err != nil {
		return Pot{}, err
	}
	s.sink.Publish(ctx, events.TypeDemandEdited, NewPotView(pot))
	return pot, nil
}

// Clear 清空锅，返回清空前的锅。
func (s *Service) Clear(ctx context.Context) ([]Pot, error) {
	s.log.Info("/清空锅")
	pots, err := Modify(s.repo, func(l *Ledger) ([]Pot, error) {
		return l.Clear(), nil
	})
	if err != nil {
		return nil, err
	}
	s.sink.Publish(ctx, events.TypePotsCleared, NewPotViews(pots))
	return pots, nil
}
