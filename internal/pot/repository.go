package pot

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/SlpAus/guo-backend/internal/platform/logger"
)

// Repository 持有进程内唯一的账本，并用读写锁协调并发访问。
//
// 读操作可以并发进行；写操作独占账本，成功后在持有写锁的情况下立即落盘，
// 因此任何读者都只能看到某次写操作完成前或完成后的完整状态，磁盘上快照的顺序也与提交顺序一致。
// 同一个文件路径只能有一个 Repository。
type Repository struct {
	rwLock   sync.RWMutex
	ledger   *Ledger
	path     string
	revision uint64

	save             func(path string, ledger *Ledger) error
	onPersistFailure func(error)
}

// Option 调整 Repository 的行为。
type Option func(*Repository)

// WithPersistFailureHandler 设置落盘失败时的处理函数。
// 生产环境应当让进程退出，而不是带着与磁盘不一致的内存状态继续运行。
func WithPersistFailureHandler(fn func(error)) Option {
	return func(r *Repository) {
		r.onPersistFailure = fn
	}
}

// withSaver 替换落盘函数，仅用于测试。
func withSaver(fn func(path string, ledger *Ledger) error) Option {
	return func(r *Repository) {
		r.save = fn
	}
}

// NewRepository 用一个已有账本创建仓库。
func NewRepository(path string, ledger *Ledger, opts ...Option) *Repository {
	if ledger == nil {
		ledger = NewLedger()
	}
	r := &Repository{
		ledger: ledger,
		path:   path,
		save:   Save,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OpenRepository 从 path 加载账本并创建仓库。
// 文件无法解析时会被改名保留，然后以空账本启动。
func OpenRepository(path string, log *logger.Logger, opts ...Option) *Repository {
	ledger, err := Load(path)
	if err != nil {
		log.Warn("账本加载失败，将以空账本启动", "path", path, "error", err)
		moved, qerr := quarantine(path, strconv.FormatInt(time.Now().Unix(), 10))
		if qerr != nil {
			log.Error("无法保留无法加载的账本文件，下一次写入将覆盖它", "path", path, "error", qerr)
		} else {
			log.Warn("已保留无法加载的账本文件", "path", moved)
		}
	} else {
		log.Info("账本加载成功", "path", path, "counter", ledger.Counter, "pots", len(ledger.Pots), "stats", len(ledger.Stats))
	}
	return NewRepository(path, ledger, opts...)
}

// Path 返回账本文件路径。
func (r *Repository) Path() string {
	return r.path
}

// Read 在读锁下调用 fn。fn 拿到的账本只读，且不能在 fn 返回后继续持有其中的引用。
func (r *Repository) Read(fn func(l *Ledger)) {
	r.rwLock.RLock()
	defer r.rwLock.RUnlock()
	fn(r.ledger)
}

// Revision 返回已提交的写操作次数。它只存在于内存中，进程重启后从0开始。
func (r *Repository) Revision() uint64 {
	r.rwLock.RLock()
	defer r.rwLock.RUnlock()
	return r.revision
}

// Snapshot 返回账本的深拷贝和对应的版本号。
func (r *Repository) Snapshot() (*Ledger, uint64) {
	r.rwLock.RLock()
	defer r.rwLock.RUnlock()
	return r.ledger.Clone(), r.revision
}

// Modify 在写锁下执行一次事务。
//
// fn 返回错误时不落盘，错误原样返回；fn 必须先校验再修改，失败路径上不能留下半截修改。
// fn 成功后账本立即被写入磁盘，写入失败会返回包装了 ErrPersist 的错误并触发落盘失败处理函数。
func Modify[T any](r *Repository, fn func(l *Ledger) (T, error)) (T, error) {
	result, err := func() (T, error) {
		r.rwLock.Lock()
		defer r.rwLock.Unlock()

		result, err := fn(r.ledger)
		if err != nil {
			return result, err
		}
		r.revision++
		if err := r.save(r.path, r.ledger); err != nil {
			return result, persistError(err)
		}
		return result, nil
	}()

	if err != nil && r.onPersistFailure != nil && errors.Is(err, ErrPersist) {
		r.onPersistFailure(err)
	}
	return result, err
}
