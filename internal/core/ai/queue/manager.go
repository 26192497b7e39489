package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"mixologist/internal/core/ai/provider"
	"mixologist/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrQueueFull 等待中的請求已達上限
var ErrQueueFull = common.ErrServiceUnavailable.Wrap(errors.New("generation queue is full"))

// ErrClosed 隊列已關閉
var ErrClosed = errors.New("generation queue is closed")

// job 隊列請求
type job struct {
	ctx    context.Context
	req    *provider.Request
	result chan result
}

// result 處理結果
type result struct {
	resp *provider.Response
	err  error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Manager 以固定數量的 worker 呼叫生成式後端，本身也實作 provider.Provider
type Manager struct {
	provider  provider.Provider
	queue     chan *job
	done      chan struct{}
	workers   int
	maxSize   int
	processed int64
	wg        sync.WaitGroup
	once      sync.Once
}

// NewManager 創建新的隊列管理器並啟動 worker
func NewManager(p provider.Provider, workers, maxSize int) *Manager {
	if workers <= 0 {
		workers = 1
	}
	if maxSize <= 0 {
		maxSize = workers
	}

	m := &Manager{
		provider: p,
		queue:    make(chan *job, maxSize),
		done:     make(chan struct{}),
		workers:  workers,
		maxSize:  maxSize,
	}

	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.work()
	}

	common.LogInfo("生成隊列已啟動",
		zap.String("provider", p.Name()),
		zap.Int("workers", workers),
		zap.Int("max_queue_size", maxSize),
	)

	return m
}

func (m *Manager) work() {
	defer m.wg.Done()
	for {
		select {
		case j := <-m.queue:
			// 排隊期間已取消的請求不再送出
			if err := j.ctx.Err(); err != nil {
				j.result <- result{err: err}
				continue
			}
			resp, err := m.provider.Generate(j.ctx, j.req)
			atomic.AddInt64(&m.processed, 1)
			j.result <- result{resp: resp, err: err}
		case <-m.done:
			return
		}
	}
}

// Generate 將請求加入隊列並等待結果
func (m *Manager) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	j := &job{ctx: ctx, req: req, result: make(chan result, 1)}

	select {
	case <-m.done:
		return nil, ErrClosed
	default:
	}

	select {
	case m.queue <- j:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.maxSize),
		)
	default:
		common.LogWarn("生成隊列已滿", zap.Int("max_queue_size", m.maxSize))
		return nil, ErrQueueFull
	}

	select {
	case r := <-j.result:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, ErrClosed
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() Status {
	return Status{
		QueueLength:    len(m.queue),
		ProcessedCount: atomic.LoadInt64(&m.processed),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// GetModel 獲取模型名稱
func (m *Manager) GetModel() string {
	return m.provider.GetModel()
}

// GetTimeout 獲取超時時間
func (m *Manager) GetTimeout() time.Duration {
	return m.provider.GetTimeout()
}

// Name 後端名稱
func (m *Manager) Name() string {
	return m.provider.Name()
}

// Close 停止 worker 並關閉後端
func (m *Manager) Close() error {
	m.once.Do(func() { close(m.done) })
	m.wg.Wait()
	return m.provider.Close()
}
