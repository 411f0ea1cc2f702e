// Package workerpool kayıt (registration) gönderimleri gibi best-effort
// arka plan işleri için sınırlı bir worker havuzu sağlar.
package workerpool

import (
	"context"
	"sync"

	"formulier.link/configs/configslog"
)

// Job havuz tarafından çalıştırılan iş birimi.
type Job func(ctx context.Context)

// WorkerPool sabit sayıda worker ile sınırlı bir kuyruk işletir.
// wg kuyruğa kabul edilmiş ama henüz bitmemiş işleri sayar.
type WorkerPool struct {
	queue  chan Job
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// New havuzu kurar ve worker'ları başlatır.
func New(ctx context.Context, workerCount int, queueSize int) *WorkerPool {
	pool := &WorkerPool{
		queue: make(chan Job, queueSize),
	}
	for i := 0; i < workerCount; i++ {
		go pool.worker(ctx)
	}
	return pool
}

func (p *WorkerPool) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			job(ctx)
			p.wg.Done()
		}
	}
}

// drain context iptalinde kuyrukta kalan işlerin sayacını düşer;
// işler çalıştırılmaz.
func (p *WorkerPool) drain() {
	for {
		select {
		case _, ok := <-p.queue:
			if !ok {
				return
			}
			p.wg.Done()
		default:
			return
		}
	}
}

// Submit işi kuyruğa ekler; kuyruk doluysa veya havuz kapatılmışsa iş
// düşürülür ve loglanır. Kayıt gönderimleri dış retry katmanı tarafından
// tekrar tetiklenebilir.
func (p *WorkerPool) Submit(job Job) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		configslog.SLog.Warn("Worker havuzu kapatıldı, iş düşürüldü.")
		return
	}
	select {
	case p.queue <- job:
		p.wg.Add(1)
	default:
		configslog.SLog.Warn("Worker havuzu kuyruğu dolu, iş düşürüldü.")
	}
}

// Shutdown kuyruğu kapatır ve kabul edilmiş işlerin (çalışan + kuyruktaki)
// bitmesini bekler. Tekrarlanan çağrılar güvenlidir.
func (p *WorkerPool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		configslog.SLog.Warn("Worker havuzu kapanışı zaman aşımına uğradı.")
	}
}
