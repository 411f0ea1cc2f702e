package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitRunsJobs(t *testing.T) {
	ctx := context.Background()
	pool := New(ctx, 2, 8)

	var ran int64
	for i := 0; i < 5; i++ {
		pool.Submit(func(ctx context.Context) {
			atomic.AddInt64(&ran, 1)
		})
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool.Shutdown(shutdownCtx)

	if got := atomic.LoadInt64(&ran); got != 5 {
		t.Errorf("tüm işler çalışmalıydı: %d", got)
	}
}

func TestShutdownWaitsForQueuedJobs(t *testing.T) {
	ctx := context.Background()
	// Tek worker: işler sırayla çalışır, kuyrukta bekleyenler olur
	pool := New(ctx, 1, 8)

	var ran int64
	for i := 0; i < 4; i++ {
		pool.Submit(func(ctx context.Context) {
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt64(&ran, 1)
		})
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool.Shutdown(shutdownCtx)

	if got := atomic.LoadInt64(&ran); got != 4 {
		t.Errorf("kapanış kuyruktaki işleri beklemeliydi: %d", got)
	}
}

func TestSubmitAfterShutdownIsDropped(t *testing.T) {
	ctx := context.Background()
	pool := New(ctx, 1, 2)

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	pool.Shutdown(shutdownCtx)

	// Kapalı havuza gönderim panic'e yol açmamalı
	pool.Submit(func(ctx context.Context) {
		t.Error("kapalı havuzda iş çalışmamalı")
	})
	// İşin çalışmadığını gözlemlemek için kısa bir bekleme
	time.Sleep(20 * time.Millisecond)
}

func TestConcurrentSubmitAndShutdown(t *testing.T) {
	ctx := context.Background()
	pool := New(ctx, 2, 4)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				pool.Submit(func(ctx context.Context) {})
			}
		}
	}()

	time.Sleep(5 * time.Millisecond)
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	// Eşzamanlı Submit, kapatılmış kuyruğa yazmaya çalışıp panic'lememeli
	pool.Shutdown(shutdownCtx)

	close(stop)
	wg.Wait()
}

func TestRepeatedShutdownIsSafe(t *testing.T) {
	ctx := context.Background()
	pool := New(ctx, 1, 2)

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	pool.Shutdown(shutdownCtx)
	pool.Shutdown(shutdownCtx)
}
