package client

import (
	"context"
	"log"
	"sync"

	"github.com/AkshayTiwari27/LiveDocs/internal/model"
)

// RoomLister : запрос, который цикл повторяет при обнаружении роста счётчика
type RoomLister interface {
	ListForIdentity(ctx context.Context, email string) ([]model.Room, error)
}

type fetchResult struct {
	rooms []model.Room
	err   error
}

// Reconciler : клиентский цикл сверки. Наблюдает счётчик непрочитанных
// уведомлений и на каждом росте перечитывает список комнат identity.
// Сравнение двух состояний (prev, current): рост -> одно перечитывание,
// prev обновляется безусловно, поэтому убывание счётчика (прочтение старых
// уведомлений) поглощается молча и перечитывания не вызывает.
//
// Перечитывания не накладываются: пока одно в полёте, новые росты
// схлопываются в один отложенный запрос (pending), а не в очередь.
type Reconciler struct {
	lister RoomLister
	email  string

	prevUnread int64
	pending    bool

	mu       sync.Mutex
	snapshot []model.Room
	fetches  int
}

func NewReconciler(lister RoomLister, email string) *Reconciler {
	return &Reconciler{
		lister: lister,
		email:  email,
	}
}

// Run : обрабатывает наблюдения счётчика из counts до закрытия канала или
// отмены ctx. При отмене недокоммиченный результат перечитывания
// отбрасывается, кэш не обновляется частично.
func (r *Reconciler) Run(ctx context.Context, counts <-chan int64) error {
	var inFlight chan fetchResult

	for {
		select {
		case <-ctx.Done():
			// результат в полёте отбрасывается
			return ctx.Err()

		case count, ok := <-counts:
			if !ok {
				return r.drain(ctx, inFlight)
			}
			if count > r.prevUnread {
				if inFlight == nil {
					inFlight = r.startFetch(ctx)
				} else {
					r.pending = true
				}
			}
			r.prevUnread = count

		case result := <-inFlight:
			inFlight = nil
			r.commit(result)
			if r.pending {
				r.pending = false
				inFlight = r.startFetch(ctx)
			}
		}
	}
}

// startFetch : запускает одно перечитывание; результат приходит в канал,
// чтобы цикл оставался однопоточным
func (r *Reconciler) startFetch(ctx context.Context) chan fetchResult {
	done := make(chan fetchResult, 1)
	go func() {
		rooms, err := r.lister.ListForIdentity(ctx, r.email)
		done <- fetchResult{rooms: rooms, err: err}
	}()
	return done
}

// drain : канал наблюдений закрыт — дожидаемся перечитывания в полёте
// (и одного отложенного), чтобы не потерять последний рост
func (r *Reconciler) drain(ctx context.Context, inFlight chan fetchResult) error {
	for inFlight != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case result := <-inFlight:
			inFlight = nil
			r.commit(result)
			if r.pending {
				r.pending = false
				inFlight = r.startFetch(ctx)
			}
		}
	}
	return nil
}

// commit : заменяет снапшот целиком; при ошибке прежний снапшот сохраняется
func (r *Reconciler) commit(result fetchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fetches++
	if result.err != nil {
		log.Printf("[Reconciler] ошибка перечитывания списка: %v", result.err)
		return
	}
	r.snapshot = result.rooms
}

// Snapshot : текущий кэшированный список комнат
func (r *Reconciler) Snapshot() []model.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot
}

// Fetches : сколько перечитываний было выполнено
func (r *Reconciler) Fetches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetches
}
