package notif

import (
	"errors"
	"log"
	"sync"

	"taskchat/internal/common"
)

var (
	ErrQueueFull     = errors.New("notification queue full")
	ErrManagerClosed = errors.New("notification manager shut down")
)

var _ common.Subject = (*NotificationManager)(nil)

// NotificationManager fans events out to observers from a bounded queue
// served by a fixed worker pool.
type NotificationManager struct {
	observers    map[string]common.Observer
	eventChannel chan common.NotificationEvent
	workerPool   int
	mu           sync.RWMutex
	closed       bool
	wg           sync.WaitGroup
}

func NewNotificationManager(workerPoolSize, bufferSize int) *NotificationManager {
	if workerPoolSize < 1 {
		workerPoolSize = 1
	}
	if bufferSize < 1 {
		bufferSize = 1000
	}

	nm := &NotificationManager{
		observers:    make(map[string]common.Observer),
		eventChannel: make(chan common.NotificationEvent, bufferSize),
		workerPool:   workerPoolSize,
	}

	for i := 0; i < workerPoolSize; i++ {
		nm.wg.Add(1)
		go nm.processEvents()
	}

	return nm
}

func (nm *NotificationManager) Subscribe(observer common.Observer) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.observers[observer.Name()] = observer
	log.Printf("Observer %s subscribed", observer.Name())
}

func (nm *NotificationManager) Unsubscribe(observer common.Observer) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	delete(nm.observers, observer.Name())
	log.Printf("Observer %s unsubscribed", observer.Name())
}

// Notify runs every observer on the caller's goroutine.
func (nm *NotificationManager) Notify(event common.NotificationEvent) {
	nm.mu.RLock()
	observers := make([]common.Observer, 0, len(nm.observers))
	for _, obs := range nm.observers {
		observers = append(observers, obs)
	}
	nm.mu.RUnlock()

	for _, observer := range observers {
		if err := observer.Update(event); err != nil {
			log.Printf("Observer %s update failed: %v", observer.Name(), err)
		}
	}
}

// NotifyAsync queues event for the workers without blocking. A full queue
// drops the event.
func (nm *NotificationManager) NotifyAsync(event common.NotificationEvent) error {
	nm.mu.RLock()
	defer nm.mu.RUnlock()

	if nm.closed {
		return ErrManagerClosed
	}

	select {
	case nm.eventChannel <- event:
		return nil
	default:
		log.Printf("Notification channel full, dropping event: %s", event.Type)
		return ErrQueueFull
	}
}

func (nm *NotificationManager) processEvents() {
	defer nm.wg.Done()

	for event := range nm.eventChannel {
		nm.Notify(event)
	}
}

// Shutdown stops accepting events and waits for the queued ones to finish.
func (nm *NotificationManager) Shutdown() {
	nm.mu.Lock()
	if nm.closed {
		nm.mu.Unlock()
		return
	}
	nm.closed = true
	close(nm.eventChannel)
	nm.mu.Unlock()

	nm.wg.Wait()
	log.Println("NotificationManager shutdown complete")
}
