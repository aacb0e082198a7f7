package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"viewtube/internal/cache"
	"viewtube/internal/model"
	"viewtube/internal/repository"
)

// ViewPersistWorker drains the view-event queue: each event becomes a
// watch-history row plus a view-count bump, and the viewer's cached
// history is invalidated.
type ViewPersistWorker struct {
	conn         *amqp.Connection
	watchEvents  *repository.WatchEventRepository
	videos       *repository.VideoRepository
	historyCache *cache.WatchHistoryCache
	queueName    string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewViewPersistWorker(
	conn *amqp.Connection,
	watchEvents *repository.WatchEventRepository,
	videos *repository.VideoRepository,
	historyCache *cache.WatchHistoryCache,
	queueName string,
) *ViewPersistWorker {
	return &ViewPersistWorker{
		conn:         conn,
		watchEvents:  watchEvents,
		videos:       videos,
		historyCache: historyCache,
		queueName:    queueName,
	}
}

func (w *ViewPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var event model.WatchEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					log.Printf("worker decode view event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.persist(workerCtx, event); err != nil {
					log.Printf("worker persist view event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *ViewPersistWorker) persist(ctx context.Context, event model.WatchEvent) error {
	event.ID = 0
	if err := w.watchEvents.Create(&event); err != nil {
		return err
	}
	if err := w.videos.IncrementViews(event.VideoID); err != nil {
		return err
	}
	if w.historyCache != nil {
		_ = w.historyCache.DeleteHistory(ctx, event.UserID)
	}
	return nil
}

func (w *ViewPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
