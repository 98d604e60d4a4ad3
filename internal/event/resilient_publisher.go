package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/critiquest/critiquest/internal/logger"
)

type retryEntry struct {
	event   Event
	attempt int
	// handlers still owed the event; nil means republish through the bus
	handlers []Handler
}

func newRetryEntry(event Event, err error) retryEntry {
	entry := retryEntry{event: event, attempt: 1}
	entry.narrow(err)
	return entry
}

// narrow limits later attempts to the handlers err reports as failed
func (e *retryEntry) narrow(err error) {
	var herr *HandlerError
	if errors.As(err, &herr) && len(herr.Failed) > 0 {
		e.handlers = herr.Failed
	}
}

// ResilientPublisher publishes to a Bus and retries failed events in the background
// with exponential backoff. Events that exhaust their retries are written to a
// dead-letter file so nothing is silently dropped.
type ResilientPublisher struct {
	bus        Bus
	retryQueue chan retryEntry
	maxRetries int
	retryDelay time.Duration
	deadLetter *DeadLetterWriter

	shutdown  chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewResilientPublisher creates a publisher and starts its retry worker
func NewResilientPublisher(bus Bus, maxRetries int, retryDelay time.Duration, deadLetterPath string) (*ResilientPublisher, error) {
	dl, err := NewDeadLetterWriter(deadLetterPath)
	if err != nil {
		return nil, err
	}

	p := &ResilientPublisher{
		bus:        bus,
		retryQueue: make(chan retryEntry, RetryQueueBufferSize),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		deadLetter: dl,
		shutdown:   make(chan struct{}),
	}

	p.wg.Add(1)
	go p.retryWorker()

	return p, nil
}

// PublishWithRetry publishes synchronously once and hands failures to the retry worker.
// It never returns an error to the caller.
func (p *ResilientPublisher) PublishWithRetry(ctx context.Context, event Event) {
	err := p.bus.Publish(ctx, event)
	if err == nil {
		return
	}

	log := logger.FromContext(ctx)
	log.Warn(LogMsgEventPublishFailed, "event_type", event.Type, "error", err)

	select {
	case <-p.shutdown:
		log.Warn(LogMsgEventDroppedShutdown, "event_type", event.Type)
		p.writeDeadLetter(event, 1, err)
		return
	default:
	}

	select {
	case p.retryQueue <- newRetryEntry(event, err):
	default:
		log.Error(LogMsgRetryQueueFull, "event_type", event.Type)
		p.writeDeadLetter(event, 1, err)
	}
}

func (p *ResilientPublisher) retryWorker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.shutdown:
			p.drain()
			return
		case entry := <-p.retryQueue:
			p.process(entry)
		}
	}
}

// process retries one event until it succeeds, runs out of attempts, or shutdown begins
func (p *ResilientPublisher) process(entry retryEntry) {
	for {
		timer := time.NewTimer(CalculateRetryDelay(p.retryDelay, entry.attempt))
		select {
		case <-timer.C:
		case <-p.shutdown:
			timer.Stop()
			p.finalAttempt(entry)
			return
		}

		err := p.redeliver(context.Background(), &entry)
		if err == nil {
			logger.Info(LogMsgEventRetrySucceeded, "event_type", entry.event.Type, "attempt", entry.attempt)
			return
		}

		if entry.attempt >= p.maxRetries {
			logger.Error(LogMsgEventRetryExhausted, "event_type", entry.event.Type, "attempts", entry.attempt+1)
			p.writeDeadLetter(entry.event, entry.attempt+1, err)
			return
		}

		logger.Warn(LogMsgEventRetryFailed, "event_type", entry.event.Type, "attempt", entry.attempt, "error", err)
		entry.attempt++
	}
}

// redeliver sends the event only to the handlers that have not yet accepted it
func (p *ResilientPublisher) redeliver(ctx context.Context, entry *retryEntry) error {
	var err error
	if entry.handlers == nil {
		err = p.bus.Publish(ctx, entry.event)
	} else {
		err = deliver(ctx, entry.event, entry.handlers)
	}
	if err != nil {
		entry.narrow(err)
	}
	return err
}

func (p *ResilientPublisher) finalAttempt(entry retryEntry) {
	if err := p.redeliver(context.Background(), &entry); err != nil {
		p.writeDeadLetter(entry.event, entry.attempt+1, err)
	}
}

func (p *ResilientPublisher) drain() {
	for {
		select {
		case entry := <-p.retryQueue:
			p.finalAttempt(entry)
		default:
			return
		}
	}
}

func (p *ResilientPublisher) writeDeadLetter(event Event, attempts int, err error) {
	if p.deadLetter == nil {
		return
	}
	if werr := p.deadLetter.Write(event, attempts, err); werr != nil {
		logger.Error(LogMsgDeadLetterWriteFailed, "event_type", event.Type, "error", werr)
	}
}

// Shutdown stops the retry worker, flushing queued events with one last attempt each
func (p *ResilientPublisher) Shutdown(ctx context.Context) error {
	p.closeOnce.Do(func() { close(p.shutdown) })

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn(LogMsgShutdownTimeout)
		return fmt.Errorf("resilient publisher shutdown: %w", ctx.Err())
	}

	if p.deadLetter != nil {
		return p.deadLetter.Close()
	}
	return nil
}
