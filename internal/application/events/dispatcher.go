// Package events implementa el despacho fire-and-forget de eventos de dominio
// hacia colaboradores externos (notificaciones PDF/email). Publicar nunca
// bloquea ni hace fallar la mutación del ledger que originó el evento; la
// entrega at-least-once es responsabilidad del consumidor aguas abajo.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
	"github.com/jhoicas/hospital-ledger/pkg/logger"
)

// Handler procesa un evento de dominio. Un error del handler se loguea y se
// descarta; jamás se propaga al write-path.
type Handler interface {
	Handle(ctx context.Context, evt entity.DomainEvent) error
}

// Publisher es la cara que ven los casos de uso del ledger.
type Publisher interface {
	Publish(eventType, entityID string)
}

// Dispatcher despacha eventos en un worker propio con cola acotada.
type Dispatcher struct {
	handlers []Handler
	queue    chan entity.DomainEvent
	log      *logger.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
	once     sync.Once
}

// NewDispatcher construye y arranca el despachador.
func NewDispatcher(log *logger.Logger, handlers ...Handler) *Dispatcher {
	d := &Dispatcher{
		handlers: handlers,
		queue:    make(chan entity.DomainEvent, 256),
		log:      log,
		timeout:  30 * time.Second,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Publish encola el evento sin bloquear. Si la cola está llena, el evento se
// descarta con un warning: perder una notificación es preferible a frenar el ledger.
func (d *Dispatcher) Publish(eventType, entityID string) {
	evt := entity.DomainEvent{
		ID:         uuid.New().String(),
		EventType:  eventType,
		EntityID:   entityID,
		OccurredAt: time.Now(),
	}
	select {
	case d.queue <- evt:
	default:
		d.log.Warn().
			Str("event_type", eventType).
			Str("entity_id", entityID).
			Msg("cola de eventos llena, evento descartado")
	}
}

// Close drena la cola y detiene el worker.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.queue) })
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for evt := range d.queue {
		for _, h := range d.handlers {
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			if err := h.Handle(ctx, evt); err != nil {
				d.log.Error().Err(err).
					Str("event_type", evt.EventType).
					Str("entity_id", evt.EntityID).
					Msg("handler de evento falló")
			}
			cancel()
		}
	}
}

// NopPublisher descarta todos los eventos (tests y wiring parcial).
type NopPublisher struct{}

func (NopPublisher) Publish(string, string) {}
