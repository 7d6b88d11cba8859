package worker

import (
	"context"
	"log"
	"time"

	"github.com/recupaai/recovery/internal/usecase"
)

// StaleLeadWorker reagenda leads parados em pending_recovery muito além do
// delay de contato configurado — jobs perdidos por restart ou fila zerada.
// A fila é at-least-once, então um reenvio eventual duplicado já é tolerado
// pelo desenho: o kill switch e a escrita condicional seguram o resto.
type StaleLeadWorker struct {
	leads        usecase.LeadRepositoryInterface
	producer     usecase.QueueProducerInterface
	staleAfter   time.Duration
	tickInterval time.Duration
	batchSize    int
}

func NewStaleLeadWorker(leads usecase.LeadRepositoryInterface, producer usecase.QueueProducerInterface) *StaleLeadWorker {
	return &StaleLeadWorker{
		leads:        leads,
		producer:     producer,
		staleAfter:   2 * time.Hour, // folga larga sobre qualquer delay_minutes razoável
		tickInterval: 15 * time.Minute,
		batchSize:    50,
	}
}

func (w *StaleLeadWorker) Start(ctx context.Context) {
	log.Println("🕒 Stale Lead Worker iniciado (janela de 2h)")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.requeueStale(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Stale Lead Worker encerrado")
			return
		case <-ticker.C:
			w.requeueStale(ctx)
		}
	}
}

func (w *StaleLeadWorker) requeueStale(ctx context.Context) {
	leads, err := w.leads.FindStalePending(ctx, w.staleAfter, w.batchSize)
	if err != nil {
		log.Printf("❌ Erro ao buscar leads pendentes antigos: %v", err)
		return
	}

	requeued := 0
	for _, lead := range leads {
		payload := usecase.RecoveryPayload{LeadID: lead.ID}
		if err := w.producer.PublishRecovery(ctx, payload, 0); err != nil {
			log.Printf("⚠️ Falha ao reagendar lead %s: %v", lead.ID, err)
			continue
		}
		requeued++
	}

	if requeued > 0 {
		log.Printf("✅ %d lead(s) pendente(s) reagendado(s)", requeued)
	}
}
