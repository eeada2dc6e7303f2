package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/quantive/mrplan/pkg/application/services"
	"github.com/quantive/mrplan/pkg/domain/entities"
	"github.com/quantive/mrplan/pkg/domain/repositories"
)

// Config names the broker and the queues the planner listens and replies on
type Config struct {
	URL          string
	QConsumeReq  string
	QConsumeDone string
}

// Rabbit connects the planner to the demand-import pipeline: whenever new
// sales-order demand lands, the importer posts a message here and the
// matching inventories are replanned.
type Rabbit struct {
	cfg         Config
	conn        *amqp.Connection
	ch          *amqp.Channel
	planner     *services.Planner
	inventories repositories.InventoryRepository
}

// NewRabbit dials the broker and declares the planner queues
func NewRabbit(cfg Config, planner *services.Planner, inventories repositories.InventoryRepository) (*Rabbit, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	r := &Rabbit{cfg: cfg, conn: conn, ch: ch, planner: planner, inventories: inventories}
	for _, q := range []string{cfg.QConsumeReq, cfg.QConsumeDone} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			r.Close()
			return nil, err
		}
	}
	return r, nil
}

// Close releases the channel and connection
func (r *Rabbit) Close() {
	if r.ch != nil {
		_ = r.ch.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
}

// Messages

// InventoryKey names one inventory in a consume request
type InventoryKey struct {
	ItemID    string `json:"item_id"`
	Warehouse string `json:"warehouse"`
}

// ConsumeRequest asks for a consumption pass. An empty inventory list means
// replan everything.
type ConsumeRequest struct {
	PassID      string         `json:"pass_id"`
	Inventories []InventoryKey `json:"inventories,omitempty"`
}

// ConsumeDone reports the outcome of a pass
type ConsumeDone struct {
	PassID      string `json:"pass_id"`
	Inventories int    `json:"inventories"`
	Links       int    `json:"links"`
	ConsumedQty string `json:"consumed_qty"`
	State       string `json:"state"`
	Reason      string `json:"reason,omitempty"`
}

func (r *Rabbit) publishJSON(ctx context.Context, q string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", q, err)
	}
	return r.ch.PublishWithContext(ctx, "", q, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// StartConsumer begins handling consume requests until the context ends
func (r *Rabbit) StartConsumer(ctx context.Context) error {
	msgs, err := r.ch.Consume(r.cfg.QConsumeReq, "", true, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				r.handleConsumeRequest(ctx, msg.Body)
			}
		}
	}()
	return nil
}

func (r *Rabbit) handleConsumeRequest(ctx context.Context, body []byte) {
	var req ConsumeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Error().Err(err).Msg("bad consume request payload")
		return
	}

	inventories, err := r.resolveInventories(req)
	if err != nil {
		log.Error().Err(err).Str("pass", req.PassID).Msg("consume request failed")
		r.reply(ctx, ConsumeDone{PassID: req.PassID, State: "FAILED", Reason: err.Error()})
		return
	}

	results := r.planner.ConsumeAllForecasts(ctx, inventories)

	links := 0
	total := decimal.Zero
	for _, res := range results {
		if res.Result == nil {
			continue
		}
		links += len(res.Result.Links)
		total = total.Add(res.Result.TotalConsumed())
	}

	log.Info().Str("pass", req.PassID).Int("inventories", len(inventories)).Int("links", links).
		Msg("consume request handled")
	r.reply(ctx, ConsumeDone{
		PassID:      req.PassID,
		Inventories: len(inventories),
		Links:       links,
		ConsumedQty: total.String(),
		State:       "DONE",
	})
}

func (r *Rabbit) resolveInventories(req ConsumeRequest) ([]*entities.Inventory, error) {
	if len(req.Inventories) == 0 {
		return r.inventories.GetAllInventories()
	}
	inventories := make([]*entities.Inventory, 0, len(req.Inventories))
	for _, key := range req.Inventories {
		inv, err := r.inventories.GetInventory(key.ItemID, key.Warehouse)
		if err != nil {
			return nil, err
		}
		inventories = append(inventories, inv)
	}
	return inventories, nil
}

func (r *Rabbit) reply(ctx context.Context, done ConsumeDone) {
	if err := r.publishJSON(ctx, r.cfg.QConsumeDone, done); err != nil {
		log.Error().Err(err).Str("pass", done.PassID).Msg("failed to publish consume result")
	}
}
