// Package outbox delivers sponsor notices through a transactional outbox:
// NotifyResultReady only inserts a row, and a background publisher drains the
// table to Kafka. Delivery survives restarts and broker downtime.
package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"privescreen/internal/platform/metrics"
	"privescreen/internal/ports/notify"
)

const (
	dbTimeout      = 5 * time.Second
	publishTimeout = 5 * time.Second
	pollInterval   = 1 * time.Second
	batchSize      = 100
)

// Store implements notify.SponsorNotifier by enqueueing.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) NotifyResultReady(ctx context.Context, n notify.CompletionNotice) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	// Keyed by sponsor so one sponsor's notices stay ordered per partition.
	_, err = s.db.ExecContext(dbCtx, `
		INSERT INTO sponsor_outbox (id, key, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.NewString(), n.SponsorID, payload, time.Now().UTC())
	return err
}

// Publisher drains the outbox to Kafka.
type Publisher struct {
	db           *sql.DB
	writer       *kafka.Writer
	topic        string
	log          zerolog.Logger
	pollInterval time.Duration
}

func NewPublisher(db *sql.DB, writer *kafka.Writer, topic string, log zerolog.Logger) *Publisher {
	return &Publisher{
		db:           db,
		writer:       writer,
		topic:        topic,
		log:          log,
		pollInterval: pollInterval,
	}
}

func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		if err := p.publishBatch(ctx); err != nil {
			p.log.Error().Err(err).Msg("sponsor outbox publish failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type outboxRow struct {
	ID        string
	Key       string
	Payload   []byte
	CreatedAt time.Time
}

func (p *Publisher) publishBatch(ctx context.Context) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	// Gauge the whole backlog, not the capped batch below.
	var backlog int
	if err := tx.QueryRowContext(dbCtx, `
		SELECT count(*) FROM sponsor_outbox WHERE published_at IS NULL
	`).Scan(&backlog); err != nil {
		return err
	}
	metrics.OutboxPending.Set(float64(backlog))

	rows, err := tx.QueryContext(dbCtx, `
		SELECT id, key, payload, created_at
		FROM sponsor_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, batchSize)
	if err != nil {
		return err
	}
	defer rows.Close()

	var pending []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.ID, &row.Key, &row.Payload, &row.CreatedAt); err != nil {
			return err
		}
		pending = append(pending, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(pending) == 0 {
		return tx.Commit()
	}

	for _, row := range pending {
		publishCtx, publishCancel := context.WithTimeout(ctx, publishTimeout)
		err := p.writer.WriteMessages(publishCtx, kafka.Message{
			Topic: p.topic,
			Key:   []byte(row.Key),
			Value: row.Payload,
			Time:  row.CreatedAt,
		})
		publishCancel()
		if err != nil {
			metrics.OutboxPublishFailures.Inc()
			p.log.Error().Err(err).Str("notice_id", row.ID).Msg("failed to publish sponsor notice")
			continue
		}

		updateCtx, updateCancel := context.WithTimeout(ctx, dbTimeout)
		_, err = tx.ExecContext(updateCtx,
			`UPDATE sponsor_outbox SET published_at = now() WHERE id = $1`,
			row.ID,
		)
		updateCancel()
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
