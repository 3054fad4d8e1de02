// internal/store/archive.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"

	"github.com/SaiffMoh/FastTravelGraph/internal/common/logger"
	"github.com/SaiffMoh/FastTravelGraph/internal/models"
)

// SearchArchive indexes completed searches for offline analysis. Writes are
// best-effort: a failed index call is logged and never surfaces to the turn.
type SearchArchive struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

// ArchiveDocument is the shape indexed per completed search.
type ArchiveDocument struct {
	ThreadID    string                  `json:"thread_id"`
	SearchedAt  time.Time               `json:"searched_at"`
	Fields      models.NormalizedFields `json:"fields"`
	OfferCount  int                     `json:"offer_count"`
	CheapestEGP float64                 `json:"cheapest_price,omitempty"`
	Currency    string                  `json:"currency,omitempty"`
}

func NewSearchArchive(es *elasticsearch.Client, index string, log logger.Logger) *SearchArchive {
	if index == "" {
		index = "flight-searches"
	}
	return &SearchArchive{es: es, index: index, logger: log}
}

// Record indexes a summary of the search results. Errors are swallowed after
// logging so the conversation never fails on archive problems.
func (a *SearchArchive) Record(ctx context.Context, threadID string, fields models.NormalizedFields, offers []models.Offer) {
	if a == nil || a.es == nil {
		return
	}

	doc := ArchiveDocument{
		ThreadID:   threadID,
		SearchedAt: time.Now().UTC(),
		Fields:     fields,
		OfferCount: len(offers),
	}
	if len(offers) > 0 {
		doc.CheapestEGP = offers[0].PriceValue
		doc.Currency = offers[0].Currency
	}

	body, err := json.Marshal(doc)
	if err != nil {
		a.logger.Warn("failed to encode archive document", map[string]interface{}{
			"thread_id": threadID,
			"error":     err.Error(),
		})
		return
	}

	res, err := a.es.Index(
		a.index,
		bytes.NewReader(body),
		a.es.Index.WithContext(ctx),
		a.es.Index.WithDocumentID(uuid.New().String()),
	)
	if err != nil {
		a.logger.Warn("failed to archive search", map[string]interface{}{
			"thread_id": threadID,
			"error":     err.Error(),
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		a.logger.Warn("archive index returned error", map[string]interface{}{
			"thread_id": threadID,
			"status":    res.Status(),
		})
	}
}
