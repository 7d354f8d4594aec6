// Package search mirrors vendors into Elasticsearch for full-text lookup.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// VendorIndex writes and queries the vendors index.
type VendorIndex struct {
	es     *elasticsearch.Client
	index  string
	logger *logrus.Logger
}

func NewVendorIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *VendorIndex {
	return &VendorIndex{es: es, index: index, logger: logger}
}

type vendorDoc struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Address     string   `json:"address"`
	Subtype     string   `json:"subtype"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	UpdatedAt   string   `json:"updated_at"`
}

func toDoc(v *entity.Vendor) vendorDoc {
	return vendorDoc{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		Categories:  v.Categories,
		Address:     v.Address,
		Subtype:     string(v.Subtype),
		Rating:      v.Rating,
		ReviewCount: v.ReviewCount,
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// Index upserts one vendor.
func (x *VendorIndex) Index(ctx context.Context, v *entity.Vendor) error {
	b, err := json.Marshal(toDoc(v))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: v.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("search: index %s: %w", v.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search: index %s: %s", v.ID, res.Status())
	}
	return nil
}

// Delete removes a vendor; a missing document is not an error.
func (x *VendorIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("search: delete %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("search: delete %s: %s", id, res.Status())
	}
	return nil
}

// Sync indexes every vendor in the snapshot. Failures are logged per vendor
// and the first one is returned.
func (x *VendorIndex) Sync(ctx context.Context, vendors []entity.Vendor) error {
	var first error
	for i := range vendors {
		if err := x.Index(ctx, &vendors[i]); err != nil {
			if x.logger != nil {
				x.logger.WithError(err).WithField("vendor_id", vendors[i].ID).Warn("es index failed")
			}
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Search returns vendor ids ranked by relevance for q.
func (x *VendorIndex) Search(ctx context.Context, q string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	query := map[string]any{
		"size":    limit,
		"_source": []string{"id"},
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     strings.TrimSpace(q),
				"fields":    []string{"name^3", "categories^2", "description", "address"},
				"fuzziness": "AUTO",
			},
		},
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: query: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: query: %s", res.Status())
	}

	var out struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("search: decode: %w", err)
	}
	ids := make([]string, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
