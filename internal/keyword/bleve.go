package keyword

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/osusume/internal/models"
)

// recallDoc is the shape of an item in the index. Tags are indexed as
// text so multi-word technologies still tokenize.
type recallDoc struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tags    string `json:"tags"`
	Owner   string `json:"owner"`
}

// BleveIndex implements RecallIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. An existing
// index is reused; remove the directory to force a rebuild after a
// mapping change.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := buildIndexMapping()

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open recall index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create recall index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// NewMemoryBleveIndex creates an in-memory index, used in tests and
// ephemeral deployments.
func NewMemoryBleveIndex() (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory recall index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so exact
	// technology names like "kubernetes" match without stem surprises.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("tags", textFieldMapping)
	ownerFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("owner", ownerFieldMapping)
	im.AddDocumentMapping("item", docMapping)
	im.DefaultType = "item"
	im.DefaultMapping = docMapping
	return im
}

// Index adds or replaces an item in the recall index.
func (b *BleveIndex) Index(ctx context.Context, item *models.CandidateItem) error {
	doc := recallDoc{
		Title:   item.Title,
		Content: item.RawText,
		Tags:    strings.Join(item.TechnologyTags(), " "),
		Owner:   item.OwnerID,
	}
	if err := b.index.Index(item.ID, doc); err != nil {
		return fmt.Errorf("failed to index item %s: %w", item.ID, err)
	}
	return nil
}

// Search returns up to limit items matching the query, best first.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*RecallHit, error) {
	titleBoost := 2.0
	fuzzyEnabled := false
	fuzziness := 2
	ownerID := ""
	if opts != nil {
		if opts.TitleBoost > 0 {
			titleBoost = opts.TitleBoost
		}
		fuzzyEnabled = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
		ownerID = opts.OwnerID
	}

	q := b.buildQuery(query, titleBoost, fuzzyEnabled, fuzziness, ownerID)

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("recall search failed: %w", err)
	}

	hits := make([]*RecallHit, len(results.Hits))
	for i, hit := range results.Hits {
		hits[i] = &RecallHit{ID: hit.ID, Score: hit.Score}
	}
	return hits, nil
}

// buildQuery matches the query against title, content and tags, with
// title matches boosted. An owner filter becomes a conjunct term query.
func (b *BleveIndex) buildQuery(query string, titleBoost float64, fuzzyEnabled bool, fuzziness int, ownerID string) blevequery.Query {
	var title, content, tags blevequery.Query
	if fuzzyEnabled {
		title = b.fuzzyFieldQuery(query, "title", fuzziness, titleBoost)
		content = b.fuzzyFieldQuery(query, "content", fuzziness, 1.0)
		tags = b.fuzzyFieldQuery(query, "tags", fuzziness, 1.5)
	} else {
		tq := bleve.NewMatchQuery(query)
		tq.SetField("title")
		tq.SetBoost(titleBoost)
		title = tq
		cq := bleve.NewMatchQuery(query)
		cq.SetField("content")
		content = cq
		gq := bleve.NewMatchQuery(query)
		gq.SetField("tags")
		gq.SetBoost(1.5)
		tags = gq
	}

	matched := bleve.NewDisjunctionQuery(title, content, tags)
	if ownerID == "" {
		return matched
	}

	owner := bleve.NewTermQuery(ownerID)
	owner.SetField("owner")
	filtered := bleve.NewBooleanQuery()
	filtered.AddMust(owner, matched)
	return filtered
}

// fuzzyFieldQuery builds a per-term fuzzy disjunction over one field.
func (b *BleveIndex) fuzzyFieldQuery(query, field string, fuzziness int, boost float64) blevequery.Query {
	terms := strings.Fields(strings.ToLower(query))
	parts := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetField(field)
		fq.SetFuzziness(fuzziness)
		parts = append(parts, fq)
	}
	dq := bleve.NewDisjunctionQuery(parts...)
	dq.SetBoost(boost)
	return dq
}

// Delete removes an item from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// DocCount returns the number of indexed items.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
