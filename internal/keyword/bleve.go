package keyword

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/kotae/internal/models"
)

const (
	defaultQuestionBoost = 2.0
	defaultFuzziness     = 1
	batchSize            = 500
)

// entryDoc is the indexed form of a knowledge entry.
type entryDoc struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// BleveIndex implements EntryIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path.
// If you change the index mapping in code, remove the index directory to force a full re-index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase + tokenize, no stemming, so product names match verbatim.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("question", textFieldMapping)
	docMapping.AddFieldMappingsAt("answer", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("id", keywordFieldMapping)
	im.AddDocumentMapping("entry", docMapping)
	im.DefaultType = "entry"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// ReplaceAll indexes entries and deletes every indexed entry not among them.
func (b *BleveIndex) ReplaceAll(ctx context.Context, entries []models.KnowledgeEntry) error {
	existing, err := b.allIDs()
	if err != nil {
		return err
	}

	keep := make(map[string]struct{}, len(entries))
	batch := b.index.NewBatch()
	flush := func() error {
		if batch.Size() == 0 {
			return nil
		}
		if err := b.index.Batch(batch); err != nil {
			return fmt.Errorf("Bleve batch failed: %w", err)
		}
		batch.Reset()
		return nil
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		keep[e.ID] = struct{}{}
		if err := batch.Index(e.ID, entryDoc{ID: e.ID, Question: e.Question, Answer: e.Answer}); err != nil {
			return fmt.Errorf("index entry %s: %w", e.ID, err)
		}
		if batch.Size() >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	for _, id := range existing {
		if _, ok := keep[id]; !ok {
			batch.Delete(id)
		}
	}
	return flush()
}

func (b *BleveIndex) allIDs() ([]string, error) {
	count, err := b.index.DocCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(count)
	res, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve list failed: %w", err)
	}
	ids := make([]string, len(res.Hits))
	for i, hit := range res.Hits {
		ids[i] = hit.ID
	}
	return ids, nil
}

// Search returns up to limit entries for query. Question and answer matches are
// added, with question matches boosted; multi-term queries are penalized by the
// squared share of terms an entry misses, and phrase matches in the question
// are boosted. Ties are broken by ID so results are stable.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Hit, error) {
	if limit <= 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	questionBoost := defaultQuestionBoost
	phraseBoost := 1.0
	fuzzyEnabled := false
	fuzziness := defaultFuzziness
	if opts != nil {
		if opts.QuestionBoost > 0 {
			questionBoost = opts.QuestionBoost
		}
		if opts.PhraseBoost > 0 {
			phraseBoost = opts.PhraseBoost
		}
		fuzzyEnabled = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}

	reqSize := limit * 2
	if reqSize < 50 {
		reqSize = 50
	}

	questionScores, err := b.fieldScores(b.buildQuery(query, "question", fuzzyEnabled, fuzziness), reqSize)
	if err != nil {
		return nil, fmt.Errorf("Bleve question search failed: %w", err)
	}
	answerScores, err := b.fieldScores(b.buildQuery(query, "answer", fuzzyEnabled, fuzziness), reqSize)
	if err != nil {
		return nil, fmt.Errorf("Bleve answer search failed: %w", err)
	}

	terms := tokenizeQuery(query)
	var coverage map[string]int
	if len(terms) > 1 {
		coverage = b.termCoverage(terms, reqSize, fuzzyEnabled, fuzziness)
	}
	var phrases map[string]bool
	if phraseBoost > 1 && len(terms) > 1 {
		phrases = b.phraseMatches(query, reqSize)
	}

	ids := make(map[string]struct{}, len(questionScores)+len(answerScores))
	for id := range questionScores {
		ids[id] = struct{}{}
	}
	for id := range answerScores {
		ids[id] = struct{}{}
	}

	hits := make([]*Hit, 0, len(ids))
	for id := range ids {
		score := questionScores[id]*questionBoost + answerScores[id]
		if len(terms) > 1 {
			matched := coverage[id]
			if matched == 0 {
				matched = 1
			}
			share := float64(matched) / float64(len(terms))
			score *= share * share
		}
		if phrases[id] {
			score *= phraseBoost
		}
		hits = append(hits, &Hit{ID: id, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (b *BleveIndex) fieldScores(q blevequery.Query, size int) (map[string]float64, error) {
	req := bleve.NewSearchRequest(q)
	req.Size = size
	res, err := b.index.Search(req)
	if err != nil {
		return nil, err
	}
	scores := make(map[string]float64, len(res.Hits))
	for _, hit := range res.Hits {
		scores[hit.ID] = hit.Score
	}
	return scores, nil
}

// tokenizeQuery splits query into lowercase terms, filtering out empty strings.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// buildQuery returns a match query on field, or a disjunction of fuzzy term
// queries when fuzzy matching is enabled.
func (b *BleveIndex) buildQuery(queryStr, field string, fuzzy bool, fuzziness int) blevequery.Query {
	terms := tokenizeQuery(queryStr)
	if !fuzzy || len(terms) == 0 {
		mq := bleve.NewMatchQuery(queryStr)
		mq.SetField(field)
		return mq
	}

	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		queries = append(queries, fq)
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// termCoverage counts how many query terms each entry matches in either field.
func (b *BleveIndex) termCoverage(terms []string, reqSize int, fuzzy bool, fuzziness int) map[string]int {
	coverage := make(map[string]int)
	for _, term := range terms {
		var q blevequery.Query
		if fuzzy {
			fq := bleve.NewFuzzyQuery(term)
			fq.SetFuzziness(fuzziness)
			q = fq
		} else {
			q = bleve.NewMatchQuery(term)
		}
		req := bleve.NewSearchRequest(q)
		req.Size = reqSize
		results, err := b.index.Search(req)
		if err != nil {
			continue
		}
		for _, hit := range results.Hits {
			coverage[hit.ID]++
		}
	}
	return coverage
}

// phraseMatches finds entries whose question contains the query as a phrase.
func (b *BleveIndex) phraseMatches(query string, reqSize int) map[string]bool {
	matches := make(map[string]bool)
	pq := bleve.NewMatchPhraseQuery(query)
	pq.SetField("question")
	req := bleve.NewSearchRequest(pq)
	req.Size = reqSize
	results, err := b.index.Search(req)
	if err != nil {
		return matches
	}
	for _, hit := range results.Hits {
		matches[hit.ID] = true
	}
	return matches
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of entries in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}
