// Package retrieve provides Retriever implementations: the components
// that turn a query (and, for reformulated variants, an alternate
// phrasing) into a ranked document list admitted into the pool.
package retrieve

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/ragtune-ai/ragtune"
)

const payloadContentKey = "__ragtune_content__"

// Embedder turns query text into the dense vector a vector store
// searches against. Modeled on the teacher's embedding.Model, reduced to
// the single operation this retriever needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

var _ ragtune.Retriever = (*QdrantRetriever)(nil)

// QdrantRetriever retrieves documents from a Qdrant collection by
// embedding the query and running a similarity search, modeled directly
// on the teacher's qdrant.VectorStore.Retrieve.
type QdrantRetriever struct {
	client         *qdrant.Client
	collectionName string
	embedder       Embedder
	minScore       float32
}

// QdrantRetrieverConfig configures a QdrantRetriever.
type QdrantRetrieverConfig struct {
	Client         *qdrant.Client
	CollectionName string
	Embedder       Embedder
	// MinScore filters out points below this similarity score. Zero
	// means no threshold.
	MinScore float32
}

func (c *QdrantRetrieverConfig) validate() error {
	if c == nil {
		return fmt.Errorf("retrieve: qdrant retriever config is nil")
	}
	if c.Client == nil {
		return fmt.Errorf("retrieve: qdrant client is required")
	}
	if c.CollectionName == "" {
		return fmt.Errorf("retrieve: collection name is required")
	}
	if c.Embedder == nil {
		return fmt.Errorf("retrieve: embedder is required")
	}
	return nil
}

// NewQdrantRetriever validates cfg and returns a retriever against it.
func NewQdrantRetriever(cfg *QdrantRetrieverConfig) (*QdrantRetriever, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &QdrantRetriever{
		client:         cfg.Client,
		collectionName: cfg.CollectionName,
		embedder:       cfg.Embedder,
		minScore:       cfg.MinScore,
	}, nil
}

func (q *QdrantRetriever) Retrieve(ctx context.Context, rc *ragtune.Context, topK int) ([]ragtune.ScoredDocument, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("retrieve: topK must be positive, got %d", topK)
	}

	vector, err := q.embedder.Embed(ctx, rc.Query)
	if err != nil {
		return nil, fmt.Errorf("retrieve: embedding query: %w", err)
	}

	queryPoints := &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          uint64Ptr(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if q.minScore != 0 {
		queryPoints.ScoreThreshold = float32Ptr(q.minScore)
	}

	scoredPoints, err := q.client.Query(ctx, queryPoints)
	if err != nil {
		return nil, fmt.Errorf("retrieve: querying collection %s: %w", q.collectionName, err)
	}

	return toScoredDocuments(scoredPoints), nil
}

func toScoredDocuments(scoredPoints []*qdrant.ScoredPoint) []ragtune.ScoredDocument {
	docs := make([]ragtune.ScoredDocument, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		doc := ragtune.ScoredDocument{
			Score: float64(point.GetScore()),
		}
		if id := point.GetId(); id != nil {
			doc.DocID = id.GetUuid()
		}

		payload := point.GetPayload()
		if payload != nil {
			if content, ok := payload[payloadContentKey]; ok {
				doc.Content = content.GetStringValue()
				delete(payload, payloadContentKey)
			}
			doc.Metadata = convertPayload(payload)
		}
		docs = append(docs, doc)
	}
	return docs
}

func convertPayload(payload map[string]*qdrant.Value) map[string]any {
	if len(payload) == 0 {
		return nil
	}
	metadata := make(map[string]any, len(payload))
	for key, value := range payload {
		if value == nil {
			continue
		}
		metadata[key] = convertValue(value)
	}
	return metadata
}

func convertValue(value *qdrant.Value) any {
	switch kind := value.Kind.(type) {
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	default:
		return nil
	}
}

func uint64Ptr(v uint64) *uint64 { return &v }

func float32Ptr(v float32) *float32 { return &v }
