package usecase

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"wikirag/internal/adapter/cache"
	"wikirag/internal/adapter/retriever"
	"wikirag/internal/adapter/store"
	"wikirag/internal/domain"
	"wikirag/internal/port"
)

// RetrievalMode selects the retrieval backend.
const (
	ModeLexical = "lexical"
	ModeVector  = "vector"
)

// PipelineOptions wires the pipeline's collaborators and paths.
type PipelineOptions struct {
	Chunker   port.Chunker
	Embedder  port.Embedder
	Generator port.Generator

	ChunksPath   string
	IndexPath    string
	MetadataPath string

	Mode      string // ModeLexical or ModeVector
	TopK      int
	BatchSize int

	Cache *cache.QueryCache // optional
}

// Pipeline orchestrates ingestion, index builds and queries. Ingest and
// build are single-writer operations; queries may run concurrently once
// a retriever is loaded.
type Pipeline struct {
	opts   PipelineOptions
	chunks *store.ChunkStore

	mu sync.Mutex // serializes AddDocuments and BuildIndex

	retMu     sync.Mutex
	retriever port.Retriever
	load      func() (port.Retriever, error) // indirection for tests
}

// NewPipeline creates a pipeline. The retriever is loaded lazily on the
// first query, or eagerly via LoadRetriever.
func NewPipeline(opts PipelineOptions) (*Pipeline, error) {
	if opts.Chunker == nil {
		return nil, fmt.Errorf("chunker is required: %w", domain.ErrInvalidConfig)
	}
	if opts.Generator == nil {
		return nil, fmt.Errorf("generator is required: %w", domain.ErrInvalidConfig)
	}
	if opts.Mode == "" {
		opts.Mode = ModeLexical
	}
	if opts.Mode == ModeVector && opts.Embedder == nil {
		return nil, fmt.Errorf("vector mode requires an embedder: %w", domain.ErrInvalidConfig)
	}
	if opts.TopK < 1 {
		opts.TopK = 5
	}
	p := &Pipeline{
		opts:   opts,
		chunks: store.NewChunkStore(opts.ChunksPath),
	}
	p.load = p.loadRetriever
	return p, nil
}

// AddDocuments chunks the given documents and replaces the persisted
// chunk sequence wholesale. Documents without an ID are assigned one.
// The loaded retriever and any cached query results are discarded; a
// rebuilt index takes effect on the next query.
func (p *Pipeline) AddDocuments(docs []domain.Document) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	chunks := make([]domain.Chunk, 0, len(docs))
	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		chunks = append(chunks, p.opts.Chunker.Chunk(doc)...)
	}

	if err := p.chunks.Save(chunks); err != nil {
		return 0, fmt.Errorf("failed to save chunks: %w", err)
	}

	p.dropRetriever()
	return len(chunks), nil
}

// BuildIndex materializes retrieval artifacts for the stored chunks.
// In vector mode it embeds every chunk and writes the index and
// metadata; in lexical mode it only confirms chunks exist, since the
// lexical retriever works directly off the chunk sequence. Returns the
// number of chunks covered.
func (p *Pipeline) BuildIndex(progress func(done, total int)) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.opts.Mode == ModeLexical {
		chunks, err := p.chunks.Load()
		if err != nil {
			return 0, err
		}
		p.dropRetriever()
		return len(chunks), nil
	}

	builder := NewIndexBuilder(p.chunks, p.opts.Embedder, p.opts.IndexPath, p.opts.MetadataPath, p.opts.BatchSize)
	builder.Progress = progress
	n, err := builder.Build()
	if err != nil {
		return 0, err
	}

	p.dropRetriever()
	return n, nil
}

// LoadRetriever loads the retriever eagerly, replacing any loaded one.
func (p *Pipeline) LoadRetriever() error {
	p.retMu.Lock()
	defer p.retMu.Unlock()

	r, err := p.load()
	if err != nil {
		return err
	}
	p.retriever = r
	return nil
}

// Query retrieves the top passages for the question, generates an
// answer grounded in them, and reports which passages were used. The
// answer's source list is empty when the model declared it answered
// from general knowledge.
func (p *Pipeline) Query(question string) (*domain.QueryResponse, error) {
	return p.QueryTopK(question, p.opts.TopK)
}

// QueryTopK is Query with an explicit passage count.
func (p *Pipeline) QueryTopK(question string, topK int) (*domain.QueryResponse, error) {
	if topK < 1 {
		topK = p.opts.TopK
	}

	r, err := p.ensureRetriever()
	if err != nil {
		return nil, err
	}

	passages, err := p.search(r, question, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	context := r.FormatContext(passages)

	prompt, err := buildPrompt(context, question)
	if err != nil {
		return nil, err
	}

	raw, err := p.opts.Generator.Generate(prompt)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	answer, generalKnowledge := parseAnswerTags(raw)

	resp := &domain.QueryResponse{
		Question:     question,
		Answer:       answer,
		Sources:      []domain.SourceRef{},
		UsedPassages: passages,
	}
	if !generalKnowledge {
		for _, pass := range passages {
			resp.Sources = append(resp.Sources, domain.SourceRef{
				Title:     pass.Chunk.Title,
				SourceURL: pass.Chunk.SourceURL,
				Score:     pass.Score,
			})
		}
	}
	return resp, nil
}

func (p *Pipeline) search(r port.Retriever, question string, topK int) ([]domain.ScoredChunk, error) {
	if p.opts.Cache != nil {
		if cached, ok := p.opts.Cache.Get(question, topK); ok {
			return cached, nil
		}
	}

	passages, err := r.Search(question, topK)
	if err != nil {
		return nil, err
	}

	if p.opts.Cache != nil {
		p.opts.Cache.Put(question, topK, passages)
	}
	return passages, nil
}

// ensureRetriever returns the loaded retriever, loading it on first use.
func (p *Pipeline) ensureRetriever() (port.Retriever, error) {
	p.retMu.Lock()
	defer p.retMu.Unlock()

	if p.retriever != nil {
		return p.retriever, nil
	}

	r, err := p.load()
	if err != nil {
		return nil, err
	}
	p.retriever = r
	return r, nil
}

// loadRetriever builds a retriever from the persisted artifacts.
// Callers hold retMu.
func (p *Pipeline) loadRetriever() (port.Retriever, error) {
	chunks, err := p.chunks.Load()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no documents ingested yet: %w", err)
		}
		return nil, err
	}

	if p.opts.Mode == ModeLexical {
		return retriever.NewLexicalRetriever(chunks), nil
	}

	idx, err := store.OpenFlatIndex(p.opts.IndexPath)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("index not built yet: %w", err)
		}
		return nil, err
	}

	meta, err := store.LoadMetadata(p.opts.MetadataPath)
	if err != nil {
		return nil, err
	}

	return retriever.NewVectorRetriever(idx, meta, chunks, p.opts.Embedder), nil
}

// dropRetriever discards the loaded retriever and cached results after
// the underlying artifacts change. Callers hold p.mu.
func (p *Pipeline) dropRetriever() {
	p.retMu.Lock()
	p.retriever = nil
	p.retMu.Unlock()

	if p.opts.Cache != nil {
		p.opts.Cache.Invalidate()
	}
}
