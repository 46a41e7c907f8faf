package synthesis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"synthkit/internal/cache/resultCache"
	"synthkit/internal/fusion"
	"synthkit/internal/generators"
	"synthkit/internal/logger"
	"synthkit/internal/models"
	"synthkit/internal/seeder"

	"golang.org/x/sync/singleflight"
)

// Service implements the SynthesisService interface
type Service struct {
	registry      *generators.Registry
	seeder        seeder.Service
	results       resultCache.Service
	fuser         fusion.Service
	logger        logger.Service
	group         singleflight.Group
	maxConcurrent int
}

// NewService creates a new synthesis service
func NewService(
	registry *generators.Registry,
	seederService seeder.Service,
	results resultCache.Service,
	fuser fusion.Service,
	logger logger.Service,
	maxConcurrent int,
) SynthesisService {
	return &Service{
		registry:      registry,
		seeder:        seederService,
		results:       results,
		fuser:         fuser,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// Synthesize produces the deterministic output of the named generator for
// one identifier, memoized in the result cache
func (s *Service) Synthesize(ctx context.Context, generatorName, identifier string, params map[string]interface{}, ttl time.Duration) (*models.GenerationResult, error) {
	start := time.Now()

	fn, err := s.registry.Lookup(generatorName)
	if err != nil {
		return nil, err
	}

	cacheParams := map[string]interface{}{
		"generator":  generatorName,
		"identifier": identifier,
		"params":     params,
	}

	// Try the result cache first
	if cached, err := s.results.Get(ctx, cacheParams); err == nil {
		cached.Cached = true
		s.logger.LogSuccess(ctx, logger.OpCacheHit, identifier, "Retrieved result from cache", map[string]interface{}{
			"generator":   generatorName,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return cached, nil
	}

	s.logger.LogInfo(ctx, logger.OpCacheMiss, fmt.Sprintf("Cache miss for identifier: %s", identifier), map[string]interface{}{
		"generator":  generatorName,
		"identifier": identifier,
	})

	cacheKey, err := resultCache.Key(cacheParams)
	if err != nil {
		return nil, err
	}

	// Collapse concurrent identical requests into one generation run
	value, err, _ := s.group.Do(cacheKey, func() (interface{}, error) {
		result, err := s.seeder.Generate(ctx, identifier, fn)
		if err != nil {
			s.logger.LogError(ctx, logger.OpGenerate, identifier, "Generation failed", err, models.LogSeverityMedium, map[string]interface{}{
				"generator":   generatorName,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			return nil, err
		}
		result.Generator = generatorName

		if err := s.results.Set(ctx, cacheParams, result, ttl); err != nil {
			// A failed cache write is not a failed generation
			s.logger.LogError(ctx, logger.OpCacheSet, identifier, "Failed to cache generation result", err, models.LogSeverityLow, nil)
		}

		s.logger.LogSuccess(ctx, logger.OpGenerate, identifier, "Successfully completed generation", map[string]interface{}{
			"generator":   generatorName,
			"seed":        result.Seed,
			"duration_ms": time.Since(start).Milliseconds(),
			"cached":      false,
		})

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return value.(*models.GenerationResult), nil
}

// SynthesizeBatch generates against multiple identifiers concurrently
func (s *Service) SynthesizeBatch(ctx context.Context, generatorName string, identifiers []string, params map[string]interface{}) (*models.BatchGenerateResponse, error) {
	start := time.Now()

	s.logger.LogInfo(ctx, logger.OpBatchGenerate, fmt.Sprintf("Starting batch generation for %d identifiers", len(identifiers)), map[string]interface{}{
		"generator":         generatorName,
		"identifiers_count": len(identifiers),
	})

	if len(identifiers) == 0 {
		return &models.BatchGenerateResponse{
			Results:   []models.IdentifierResult{},
			Summary:   models.BatchSummary{},
			Timestamp: time.Now().UTC(),
		}, nil
	}

	resultsChan := make(chan models.IdentifierResult, len(identifiers))
	responseChan := make(chan *models.BatchGenerateResponse, 1)

	// Aggregate results as the workers produce them
	go s.aggregateResults(resultsChan, len(identifiers), responseChan)

	// Semaphore bounds concurrent generation runs
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for _, identifier := range identifiers {
		wg.Add(1)

		go func(id string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			itemCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			var item models.IdentifierResult
			result, err := s.Synthesize(itemCtx, generatorName, id, params, 0)
			if err != nil {
				item = models.IdentifierResult{
					Identifier: id,
					Error:      err.Error(),
					Success:    false,
					Timestamp:  time.Now().UTC(),
				}

				s.logger.LogError(itemCtx, logger.OpBatchGenerate, id, "Failed to generate in batch", err, models.LogSeverityMedium, nil)
			} else {
				item = models.IdentifierResult{
					Identifier: id,
					Seed:       result.Seed,
					Payload:    result.Payload,
					Cached:     result.Cached,
					Success:    true,
					Timestamp:  result.Timestamp,
				}
			}

			resultsChan <- item
		}(identifier)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	response := <-responseChan

	s.logger.LogSuccess(ctx, logger.OpBatchGenerate, "", "Completed batch generation", map[string]interface{}{
		"total":       response.Summary.Total,
		"succeeded":   response.Summary.Succeeded,
		"failed":      response.Summary.Failed,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return response, nil
}

// FuseSources merges multiple record sources into one deduplicated set
func (s *Service) FuseSources(ctx context.Context, sources [][]models.Record, keyField string) (*models.FusionResult, error) {
	start := time.Now()

	result, err := s.fuser.Fuse(ctx, sources, keyField)
	if err != nil {
		s.logger.LogError(ctx, logger.OpFusion, keyField, "Fusion failed", err, models.LogSeverityMedium, map[string]interface{}{
			"sources_count": len(sources),
		})
		return nil, err
	}

	s.logger.LogSuccess(ctx, logger.OpFusion, keyField, "Successfully fused sources", map[string]interface{}{
		"sources_count":      len(sources),
		"merged_count":       result.Report.MergedCount,
		"duplicates_removed": result.Report.DuplicatesRemoved,
		"conflicts_resolved": result.Report.ConflictsResolved,
		"duration_ms":        time.Since(start).Milliseconds(),
	})

	return result, nil
}

// aggregateResults collects worker results and builds the final response
func (s *Service) aggregateResults(resultsChan <-chan models.IdentifierResult, total int, responseChan chan<- *models.BatchGenerateResponse) {
	results := make([]models.IdentifierResult, 0, total)
	summary := models.BatchSummary{Total: total}

	for item := range resultsChan {
		results = append(results, item)

		if item.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	responseChan <- &models.BatchGenerateResponse{
		Results:   results,
		Summary:   summary,
		Timestamp: time.Now().UTC(),
	}
}
