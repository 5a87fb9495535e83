// Package recommend turns the preference history into genre scores and
// weighted-random genre picks.
package recommend

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/camilorojas87/mixtaped/internal/constants"
	"github.com/camilorojas87/mixtaped/internal/domain"
	"github.com/camilorojas87/mixtaped/internal/logger"
)

// Store is the slice of the preference store the engine needs.
type Store interface {
	Insert(rec *domain.PreferenceRecord) error
	ListByGenre(genre domain.Genre) ([]domain.PreferenceRecord, error)
	LatestFeedback(songID int64) (*domain.PreferenceRecord, error)
	Delete(id uuid.UUID) error
	DeleteAll() error
}

// Engine computes per-genre desirability scores with time decay and performs
// weighted-random genre selection. Scores are always derived from the full
// record set, never cached.
type Engine struct {
	store Store
	log   *logger.Logger

	mu  sync.Mutex
	rng *rand.Rand

	now func() time.Time
}

// NewEngine creates an engine. The rng is the single randomized decision
// point of the system; inject a seeded source for reproducible selection.
func NewEngine(store Store, rng *rand.Rand, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Default()
	}
	return &Engine{
		store: store,
		log:   log.WithComponent("recommend"),
		rng:   rng,
		now:   time.Now,
	}
}

// ScoreForGenre sums the decayed scores of every record for the genre and
// clamps the result to [ScoreFloor, ScoreCeiling]. A store failure degrades
// to the fallback score instead of propagating.
func (e *Engine) ScoreForGenre(genre domain.Genre) float64 {
	records, err := e.store.ListByGenre(genre)
	if err != nil {
		e.log.Warn("preference read failed, using fallback score", "genre", genre, "error", err)
		return constants.FallbackScore
	}

	now := e.now()
	total := 0.0
	for _, rec := range records {
		days := int(now.Sub(rec.InsertedAt).Hours() / 24)
		if days < 0 {
			// Clock skew; treat the record as fresh.
			days = 0
		}
		total += rec.Score * decayMultiplier(days)
	}

	return math.Max(constants.ScoreFloor, math.Min(total, constants.ScoreCeiling))
}

func decayMultiplier(daysElapsed int) float64 {
	switch {
	case daysElapsed <= constants.DecayFreshDays:
		return constants.DecayFresh
	case daysElapsed <= constants.DecayRecentDays:
		return constants.DecayRecent
	case daysElapsed <= constants.DecayAgingDays:
		return constants.DecayAging
	default:
		return constants.DecayStale
	}
}

// weights computes the score of every genre in canonical order.
func (e *Engine) weights() map[domain.Genre]float64 {
	w := make(map[domain.Genre]float64, len(domain.Genres()))
	for _, g := range domain.Genres() {
		w[g] = e.ScoreForGenre(g)
	}
	return w
}

// SelectRandomGenre picks a genre with probability proportional to its score.
// The accumulation walk follows domain.Genres() order, so a fixed seed always
// reproduces the same pick.
func (e *Engine) SelectRandomGenre() domain.Genre {
	weights := e.weights()

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		// Cannot happen given the score floor, but never fail on selection.
		e.log.Warn("non-positive weight total, using default genre", "total", total)
		return domain.DefaultGenre
	}

	e.mu.Lock()
	r := e.rng.Float64() * total
	e.mu.Unlock()

	running := 0.0
	for _, g := range domain.Genres() {
		running += weights[g]
		if r <= running {
			e.log.Debug("genre selected", "genre", g, "roll", r, "total", total)
			return g
		}
	}

	return domain.DefaultGenre
}

// GenrePercentages returns the weight map normalized to sum to 100. Each value
// is rounded to 2 decimals independently, so the rounded values may not sum
// to exactly 100.
func (e *Engine) GenrePercentages() map[domain.Genre]float64 {
	weights := e.weights()

	total := 0.0
	for _, w := range weights {
		total += w
	}

	percentages := make(map[domain.Genre]float64, len(weights))
	for _, g := range domain.Genres() {
		p := 0.0
		if total > 0 {
			p = weights[g] / total * 100
		}
		percentages[g] = math.Round(p*100) / 100
	}
	return percentages
}

// InitializeBaseline seeds every genre with one immutable baseline record and
// gives each selected genre a second one. Calls are additive; the engine does
// not deduplicate repeated onboarding.
func (e *Engine) InitializeBaseline(selected []domain.Genre) error {
	for _, g := range domain.Genres() {
		if err := e.insertBaseline(g); err != nil {
			return err
		}
		if containsGenre(selected, g) {
			if err := e.insertBaseline(g); err != nil {
				return err
			}
		}
	}
	e.log.Info("baseline preferences initialized", "selected", len(selected))
	return nil
}

func (e *Engine) insertBaseline(genre domain.Genre) error {
	return e.store.Insert(&domain.PreferenceRecord{
		Genre:     genre,
		SongID:    domain.BaselineSongID,
		Score:     constants.BaselineScore,
		Immutable: true,
	})
}

// ResetAll irreversibly deletes the entire preference history, baselines
// included.
func (e *Engine) ResetAll() error {
	if err := e.store.DeleteAll(); err != nil {
		return err
	}
	e.log.Info("all preference data deleted")
	return nil
}

func containsGenre(genres []domain.Genre, g domain.Genre) bool {
	for _, candidate := range genres {
		if candidate == g {
			return true
		}
	}
	return false
}
