package dedup

import (
	"math"
	"sort"

	"github.com/shenikar/incident_moderation_console/internal/models"
	"github.com/shenikar/incident_moderation_console/internal/store"
)

// Candidate - инцидент-кандидат на слияние с оценкой схожести
type Candidate struct {
	Incident        models.Incident `json:"incident"`
	SimilarityScore float64         `json:"similarity_score"`
}

// Scorer - внешняя способность оценки схожести репорта и инцидента.
// Само вычисление оценки непрозрачно для этого ядра; ядро специфицирует
// только упорядочивание и детерминизм результата.
type Scorer interface {
	Score(report models.Report, incident models.Incident) float64
}

// Matcher строит ранжированные списки кандидатов на слияние по реплике
type Matcher struct {
	store  *store.Store
	scorer Scorer
}

// NewMatcher создает matcher поверх реплики и оценщика схожести
func NewMatcher(st *store.Store, scorer Scorer) *Matcher {
	return &Matcher{store: st, scorer: scorer}
}

// CandidatesFor возвращает кандидатов для репорта по убыванию схожести;
// равные оценки упорядочиваются идентификатором инцидента для детерминизма.
// Отсутствие правдоподобных кандидатов дает пустой список, не ошибку.
func (m *Matcher) CandidatesFor(rep models.Report) []Candidate {
	var out []Candidate
	for inc := range m.store.Incidents() {
		score := m.scorer.Score(rep, inc)
		if score <= 0 {
			continue
		}
		out = append(out, Candidate{Incident: inc, SimilarityScore: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SimilarityScore != out[j].SimilarityScore {
			return out[i].SimilarityScore > out[j].SimilarityScore
		}
		return out[i].Incident.ID < out[j].Incident.ID
	})
	return out
}

// HeuristicScorer - индикативный оценщик по умолчанию: близость категории
// плюс географическая близость. Служит коллаборатором до появления
// серверной оценки схожести.
type HeuristicScorer struct{}

const earthRadiusKm = 6371.0

// Score возвращает оценку схожести в диапазоне [0, 100]
func (HeuristicScorer) Score(rep models.Report, inc models.Incident) float64 {
	score := 20.0
	if rep.Category == inc.Category {
		score = 60.0
	}

	d := haversineKm(rep.ReportedLat, rep.ReportedLng, inc.Latitude, inc.Longitude)
	switch {
	case d <= 1:
		score += 40
	case d <= 5:
		score += 25
	case d <= 25:
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
