package markers

import (
	"iter"
	"sort"
	"sync"

	"github.com/shenikar/incident_moderation_console/internal/models"
)

// Цвета маркеров. Resolved перекрывает приоритет; для нераспознанного
// приоритета предусмотрен явный запасной цвет.
const (
	ColorResolved = "#16a34a"
	ColorCritical = "#991b1b"
	ColorHigh     = "#dc2626"
	ColorMedium   = "#ea580c"
	ColorLow      = "#eab308"
	ColorFallback = "#6b7280"
)

// ColorFor - детерминированная чистая функция стиля маркера
func ColorFor(inc models.Incident) string {
	if inc.ResolutionTag == models.ResolutionResolved {
		return ColorResolved
	}
	switch inc.PriorityTag {
	case models.PriorityCritical:
		return ColorCritical
	case models.PriorityHigh:
		return ColorHigh
	case models.PriorityMedium:
		return ColorMedium
	case models.PriorityLow:
		return ColorLow
	default:
		return ColorFallback
	}
}

// Marker - хэндл маркера на карте. Экземпляр стабилен: пока идентификатор
// инцидента присутствует в наборе, маркер обновляется на месте и никогда не
// пересоздается (пересоздание сбрасывало бы состояние выделения на стороне UI).
type Marker struct {
	IncidentID string  `json:"incident_id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Color      string  `json:"color"`
	Label      string  `json:"label"`
}

// Reconciler поддерживает вторичный индекс идентификатор → хэндл маркера и
// инкрементально сводит его с текущим набором инцидентов без полной перерисовки.
type Reconciler struct {
	mu      sync.Mutex
	markers map[string]*Marker
}

// NewReconciler создает пустой набор маркеров
func NewReconciler() *Reconciler {
	return &Reconciler{markers: make(map[string]*Marker)}
}

// Reconcile приводит набор маркеров к образу текущего набора инцидентов:
// маркеры отсутствующих идентификаторов удаляются, существующие обновляются
// на месте, недостающие создаются.
func (r *Reconciler) Reconcile(incidents iter.Seq[models.Incident]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := make(map[string]struct{})
	for inc := range incidents {
		current[inc.ID] = struct{}{}

		if m, ok := r.markers[inc.ID]; ok {
			m.Latitude = inc.Latitude
			m.Longitude = inc.Longitude
			m.Color = ColorFor(inc)
			m.Label = string(inc.Category)
			continue
		}
		r.markers[inc.ID] = &Marker{
			IncidentID: inc.ID,
			Latitude:   inc.Latitude,
			Longitude:  inc.Longitude,
			Color:      ColorFor(inc),
			Label:      string(inc.Category),
		}
	}

	for id := range r.markers {
		if _, ok := current[id]; !ok {
			delete(r.markers, id)
		}
	}
}

// Marker возвращает хэндл маркера по идентификатору инцидента
func (r *Reconciler) Marker(incidentID string) (*Marker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.markers[incidentID]
	return m, ok
}

// Snapshot возвращает маркеры в детерминированном порядке идентификаторов
func (r *Reconciler) Snapshot() []Marker {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Marker, 0, len(r.markers))
	for _, m := range r.markers {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IncidentID < out[j].IncidentID })
	return out
}

// Len возвращает текущее число маркеров
func (r *Reconciler) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.markers)
}
