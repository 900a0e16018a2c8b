package views

import (
	"sort"

	"github.com/shenikar/incident_moderation_console/internal/models"
	"github.com/shenikar/incident_moderation_console/internal/store"
)

// SortKey - ключ сортировки админского списка инцидентов
type SortKey string

const (
	SortByPriority   SortKey = "priority"
	SortByConfidence SortKey = "confidence"
	SortByReports    SortKey = "reports"
	SortByTime       SortKey = "time"
)

// sortChain - фиксированный порядок правил; равенство по выбранному ключу
// разрешается следующими правилами цепочки, остаток - порядком вставки
// (стабильная сортировка).
var sortChain = []SortKey{SortByPriority, SortByConfidence, SortByReports, SortByTime}

// Filter - конъюнктивный предикат; нулевое значение поля снимает ограничение
type Filter struct {
	Category     models.IncidentCategory
	Resolution   models.ResolutionTag
	Priority     models.PriorityTag
	Verification models.VerificationState
}

// MatchesIncident проверяет инцидент по заполненным полям фильтра
func (f Filter) MatchesIncident(inc models.Incident) bool {
	if f.Category != "" && inc.Category != f.Category {
		return false
	}
	if f.Resolution != "" && inc.ResolutionTag != f.Resolution {
		return false
	}
	if f.Priority != "" && inc.PriorityTag != f.Priority {
		return false
	}
	return true
}

// MatchesReport проверяет репорт по заполненным полям фильтра
func (f Filter) MatchesReport(rep models.Report) bool {
	if f.Category != "" && rep.Category != f.Category {
		return false
	}
	if f.Verification != "" && rep.Verification != f.Verification {
		return false
	}
	return true
}

// Engine - чистые read-only проекции над репликой, пересчитываемые по
// требованию. Отдельного протокола инвалидации нет: реплика мала и
// целиком в памяти.
type Engine struct {
	store *store.Store
}

// New создает движок проекций
func New(st *store.Store) *Engine {
	return &Engine{store: st}
}

// Store возвращает реплику для точечных read-only обращений
func (e *Engine) Store() *store.Store {
	return e.store
}

// PublicIncidents возвращает публично видимые инциденты (с хотя бы одним
// подтвержденным репортом). Сортировка фиксированная и не выбирается
// пользователем: по возрастанию ранга приоритета, затем по убыванию
// времени репорта.
func (e *Engine) PublicIncidents() []models.Incident {
	var out []models.Incident
	for inc := range e.store.Incidents() {
		if inc.HasVerifiedReport {
			out = append(out, inc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PriorityTag.Rank() != out[j].PriorityTag.Rank() {
			return out[i].PriorityTag.Rank() < out[j].PriorityTag.Rank()
		}
		return out[i].ReportedTime.After(out[j].ReportedTime)
	})
	return out
}

// AdminIncidents возвращает полный список инцидентов с фильтром и сортировкой
func (e *Engine) AdminIncidents(f Filter, key SortKey) []models.Incident {
	var out []models.Incident
	for inc := range e.store.Incidents() {
		if f.MatchesIncident(inc) {
			out = append(out, inc)
		}
	}
	sortIncidents(out, key)
	return out
}

// ReportsForIncident возвращает репорты, привязанные к инциденту
func (e *Engine) ReportsForIncident(incidentID string) []models.Report {
	var out []models.Report
	for rep := range e.store.Reports() {
		if rep.IncidentID == incidentID {
			out = append(out, rep)
		}
	}
	sortReports(out)
	return out
}

// FlaggedQueue возвращает очередь модерации: репорты, отмеченные для ручной проверки
func (e *Engine) FlaggedQueue(f Filter) []models.Report {
	var out []models.Report
	for rep := range e.store.Reports() {
		if rep.Verification == models.VerificationFlagged && f.MatchesReport(rep) {
			out = append(out, rep)
		}
	}
	sortReports(out)
	return out
}

// UnlinkedVerifiedReports возвращает кандидатов на слияние: подтвержденные
// репорты без привязки к инциденту
func (e *Engine) UnlinkedVerifiedReports() []models.Report {
	var out []models.Report
	for rep := range e.store.Reports() {
		if rep.PendingDedup() {
			out = append(out, rep)
		}
	}
	sortReports(out)
	return out
}

func sortIncidents(incidents []models.Incident, key SortKey) {
	chain := chainFrom(key)
	sort.SliceStable(incidents, func(i, j int) bool {
		for _, k := range chain {
			if less, equal := compareByKey(incidents[i], incidents[j], k); !equal {
				return less
			}
		}
		return false
	})
}

// chainFrom возвращает цепочку правил, начинающуюся с выбранного ключа
// и продолжающуюся оставшимися правилами фиксированного порядка
func chainFrom(key SortKey) []SortKey {
	chain := []SortKey{key}
	for _, k := range sortChain {
		if k != key {
			chain = append(chain, k)
		}
	}
	return chain
}

func compareByKey(a, b models.Incident, key SortKey) (less, equal bool) {
	switch key {
	case SortByConfidence:
		return a.ConfidenceScore > b.ConfidenceScore, a.ConfidenceScore == b.ConfidenceScore
	case SortByReports:
		return a.ReportCount > b.ReportCount, a.ReportCount == b.ReportCount
	case SortByTime:
		return a.ReportedTime.After(b.ReportedTime), a.ReportedTime.Equal(b.ReportedTime)
	default: // SortByPriority
		return a.PriorityTag.Rank() < b.PriorityTag.Rank(), a.PriorityTag.Rank() == b.PriorityTag.Rank()
	}
}

// sortReports упорядочивает репорты по убыванию времени отправки,
// равенство разрешается идентификатором для детерминизма
func sortReports(reports []models.Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		if !reports[i].SubmissionTime.Equal(reports[j].SubmissionTime) {
			return reports[i].SubmissionTime.After(reports[j].SubmissionTime)
		}
		return reports[i].ID < reports[j].ID
	})
}
