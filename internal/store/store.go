package store

import (
	"iter"
	"sync"

	"github.com/shenikar/incident_moderation_console/internal/models"
)

// Store - локальная реплика инцидентов и репортов. Хранилище летучее:
// пересобирается из удаленного источника при каждом старте сессии.
// Записи заменяются целиком (last-write-wins по порядку поступления),
// частичного слияния полей нет.
type Store struct {
	mu        sync.RWMutex
	incidents map[string]models.Incident
	reports   map[string]models.Report
}

// New создает пустую реплику
func New() *Store {
	return &Store{
		incidents: make(map[string]models.Incident),
		reports:   make(map[string]models.Report),
	}
}

// UpsertIncident вставляет инцидент или целиком заменяет запись с тем же идентификатором
func (s *Store) UpsertIncident(inc models.Incident) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incidents[inc.ID] = inc
}

// UpsertReport вставляет репорт или целиком заменяет запись с тем же идентификатором
func (s *Store) UpsertReport(rep models.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[rep.ID] = rep
}

// Incident возвращает текущее значение инцидента по идентификатору
func (s *Store) Incident(id string) (models.Incident, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inc, ok := s.incidents[id]
	return inc, ok
}

// Report возвращает текущее значение репорта по идентификатору
func (s *Store) Report(id string) (models.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rep, ok := s.reports[id]
	return rep, ok
}

// Incidents возвращает ленивую перезапускаемую последовательность текущих
// инцидентов. Порядок не специфицирован.
func (s *Store) Incidents() iter.Seq[models.Incident] {
	return func(yield func(models.Incident) bool) {
		for _, inc := range s.snapshotIncidents() {
			if !yield(inc) {
				return
			}
		}
	}
}

// Reports возвращает ленивую перезапускаемую последовательность текущих репортов
func (s *Store) Reports() iter.Seq[models.Report] {
	return func(yield func(models.Report) bool) {
		for _, rep := range s.snapshotReports() {
			if !yield(rep) {
				return
			}
		}
	}
}

// ReportCount возвращает число репортов, привязанных к инциденту на момент
// чтения. Производное значение, никогда не хранится отдельно.
func (s *Store) ReportCount(incidentID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, rep := range s.reports {
		if rep.IncidentID == incidentID {
			count++
		}
	}
	return count
}

// HasVerifiedReport сообщает, есть ли у инцидента хотя бы один подтвержденный
// привязанный репорт на момент чтения
func (s *Store) HasVerifiedReport(incidentID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rep := range s.reports {
		if rep.IncidentID == incidentID && rep.Verification == models.VerificationVerified {
			return true
		}
	}
	return false
}

func (s *Store) snapshotIncidents() []models.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Incident, 0, len(s.incidents))
	for _, inc := range s.incidents {
		out = append(out, inc)
	}
	return out
}

func (s *Store) snapshotReports() []models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Report, 0, len(s.reports))
	for _, rep := range s.reports {
		out = append(out, rep)
	}
	return out
}
