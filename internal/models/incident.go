package models

import (
	"time"
)

// IncidentCategory - фиксированный набор категорий инцидентов
type IncidentCategory string

const (
	CategorySexualAssault IncidentCategory = "Sexual Assault"
	CategoryBombThreat    IncidentCategory = "Bomb Threat"
	CategoryFire          IncidentCategory = "Fire / Explosion"
	CategoryAccident      IncidentCategory = "Accident"
	CategoryTheft         IncidentCategory = "Theft"
)

// Categories возвращает все известные категории
func Categories() []IncidentCategory {
	return []IncidentCategory{
		CategorySexualAssault,
		CategoryBombThreat,
		CategoryFire,
		CategoryAccident,
		CategoryTheft,
	}
}

// ResolutionTag - статус разрешения инцидента
type ResolutionTag string

const (
	ResolutionResolved   ResolutionTag = "Resolved"
	ResolutionUnresolved ResolutionTag = "Unresolved"
)

// Toggled возвращает противоположный статус разрешения
func (r ResolutionTag) Toggled() ResolutionTag {
	if r == ResolutionResolved {
		return ResolutionUnresolved
	}
	return ResolutionResolved
}

// PriorityTag - приоритет инцидента
type PriorityTag string

const (
	PriorityCritical PriorityTag = "Critical"
	PriorityHigh     PriorityTag = "High"
	PriorityMedium   PriorityTag = "Medium"
	PriorityLow      PriorityTag = "Low"
)

// Rank возвращает порядковый ранг приоритета: Critical=0 ... Low=3.
// Неизвестный приоритет получает ранг ниже Low.
func (p PriorityTag) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Incident - каноническое дедуплицированное событие, подтверждаемое репортами
type Incident struct {
	ID              string           `json:"incident_id"`
	Category        IncidentCategory `json:"category"`
	Latitude        float64          `json:"latitude"`
	Longitude       float64          `json:"longitude"`
	LocationLabel   string           `json:"location_label"`
	ReportedTime    time.Time        `json:"reported_time"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	ResolutionTag   ResolutionTag    `json:"resolution_tag"`
	PriorityTag     PriorityTag      `json:"priority_tag"`
	PriorityScore   float64          `json:"priority_score"`
	ConfidenceScore float64          `json:"confidence_score"`

	// Производные поля: пересчитываются адаптером границы из набора
	// привязанных репортов, никогда не мутируются независимо.
	ReportCount       int  `json:"report_count"`
	HasVerifiedReport bool `json:"has_verified_report"`
}
