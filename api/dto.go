/*
dto.go - Data Transfer Objects for API requests and responses

The wire contract keeps the platform's Spanish field names (fecha,
cantidad_objetivo, planificacion, ...). DTOs decouple that contract from the
internal domain model; validation happens in handlers, DTOs are pure data
carriers. Money is float64 on the wire, decimal internally.
*/
package api

import (
	"time"

	"github.com/redviva/quota-engine/betting"
	"github.com/redviva/quota-engine/quota"
)

// =============================================================================
// OBJECTIVES (quota ledgers)
// =============================================================================

type ObjectiveDTO struct {
	ID                 int64          `json:"id"`
	AgencyID           int64          `json:"agencia_id"`
	TargetCount        int            `json:"cantidad_objetivo"`
	CompletedCount     int            `json:"cantidad_completada"`
	RemainingCount     int            `json:"cantidad_restante"`
	PercentComplete    float64        `json:"porcentaje_avance"`
	WindowDays         int            `json:"dias_limite"`
	StartDate          string         `json:"fecha_inicio"`
	Deadline           string         `json:"fecha_limite"`
	Complete           bool           `json:"completado"`
	Allocations        map[string]int `json:"planificacion"`
	CreatedAt          string         `json:"fecha_creacion,omitempty"`
}

func toObjectiveDTO(l *quota.Ledger) ObjectiveDTO {
	dto := ObjectiveDTO{
		ID:              int64(l.ID),
		AgencyID:        int64(l.AgencyID),
		TargetCount:     l.TargetCount,
		CompletedCount:  l.CompletedCount,
		RemainingCount:  l.Remaining(),
		PercentComplete: l.PercentComplete(),
		WindowDays:      l.WindowDays,
		StartDate:       l.StartDate.String(),
		Deadline:        l.Deadline.String(),
		Complete:        l.Complete,
		Allocations:     l.Allocations,
	}
	if !l.CreatedAt.IsZero() {
		dto.CreatedAt = l.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

type CreateObjectiveRequest struct {
	AgencyID    int64 `json:"agencia_id"`
	TargetCount int   `json:"cantidad_objetivo"`
	WindowDays  int   `json:"dias_limite"`
}

// PlanRequest is the body of PATCH /objetivos-perfiles/{id}/planificar/.
type PlanRequest struct {
	Date  string `json:"fecha"`
	Count int    `json:"cantidad"`
}

// MoveRequest is the body of PATCH /objetivos-perfiles/{id}/mover-planificacion/.
type MoveRequest struct {
	From string `json:"fecha_origen"`
	To   string `json:"fecha_destino"`
}

type AlertDTO struct {
	Kind        string `json:"tipo"`
	ObjectiveID int64  `json:"objetivo_id"`
	AgencyID    int64  `json:"agencia_id"`
	Date        string `json:"fecha,omitempty"`
	Missing     int    `json:"sin_planificar,omitempty"`
	Planned     int    `json:"planificados,omitempty"`
	Pending     int    `json:"pendientes,omitempty"`
	Remaining   int    `json:"restantes,omitempty"`
	DaysOverdue int    `json:"dias_vencido,omitempty"`
	DaysLeft    int    `json:"dias_restantes,omitempty"`
	Message     string `json:"mensaje"`
}

func toAlertDTO(a quota.Alert) AlertDTO {
	dto := AlertDTO{
		Kind:        string(a.Kind),
		ObjectiveID: int64(a.LedgerID),
		AgencyID:    int64(a.AgencyID),
		Missing:     a.Missing,
		Planned:     a.Planned,
		Pending:     a.Pending,
		Remaining:   a.Remaining,
		DaysOverdue: a.DaysOverdue,
		DaysLeft:    a.DaysLeft,
		Message:     a.Message,
	}
	if a.Date != nil {
		dto.Date = a.Date.String()
	}
	return dto
}

type CalendarEventDTO struct {
	Kind        string `json:"tipo"`
	Date        string `json:"fecha"`
	ObjectiveID int64  `json:"objetivo_id"`
	AgencyID    int64  `json:"agencia_id"`
	Title       string `json:"titulo"`
	Target      int    `json:"cantidad_objetivo,omitempty"`
	Completed   int    `json:"cantidad_completada,omitempty"`
	Sequence    int    `json:"secuencia,omitempty"`
	ProfileID   string `json:"perfil_id,omitempty"`
	Planned     *int   `json:"planificados,omitempty"`
	Fulfilled   *int   `json:"cumplidos,omitempty"`
}

func toCalendarEventDTO(e quota.CalendarEvent) CalendarEventDTO {
	dto := CalendarEventDTO{
		Kind:        string(e.Kind),
		Date:        e.Date.String(),
		ObjectiveID: int64(e.LedgerID),
		AgencyID:    int64(e.AgencyID),
		Title:       e.Title,
		Target:      e.Target,
		Completed:   e.Completed,
		Sequence:    e.Sequence,
		ProfileID:   e.ProfileID,
	}
	if e.Kind == quota.EventPlanned {
		planned, fulfilled := e.Planned, e.Fulfilled
		dto.Planned = &planned
		dto.Fulfilled = &fulfilled
	}
	return dto
}

type StatsDTO struct {
	TotalObjectives     int     `json:"total_objetivos"`
	CompletedObjectives int     `json:"objetivos_completados"`
	PendingObjectives   int     `json:"objetivos_pendientes"`
	TargetTotal         int     `json:"perfiles_objetivo"`
	CompletedTotal      int     `json:"perfiles_creados"`
	PercentComplete     float64 `json:"porcentaje_avance"`
}

// AgencyHistoryDTO is the payload of /objetivos-perfiles/historial-por-agencia/.
type AgencyHistoryDTO struct {
	Agency     AgencyDTO      `json:"agencia"`
	Objectives []ObjectiveDTO `json:"objetivos"`
	Profiles   []ProfileDTO   `json:"perfiles"`
}

// =============================================================================
// BETTING ENTITIES
// =============================================================================

type DistributorDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"nombre"`
	Active bool   `json:"activo"`
}

type CreateDistributorRequest struct {
	Name string `json:"nombre"`
}

type HouseDTO struct {
	ID            int64   `json:"id"`
	DistributorID int64   `json:"distribuidora_id"`
	Name          string  `json:"nombre"`
	ProfileCount  int     `json:"nro_perfiles"`
	ActiveCapital float64 `json:"capital_activo"`
	TotalCapital  float64 `json:"capital_total"`
	MinProfiles   int     `json:"perfiles_minimos_req"`
	Active        bool    `json:"activo"`
}

func toHouseDTO(h betting.House) HouseDTO {
	return HouseDTO{
		ID:            h.ID,
		DistributorID: h.DistributorID,
		Name:          h.Name,
		ProfileCount:  h.ProfileCount,
		ActiveCapital: h.ActiveCapital.InexactFloat64(),
		TotalCapital:  h.TotalCapital.InexactFloat64(),
		MinProfiles:   h.MinProfiles,
		Active:        h.Active,
	}
}

type CreateHouseRequest struct {
	DistributorID int64   `json:"distribuidora_id"`
	Name          string  `json:"nombre"`
	ActiveCapital float64 `json:"capital_activo"`
	TotalCapital  float64 `json:"capital_total"`
	MinProfiles   int     `json:"perfiles_minimos_req"`
}

type AgencyDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"nombre"`
	Manager     string  `json:"responsable"`
	Contact     string  `json:"contacto,omitempty"`
	HouseID     int64   `json:"casa_madre_id"`
	RakePercent float64 `json:"rake_porcentaje"`
	MinProfiles int     `json:"perfiles_minimos"`
	Active      bool    `json:"activo"`
	CreatedAt   string  `json:"fecha_registro,omitempty"`
}

func toAgencyDTO(a betting.Agency) AgencyDTO {
	dto := AgencyDTO{
		ID:          a.ID,
		Name:        a.Name,
		Manager:     a.Manager,
		Contact:     a.Contact,
		HouseID:     a.HouseID,
		RakePercent: a.RakePercent.InexactFloat64(),
		MinProfiles: a.MinProfiles,
		Active:      a.Active,
	}
	if !a.CreatedAt.IsZero() {
		dto.CreatedAt = a.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

type CreateAgencyRequest struct {
	Name        string  `json:"nombre"`
	Manager     string  `json:"responsable"`
	Contact     string  `json:"contacto"`
	HouseID     int64   `json:"casa_madre_id"`
	RakePercent float64 `json:"rake_porcentaje"`
	MinProfiles int     `json:"perfiles_minimos"`
}

type ProfileDTO struct {
	ID           string `json:"id"`
	AgencyID     int64  `json:"agencia_id"`
	HouseID      int64  `json:"casa_id"`
	Username     string `json:"nombre_usuario"`
	PlayerType   string `json:"tipo_jugador,omitempty"`
	AccountLevel string `json:"nivel_cuenta,omitempty"`
	WeeklyTarget int    `json:"meta_ops_semanales"`
	Active       bool   `json:"activo"`
	CreatedAt    string `json:"fecha_creacion"`
}

func toProfileDTO(p betting.Profile) ProfileDTO {
	return ProfileDTO{
		ID:           p.ID,
		AgencyID:     p.AgencyID,
		HouseID:      p.HouseID,
		Username:     p.Username,
		PlayerType:   p.PlayerType,
		AccountLevel: p.AccountLevel,
		WeeklyTarget: p.WeeklyTarget,
		Active:       p.Active,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
}

type CreateProfileRequest struct {
	AgencyID     int64  `json:"agencia_id"`
	HouseID      int64  `json:"casa_id"`
	Username     string `json:"nombre_usuario"`
	PlayerType   string `json:"tipo_jugador"`
	AccountLevel string `json:"nivel_cuenta"`
	WeeklyTarget int    `json:"meta_ops_semanales"`
}

// CreateProfileResponse echoes the objective the creation counted against,
// when the agency had one open.
type CreateProfileResponse struct {
	Profile   ProfileDTO    `json:"perfil"`
	Objective *ObjectiveDTO `json:"objetivo,omitempty"`
}

type OperationDTO struct {
	ID         int64   `json:"id"`
	ProfileID  string  `json:"perfil_id"`
	Stake      float64 `json:"importe"`
	Odds       float64 `json:"cuota"`
	Status     string  `json:"estado"`
	Payout     float64 `json:"payout"`
	ProfitLoss float64 `json:"profit_loss"`
	Market     string  `json:"mercado,omitempty"`
	RecordedAt string  `json:"fecha_registro"`
}

func toOperationDTO(o betting.Operation) OperationDTO {
	return OperationDTO{
		ID:         o.ID,
		ProfileID:  o.ProfileID,
		Stake:      o.Stake.InexactFloat64(),
		Odds:       o.Odds.InexactFloat64(),
		Status:     string(o.Status),
		Payout:     o.Payout.InexactFloat64(),
		ProfitLoss: o.ProfitLoss.InexactFloat64(),
		Market:     o.Market,
		RecordedAt: o.RecordedAt.Format(time.RFC3339),
	}
}

type CreateOperationRequest struct {
	ProfileID string  `json:"perfil_id"`
	Stake     float64 `json:"importe"`
	Odds      float64 `json:"cuota"`
	Market    string  `json:"mercado"`
}

// SettleRequest is the body of POST /operaciones/{id}/liquidar/.
type SettleRequest struct {
	Payout float64 `json:"payout"`
}

type ProfileStatsDTO struct {
	OpsTotal     int     `json:"ops_totales"`
	OpsWeek      int     `json:"ops_semana"`
	OpsMonth     int     `json:"ops_mes"`
	StakeAverage float64 `json:"stake_promedio"`
	GGR          float64 `json:"ggr"`
	NetPL        float64 `json:"resultado_neto"`
}

type TransactionDTO struct {
	ID        int64   `json:"id"`
	ProfileID string  `json:"perfil_id"`
	Kind      string  `json:"tipo_transaccion"`
	Amount    float64 `json:"monto"`
	Method    string  `json:"metodo_pago,omitempty"`
	Status    string  `json:"estado"`
	Reference string  `json:"referencia,omitempty"`
	At        string  `json:"fecha_transaccion"`
}

func toTransactionDTO(t betting.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:        t.ID,
		ProfileID: t.ProfileID,
		Kind:      string(t.Kind),
		Amount:    t.Amount.InexactFloat64(),
		Method:    t.Method,
		Status:    string(t.Status),
		Reference: t.Reference,
		At:        t.At.Format(time.RFC3339),
	}
}

type CreateTransactionRequest struct {
	ProfileID string  `json:"perfil_id"`
	Kind      string  `json:"tipo_transaccion"`
	Amount    float64 `json:"monto"`
	Method    string  `json:"metodo_pago"`
	Reference string  `json:"referencia"`
}

// SnapshotDTO is the on-demand operational picture.
type SnapshotDTO struct {
	ActiveProfiles int     `json:"perfiles_listos_operar"`
	TotalCapital   float64 `json:"capital_total"`
	ActiveCapital  float64 `json:"capital_activo"`
	VolumeToday    float64 `json:"volumen_apostado_hoy"`
	VolumeTarget   float64 `json:"volumen_objetivo"`
	TargetMet      bool    `json:"objetivo_cumplido"`
	AsOf           string  `json:"fecha_actualizacion"`
}

func toSnapshotDTO(s betting.Snapshot) SnapshotDTO {
	return SnapshotDTO{
		ActiveProfiles: s.ActiveProfiles,
		TotalCapital:   s.TotalCapital.InexactFloat64(),
		ActiveCapital:  s.ActiveCapital.InexactFloat64(),
		VolumeToday:    s.VolumeToday.InexactFloat64(),
		VolumeTarget:   s.VolumeTarget.InexactFloat64(),
		TargetMet:      s.TargetMet,
		AsOf:           s.AsOf.Format(time.RFC3339),
	}
}

// ErrorResponse carries a machine-distinguishable kind plus a human message.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
