/*
handlers.go - HTTP handlers for the quota engine and its surrounding entities

ENDPOINTS (under /api):
  Objectives (the core):
    GET/POST   /objetivos-perfiles
    GET/DELETE /objetivos-perfiles/{id}
    PATCH      /objetivos-perfiles/{id}/planificar
    PATCH      /objetivos-perfiles/{id}/mover-planificacion
    GET        /objetivos-perfiles/alertas
    GET        /objetivos-perfiles/calendario_eventos
    GET        /objetivos-perfiles/estadisticas
    GET        /objetivos-perfiles/pendientes
    GET        /objetivos-perfiles/historial-por-agencia?agencia_id=

  Collaborators:
    /distribuidoras, /casas, /agencias, /perfiles, /operaciones,
    /transacciones, /metricas-operativas

ERROR HANDLING:
  Planner/validation errors map to 400 with a machine-distinguishable kind
  echoing the offending values; unknown ledgers map to 404; store failures
  propagate as 500 and are never retried here.

Creating a profile explicitly drives the completion tracker. No implicit
event hook exists between profile creation and the quota ledger.
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/redviva/quota-engine/betting"
	"github.com/redviva/quota-engine/config"
	"github.com/redviva/quota-engine/quota"
	"github.com/redviva/quota-engine/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Planner  *quota.Planner
	Tracker  *quota.Tracker
	Alerts   *quota.Evaluator
	Calendar *quota.Projector
	Clock    *quota.Clock
	Cfg      *config.Config
	Metrics  *Metrics
	Log      zerolog.Logger
}

// NewHandler wires the engine components around the store.
func NewHandler(store *sqlite.Store, clock *quota.Clock, cfg *config.Config, metrics *Metrics, log zerolog.Logger) *Handler {
	return &Handler{
		Store:    store,
		Planner:  quota.NewPlanner(store, clock),
		Tracker:  quota.NewTracker(store, log),
		Alerts:   quota.NewEvaluator(store, store, clock),
		Calendar: quota.NewProjector(store, store, clock),
		Clock:    clock,
		Cfg:      cfg,
		Metrics:  metrics,
		Log:      log.With().Str("component", "api").Logger(),
	}
}

func (h *Handler) policy() quota.Policy {
	return quota.Policy{
		MaxTargetCount: h.Cfg.MaxTargetCount,
		MaxWindowDays:  h.Cfg.MaxWindowDays,
	}
}

// =============================================================================
// OBJECTIVE HANDLERS
// =============================================================================

func (h *Handler) ListObjectives(w http.ResponseWriter, r *http.Request) {
	ledgers, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	writeJSON(w, http.StatusOK, toObjectiveDTOs(ledgers))
}

func (h *Handler) CreateObjective(w http.ResponseWriter, r *http.Request) {
	var req CreateObjectiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}

	agency, err := h.Store.GetAgency(r.Context(), req.AgencyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	if agency == nil {
		writeError(w, http.StatusBadRequest, "UNKNOWN_AGENCY", errors.New("agencia inexistente"))
		return
	}

	l, err := quota.NewLedger(quota.AgencyID(req.AgencyID), req.TargetCount,
		req.WindowDays, h.Clock.Today(), h.policy())
	if err != nil {
		h.quotaError(w, err)
		return
	}
	if err := h.Store.Create(r.Context(), l); err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	writeJSON(w, http.StatusCreated, toObjectiveDTO(l))
}

func (h *Handler) GetObjective(w http.ResponseWriter, r *http.Request) {
	id, ok := objectiveID(w, r)
	if !ok {
		return
	}
	l, err := h.Store.Get(r.Context(), id)
	if err != nil {
		h.quotaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toObjectiveDTO(l))
}

func (h *Handler) DeleteObjective(w http.ResponseWriter, r *http.Request) {
	id, ok := objectiveID(w, r)
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		h.quotaError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PlanObjective handles PATCH /objetivos-perfiles/{id}/planificar.
func (h *Handler) PlanObjective(w http.ResponseWriter, r *http.Request) {
	id, ok := objectiveID(w, r)
	if !ok {
		return
	}
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	date, err := quota.ParseDate(req.Date)
	if err != nil {
		h.quotaError(w, err)
		return
	}

	l, err := h.Planner.SetAllocation(r.Context(), id, date, req.Count)
	if err != nil {
		h.quotaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toObjectiveDTO(l))
}

// MoveObjectiveAllocation handles PATCH /objetivos-perfiles/{id}/mover-planificacion.
func (h *Handler) MoveObjectiveAllocation(w http.ResponseWriter, r *http.Request) {
	id, ok := objectiveID(w, r)
	if !ok {
		return
	}
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	from, err := quota.ParseDate(req.From)
	if err != nil {
		h.quotaError(w, err)
		return
	}
	to, err := quota.ParseDate(req.To)
	if err != nil {
		h.quotaError(w, err)
		return
	}

	l, err := h.Planner.MoveAllocation(r.Context(), id, from, to)
	if err != nil {
		h.quotaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toObjectiveDTO(l))
}

func (h *Handler) ObjectiveAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.Alerts.Evaluate(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	dtos := make([]AlertDTO, len(alerts))
	for i, a := range alerts {
		dtos[i] = toAlertDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ObjectiveCalendar(w http.ResponseWriter, r *http.Request) {
	events, err := h.Calendar.Project(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	dtos := make([]CalendarEventDTO, len(events))
	for i, e := range events {
		dtos[i] = toCalendarEventDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ObjectiveStats(w http.ResponseWriter, r *http.Request) {
	ledgers, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	s := quota.Summarize(ledgers)
	writeJSON(w, http.StatusOK, StatsDTO{
		TotalObjectives:     s.TotalLedgers,
		CompletedObjectives: s.CompletedLedgers,
		PendingObjectives:   s.PendingLedgers,
		TargetTotal:         s.TargetTotal,
		CompletedTotal:      s.CompletedTotal,
		PercentComplete:     s.PercentComplete,
	})
}

func (h *Handler) PendingObjectives(w http.ResponseWriter, r *http.Request) {
	ledgers, err := h.Store.ListOpen(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	writeJSON(w, http.StatusOK, toObjectiveDTOs(ledgers))
}

func (h *Handler) AgencyHistory(w http.ResponseWriter, r *http.Request) {
	agencyID, err := strconv.ParseInt(r.URL.Query().Get("agencia_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST",
			errors.New("agencia_id es requerido"))
		return
	}
	ctx := r.Context()

	agency, err := h.Store.GetAgency(ctx, agencyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	if agency == nil {
		writeError(w, http.StatusNotFound, "UNKNOWN_AGENCY", nil)
		return
	}

	ledgers, err := h.Store.ListByAgency(ctx, quota.AgencyID(agencyID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	profiles, err := h.Store.ListProfiles(ctx, agencyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}

	profileDTOs := make([]ProfileDTO, len(profiles))
	for i, p := range profiles {
		profileDTOs[i] = toProfileDTO(p)
	}
	writeJSON(w, http.StatusOK, AgencyHistoryDTO{
		Agency:     toAgencyDTO(*agency),
		Objectives: toObjectiveDTOs(ledgers),
		Profiles:   profileDTOs,
	})
}

// =============================================================================
// DISTRIBUTOR / HOUSE / AGENCY HANDLERS
// =============================================================================

func (h *Handler) ListDistributors(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Store.ListDistributors(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	dtos := make([]DistributorDTO, len(ds))
	for i, d := range ds {
		dtos[i] = DistributorDTO{ID: d.ID, Name: d.Name, Active: d.Active}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateDistributor(w http.ResponseWriter, r *http.Request) {
	var req CreateDistributorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", errors.New("nombre es requerido"))
		return
	}
	d := betting.Distributor{Name: req.Name, Active: true}
	if err := h.Store.SaveDistributor(r.Context(), &d); err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	writeJSON(w, http.StatusCreated, DistributorDTO{ID: d.ID, Name: d.Name, Active: d.Active})
}

func (h *Handler) ListHouses(w http.ResponseWriter, r *http.Request) {
	var distributorID int64
	if raw := r.URL.Query().Get("distribuidora"); raw != "" {
		distributorID, _ = strconv.ParseInt(raw, 10, 64)
	}
	houses, err := h.Store.ListHouses(r.Context(), distributorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	dtos := make([]HouseDTO, len(houses))
	for i, house := range houses {
		dtos[i] = toHouseDTO(house)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateHouse(w http.ResponseWriter, r *http.Request) {
	var req CreateHouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	if req.DistributorID == 0 {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST",
			errors.New("distribuidora_id es requerido"))
		return
	}
	house := betting.House{
		DistributorID: req.DistributorID,
		Name:          req.Name,
		ActiveCapital: decimal.NewFromFloat(req.ActiveCapital),
		TotalCapital:  decimal.NewFromFloat(req.TotalCapital),
		MinProfiles:   req.MinProfiles,
		Active:        true,
	}
	if err := h.Store.SaveHouse(r.Context(), &house); err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHouseDTO(house))
}

func (h *Handler) ListAgencies(w http.ResponseWriter, r *http.Request) {
	agencies, err := h.Store.ListAgencies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	dtos := make([]AgencyDTO, len(agencies))
	for i, a := range agencies {
		dtos[i] = toAgencyDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateAgency(w http.ResponseWriter, r *http.Request) {
	var req CreateAgencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	a := betting.Agency{
		Name:        req.Name,
		Manager:     req.Manager,
		Contact:     req.Contact,
		HouseID:     req.HouseID,
		RakePercent: decimal.NewFromFloat(req.RakePercent),
		MinProfiles: req.MinProfiles,
		Active:      true,
	}
	if a.MinProfiles == 0 {
		a.MinProfiles = h.Cfg.MinProfilesPerHouse
	}
	if err := h.Store.SaveAgency(r.Context(), &a); err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAgencyDTO(a))
}

func (h *Handler) GetAgency(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	a, err := h.Store.GetAgency(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "UNKNOWN_AGENCY", nil)
		return
	}
	writeJSON(w, http.StatusOK, toAgencyDTO(*a))
}

// =============================================================================
// PROFILE HANDLERS
// =============================================================================

func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	var agencyID int64
	if raw := r.URL.Query().Get("agencia"); raw != "" {
		agencyID, _ = strconv.ParseInt(raw, 10, 64)
	}
	profiles, err := h.Store.ListProfiles(r.Context(), agencyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	dtos := make([]ProfileDTO, len(profiles))
	for i, p := range profiles {
		dtos[i] = toProfileDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProfile registers an account and drives the completion tracker.
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST",
			errors.New("nombre_usuario es requerido"))
		return
	}
	ctx := r.Context()

	agency, err := h.Store.GetAgency(ctx, req.AgencyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	if agency == nil {
		writeError(w, http.StatusBadRequest, "UNKNOWN_AGENCY", errors.New("agencia inexistente"))
		return
	}

	p := betting.Profile{
		ID:           uuid.NewString(),
		AgencyID:     req.AgencyID,
		HouseID:      req.HouseID,
		Username:     req.Username,
		PlayerType:   req.PlayerType,
		AccountLevel: req.AccountLevel,
		WeeklyTarget: req.WeeklyTarget,
		Active:       true,
		CreatedAt:    h.Clock.Now(),
	}
	if err := h.Store.SaveProfile(ctx, &p); err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}

	// The creation event feeds the quota tracker here, explicitly.
	ledger, err := h.Tracker.RecordCreation(ctx, quota.AgencyID(req.AgencyID))
	if err != nil {
		h.Log.Error().Err(err).Str("profile", p.ID).Msg("tracker update failed")
	}
	h.Metrics.ProfilesCreated.Inc()

	resp := CreateProfileResponse{Profile: toProfileDTO(p)}
	if ledger != nil {
		dto := toObjectiveDTO(ledger)
		resp.Objective = &dto
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) ProfileStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	p, err := h.Store.GetProfile(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "UNKNOWN_PROFILE", nil)
		return
	}
	ops, err := h.Store.ListOperations(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}

	s := betting.Summarize(ops, h.Clock.Now(), h.Clock.Location())
	writeJSON(w, http.StatusOK, ProfileStatsDTO{
		OpsTotal:     s.OpsTotal,
		OpsWeek:      s.OpsWeek,
		OpsMonth:     s.OpsMonth,
		StakeAverage: s.StakeAverage.InexactFloat64(),
		GGR:          s.GGR.InexactFloat64(),
		NetPL:        s.NetPL.InexactFloat64(),
	})
}

// =============================================================================
// OPERATION HANDLERS
// =============================================================================

func (h *Handler) ListOperations(w http.ResponseWriter, r *http.Request) {
	ops, err := h.Store.ListOperations(r.Context(), r.URL.Query().Get("perfil"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	dtos := make([]OperationDTO, len(ops))
	for i, o := range ops {
		dtos[i] = toOperationDTO(o)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateOperation(w http.ResponseWriter, r *http.Request) {
	var req CreateOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	ctx := r.Context()

	p, err := h.Store.GetProfile(ctx, req.ProfileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusBadRequest, "UNKNOWN_PROFILE", errors.New("perfil inexistente"))
		return
	}
	if req.Stake <= 0 {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", errors.New("importe debe ser positivo"))
		return
	}

	o := betting.Operation{
		ProfileID:  req.ProfileID,
		Stake:      decimal.NewFromFloat(req.Stake),
		Odds:       decimal.NewFromFloat(req.Odds),
		Status:     betting.OpPending,
		Market:     req.Market,
		RecordedAt: h.Clock.Now(),
	}
	if err := h.Store.SaveOperation(ctx, &o); err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOperationDTO(o))
}

// SettleOperation handles POST /operaciones/{id}/liquidar.
func (h *Handler) SettleOperation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	var req SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	if req.Payout < 0 {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", errors.New("payout no puede ser negativo"))
		return
	}
	ctx := r.Context()

	o, err := h.Store.GetOperation(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "UNKNOWN_OPERATION", nil)
		return
	}
	if o.Status.Settled() {
		writeError(w, http.StatusConflict, "ALREADY_SETTLED", nil)
		return
	}

	o.Settle(decimal.NewFromFloat(req.Payout))
	if err := h.Store.UpdateOperation(ctx, o); err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	writeJSON(w, http.StatusOK, toOperationDTO(*o))
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Store.ListTransactions(r.Context(), r.URL.Query().Get("perfil"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	dtos := make([]TransactionDTO, len(txs))
	for i, t := range txs {
		dtos[i] = toTransactionDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	kind := betting.TransactionKind(req.Kind)
	if kind != betting.TxDeposit && kind != betting.TxWithdrawal {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST",
			errors.New("tipo_transaccion debe ser DEPOSITO o RETIRO"))
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", errors.New("monto debe ser positivo"))
		return
	}
	ctx := r.Context()

	p, err := h.Store.GetProfile(ctx, req.ProfileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusBadRequest, "UNKNOWN_PROFILE", errors.New("perfil inexistente"))
		return
	}

	t := betting.Transaction{
		ProfileID: req.ProfileID,
		Kind:      kind,
		Amount:    decimal.NewFromFloat(req.Amount),
		Method:    req.Method,
		Status:    betting.TxPending,
		Reference: req.Reference,
		At:        h.Clock.Now(),
	}
	if err := h.Store.SaveTransaction(ctx, &t); err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(t))
}

// =============================================================================
// OPERATIONAL SNAPSHOT
// =============================================================================

// OperationalSnapshot computes the platform-wide picture on demand.
func (h *Handler) OperationalSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(snap))
}

func (h *Handler) snapshot(ctx context.Context) (betting.Snapshot, error) {
	houses, err := h.Store.ListHouses(ctx, 0)
	if err != nil {
		return betting.Snapshot{}, err
	}
	profiles, err := h.Store.ListProfiles(ctx, 0)
	if err != nil {
		return betting.Snapshot{}, err
	}
	todayOps, err := h.Store.ListOperationsOn(ctx, h.Clock.Today())
	if err != nil {
		return betting.Snapshot{}, err
	}
	return betting.BuildSnapshot(houses, profiles, todayOps,
		h.Cfg.DailyVolumeTarget, h.Clock.Now()), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func toObjectiveDTOs(ledgers []*quota.Ledger) []ObjectiveDTO {
	dtos := make([]ObjectiveDTO, len(ledgers))
	for i, l := range ledgers {
		dtos[i] = toObjectiveDTO(l)
	}
	return dtos
}

func objectiveID(w http.ResponseWriter, r *http.Request) (quota.LedgerID, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err)
		return 0, false
	}
	return quota.LedgerID(id), true
}

// quotaError maps engine errors onto the wire: 400 for caller mistakes with a
// machine-readable kind, 404 for missing ledgers, 500 otherwise.
func (h *Handler) quotaError(w http.ResponseWriter, err error) {
	switch {
	case quota.IsNotFound(err):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err)
	case quota.IsClientError(err):
		writeError(w, http.StatusBadRequest, errorKind(err), err)
	case quota.IsRetryable(err):
		writeError(w, http.StatusConflict, "CONFLICT", err)
	default:
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err)
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, quota.ErrQuotaExceeded):
		return "QUOTA_EXCEEDED"
	case errors.Is(err, quota.ErrInvalidDate):
		return "INVALID_DATE"
	case errors.Is(err, quota.ErrInvalidCount):
		return "INVALID_COUNT"
	case errors.Is(err, quota.ErrInvalidWindow):
		return "INVALID_WINDOW"
	case errors.Is(err, quota.ErrNoAllocation):
		return "NO_ALLOCATION"
	case errors.Is(err, quota.ErrPastDate):
		return "PAST_DATE"
	default:
		return "BAD_REQUEST"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, kind string, err error) {
	resp := ErrorResponse{Error: kind}
	if err != nil {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}
