package httpapi

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/otcheredev/pcd-manager/internal/archive"
	"github.com/otcheredev/pcd-manager/internal/codec"
	"github.com/otcheredev/pcd-manager/internal/extconfig"
	"github.com/otcheredev/pcd-manager/internal/fsm"
	"github.com/otcheredev/pcd-manager/internal/manager"
	"github.com/otcheredev/pcd-manager/internal/repository"
)

// AdminHandler exposes the operator-facing surface over the registry of
// live connections: listing associations, forcing release/abort,
// registering extended configurations ahead of an Agent connecting, and
// triggering on-demand segment archival.
type AdminHandler struct {
	registry  *manager.Registry
	events    *repository.AssociationEventRepository
	extconfig extconfig.Registry
	archive   *archive.Store
	validate  *validator.Validate
}

func NewAdminHandler(registry *manager.Registry, events *repository.AssociationEventRepository, ext extconfig.Registry, archiveStore *archive.Store) *AdminHandler {
	return &AdminHandler{registry: registry, events: events, extconfig: ext, archive: archiveStore, validate: validator.New()}
}

type connectionView struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// ListConnections returns every currently registered connection and its
// FSM state.
func (h *AdminHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	summaries := h.registry.List()
	out := make([]connectionView, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, connectionView{ID: s.ID, State: s.State.String()})
	}
	writeJSON(w, http.StatusOK, out)
}

// ForceRelease triggers an orderly req_release on one connection.
func (h *AdminHandler) ForceRelease(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conn, ok := h.registry.Get(id)
	if !ok {
		http.Error(w, "connection not found", http.StatusNotFound)
		return
	}
	if err := conn.RequestRelease(); err != nil {
		log.Warn().Err(err).Str("connection_id", id).Msg("httpapi: force release failed")
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ForceAbort tears a connection down immediately.
func (h *AdminHandler) ForceAbort(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conn, ok := h.registry.Get(id)
	if !ok {
		http.Error(w, "connection not found", http.StatusNotFound)
		return
	}
	conn.RequestAbort()
	w.WriteHeader(http.StatusAccepted)
}

// AssociationHistory returns recent association_events rows.
func (h *AdminHandler) AssociationHistory(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.Recent(r.Context(), 100)
	if err != nil {
		log.Error().Err(err).Msg("httpapi: failed to load association history")
		http.Error(w, "failed to load association history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

type avaRequest struct {
	AttributeID uint16 `json:"attribute_id" validate:"required"`
	ValueHex    string `json:"value_hex" validate:"required,hexadecimal"`
}

type configObjectRequest struct {
	ObjClass      uint16       `json:"obj_class" validate:"required"`
	ObjHandle     uint16       `json:"obj_handle"`
	AttributeList []avaRequest `json:"attributes" validate:"dive"`
}

type registerExtConfigRequest struct {
	SystemIDHex    string                `json:"system_id_hex" validate:"required,hexadecimal"`
	ConfigReportID uint16                `json:"config_report_id" validate:"required"`
	Objects        []configObjectRequest `json:"objects" validate:"required,min=1,dive"`
}

// RegisterExtConfig lets an operator pre-seed an extended configuration
// before the Agent it belongs to ever connects, so the fast path in
// handleAARE can install it immediately instead of waiting out the
// configuring timeout.
func (h *AdminHandler) RegisterExtConfig(w http.ResponseWriter, r *http.Request) {
	var req registerExtConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	systemID, err := hex.DecodeString(req.SystemIDHex)
	if err != nil {
		http.Error(w, "system_id_hex: "+err.Error(), http.StatusBadRequest)
		return
	}

	objects := make([]codec.ConfigObject, 0, len(req.Objects))
	for _, o := range req.Objects {
		attrs := make([]codec.AVA, 0, len(o.AttributeList))
		for _, a := range o.AttributeList {
			value, err := hex.DecodeString(a.ValueHex)
			if err != nil {
				http.Error(w, "value_hex: "+err.Error(), http.StatusBadRequest)
				return
			}
			attrs = append(attrs, codec.AVA{AttributeID: a.AttributeID, Value: value})
		}
		objects = append(objects, codec.ConfigObject{ObjClass: o.ObjClass, ObjHandle: o.ObjHandle, AttributeList: attrs})
	}

	if err := h.extconfig.Register(r.Context(), systemID, req.ConfigReportID, objects); err != nil {
		log.Error().Err(err).Msg("httpapi: failed to register extended configuration")
		http.Error(w, "failed to register extended configuration", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ArchiveSegment triggers request_segment_data on a live connection's
// PMStore and archives the ActionInfo of the Agent's confirmed-action
// response to S3, keyed by the connection id. The segment-data event
// reports the Agent sends afterwards are not collected or archived.
// Requires the archive store to be configured.
func (h *AdminHandler) ArchiveSegment(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		http.Error(w, "segment archive not configured", http.StatusNotImplemented)
		return
	}

	id := chi.URLParam(r, "id")
	conn, ok := h.registry.Get(id)
	if !ok {
		http.Error(w, "connection not found", http.StatusNotFound)
		return
	}

	pmStoreHandle, err := parseHandleParam(r, "handle")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	segInstNo, err := parseHandleParam(r, "seg")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var wg sync.WaitGroup
	var result codec.ActionResultSimple
	var reqErr error
	wg.Add(1)
	conn.WithContext(func(ctx *fsm.Context) {
		reqErr = ctx.RequestSegmentData(pmStoreHandle, segInstNo, func(res codec.ActionResultSimple, err error) {
			result, reqErr = res, err
			wg.Done()
		})
		if reqErr != nil {
			wg.Done()
		}
	})
	wg.Wait()

	if reqErr != nil {
		log.Warn().Err(reqErr).Str("connection_id", id).Msg("httpapi: segment data request failed")
		http.Error(w, reqErr.Error(), http.StatusBadGateway)
		return
	}

	if err := h.archive.PutSegment(r.Context(), id, pmStoreHandle, segInstNo, result.ActionInfo); err != nil {
		log.Error().Err(err).Str("connection_id", id).Msg("httpapi: failed to archive segment")
		http.Error(w, "failed to archive segment", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func parseHandleParam(r *http.Request, name string) (uint16, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
