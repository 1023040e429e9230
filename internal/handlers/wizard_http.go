package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"civic-portal/internal/apperr"
	"civic-portal/internal/middleware"
	"civic-portal/internal/models"
	"civic-portal/internal/storage"
	"civic-portal/internal/utils"
	"civic-portal/internal/wizard"
)

// WizardHTTP exposes the submission wizard. Each call loads the caller's
// draft, applies one transition and saves it back.
type WizardHTTP struct {
	wiz    *wizard.Wizard
	drafts wizard.DraftStore
	log    zerolog.Logger
}

func NewWizardHTTP(wiz *wizard.Wizard, drafts wizard.DraftStore, log zerolog.Logger) *WizardHTTP {
	return &WizardHTTP{wiz: wiz, drafts: drafts, log: log}
}

// load returns the draft in the URL if the caller owns it. Someone else's
// draft answers 404 so ids cannot be enumerated.
func (h *WizardHTTP) load(w http.ResponseWriter, r *http.Request) (*wizard.Draft, bool) {
	d, err := h.drafts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, h.log, err)
		return nil, false
	}
	if uid, _ := middleware.Caller(r.Context()); d.ReporterID != uid {
		utils.Error(w, http.StatusNotFound, "not found")
		return nil, false
	}
	return d, true
}

func (h *WizardHTTP) save(w http.ResponseWriter, r *http.Request, d *wizard.Draft, status int) {
	if err := h.drafts.Save(r.Context(), d); err != nil {
		writeErr(w, h.log, err)
		return
	}
	utils.JSON(w, status, d.View())
}

// step wraps the handlers that only apply a transition to a loaded draft.
// A failed transition is not saved.
func (h *WizardHTTP) step(apply func(r *http.Request, d *wizard.Draft) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := h.load(w, r)
		if !ok {
			return
		}
		if err := apply(r, d); err != nil {
			writeErr(w, h.log, err)
			return
		}
		h.save(w, r, d, http.StatusOK)
	}
}

// POST /api/wizard
// Body (optional): {latitude, longitude} from the device.
func (h *WizardHTTP) Start() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		var at *wizard.Coordinates
		if in.Latitude != nil && in.Longitude != nil {
			at = &wizard.Coordinates{Latitude: *in.Latitude, Longitude: *in.Longitude}
		}
		uid, _ := middleware.Caller(r.Context())
		d, err := h.wiz.Start(r.Context(), uid, at)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		h.save(w, r, d, http.StatusCreated)
	}
}

// GET /api/wizard/{id}
func (h *WizardHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := h.load(w, r)
		if !ok {
			return
		}
		utils.JSON(w, http.StatusOK, d.View())
	}
}

// multipart boundaries and headers on top of the image itself
const formOverhead = 1 << 20

// POST /api/wizard/{id}/image  (multipart, field "image")
func (h *WizardHTTP) Image() http.HandlerFunc {
	capture := h.step(func(r *http.Request, d *wizard.Draft) error {
		img, err := readImage(r)
		if err != nil {
			return err
		}
		return h.wiz.Capture(r.Context(), d, img)
	})
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageBytes+formOverhead)
		capture(w, r)
	}
}

func readImage(r *http.Request) (models.Image, error) {
	if err := r.ParseMultipartForm(storage.MaxImageBytes + formOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return models.Image{}, apperr.Invalid("image", "exceeds 10MB")
		}
		return models.Image{}, apperr.Invalid("image", "expected multipart form with an image field")
	}
	f, hdr, err := r.FormFile("image")
	if err != nil {
		return models.Image{}, apperr.Invalid("image", "is required")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, storage.MaxImageBytes+1))
	if err != nil {
		return models.Image{}, apperr.Invalid("image", "could not be read")
	}
	if len(data) > storage.MaxImageBytes {
		return models.Image{}, apperr.Invalid("image", "exceeds 10MB")
	}
	ct := http.DetectContentType(data)
	if !storage.AllowedType(ct) {
		return models.Image{}, apperr.Invalid("image", "unsupported type "+ct)
	}
	return models.Image{Filename: hdr.Filename, ContentType: ct, Data: data}, nil
}

// PUT /api/wizard/{id}/details
// Body: {category, description, priority}
func (h *WizardHTTP) Details() http.HandlerFunc {
	return h.step(func(r *http.Request, d *wizard.Draft) error {
		var in wizard.DetailsInput
		if err := decode(r, &in); err != nil {
			return err
		}
		return h.wiz.SetDetails(d, in)
	})
}

// PUT /api/wizard/{id}/location
// Body: {latitude, longitude}
func (h *WizardHTTP) Location() http.HandlerFunc {
	return h.step(func(r *http.Request, d *wizard.Draft) error {
		var in wizard.Coordinates
		if err := decode(r, &in); err != nil {
			return err
		}
		return h.wiz.SetLocation(r.Context(), d, in.Latitude, in.Longitude)
	})
}

func (h *WizardHTTP) Next() http.HandlerFunc {
	return h.step(func(_ *http.Request, d *wizard.Draft) error { return h.wiz.Next(d) })
}

func (h *WizardHTTP) Back() http.HandlerFunc {
	return h.step(func(_ *http.Request, d *wizard.Draft) error { return h.wiz.Back(d) })
}

// POST /api/wizard/{id}/submit
// A failed submission is saved so it can be retried with the same call. A
// rejected one (wrong step, already claimed) leaves the stored draft alone.
func (h *WizardHTTP) Submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := h.load(w, r)
		if !ok {
			return
		}
		c, err := h.wiz.Submit(r.Context(), d)
		if err == nil || d.Step == wizard.StepFailed {
			if saveErr := h.drafts.Save(r.Context(), d); saveErr != nil {
				h.log.Error().Err(saveErr).Str("draft", d.ID).Msg("save draft after submit")
			}
		}
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusCreated, map[string]any{"complaint": c, "draft": d.View()})
	}
}
