package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-portal/internal/apperr"
	"civic-portal/internal/events"
	"civic-portal/internal/models"
	"civic-portal/internal/wizard"
)

func TestWriteErr_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		body string
	}{
		{apperr.Invalid("status", "bad"), http.StatusBadRequest, `{"error":"status: bad"}`},
		{apperr.ErrNotFound, http.StatusNotFound, `{"error":"not found"}`},
		{wizard.ErrAlreadySubmitted, http.StatusConflict, `{"error":"draft already submitted"}`},
		{apperr.Storage("insert", errors.New("dsn leaked")), http.StatusInternalServerError, `{"error":"internal error"}`},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeErr(rec, zerolog.Nop(), tc.err)
		assert.Equal(t, tc.code, rec.Code)
		assert.JSONEq(t, tc.body, rec.Body.String())
	}
}

func TestComplaintPatch_Normalizes(t *testing.T) {
	s, p, c := "Registered", "HIGH", "street light"
	u, err := complaintPatch{Status: &s, Priority: &p, Category: &c}.toUpdate()
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, *u.Status)
	assert.Equal(t, models.PriorityHigh, *u.Priority)
	assert.Equal(t, models.CategoryStreetLight, *u.Category)

	bad := "closed"
	_, err = complaintPatch{Status: &bad}.toUpdate()
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)

	empty := ""
	_, err = complaintPatch{Priority: &empty}.toUpdate()
	assert.ErrorAs(t, err, &ve)
}

func TestEventsWS_StreamsPublishedEvents(t *testing.T) {
	bus := events.NewMemoryBus()
	srv := httptest.NewServer(NewEventsWS(bus, "http://localhost:3000", zerolog.Nop()).Serve())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	c := &models.Complaint{ID: "c-1", ReporterID: "u-1", Status: models.StatusPending, Category: models.CategoryGarbage}
	// the subscription is registered after the upgrade, so keep publishing
	// until the client has read one event
	done := make(chan struct{})
	defer close(done)
	go func() {
		tick := time.NewTicker(20 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				_ = bus.Publish(context.Background(), events.FromComplaint(events.ComplaintCreated, c))
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var got events.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "c-1", got.ComplaintID)
	assert.Equal(t, events.ComplaintCreated, got.Kind)
}

func TestEventsWS_RejectsForeignOrigin(t *testing.T) {
	srv := httptest.NewServer(NewEventsWS(events.NewMemoryBus(), "http://localhost:3000", zerolog.Nop()).Serve())
	defer srv.Close()

	hdr := http.Header{"Origin": {"http://evil.example"}}
	_, res, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), hdr)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}
