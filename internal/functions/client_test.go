package functions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateFollowUpReminders_SendsIntervalsAndIdentity(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "anon-key")
	userID := uuid.New()
	scoreID := uuid.New()
	pitch := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	err := c.CreateFollowUpReminders(context.Background(), userID, scoreID, pitch, []int{5, 10, 20})
	require.NoError(t, err)

	require.Equal(t, "/functions/v1/createFollowUpReminders", gotPath)
	require.Equal(t, "Bearer anon-key", gotAuth)
	require.Equal(t, userID.String(), gotBody["userId"])
	require.Equal(t, scoreID.String(), gotBody["scoreId"])
	require.Equal(t, "2026-03-14T09:30:00Z", gotBody["pitchDate"])
	require.Equal(t, []interface{}{float64(5), float64(10), float64(20)}, gotBody["intervals"])
}

func TestInvoke_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	err := c.CreateFollowUpReminders(context.Background(), uuid.New(), uuid.New(), time.Now(), []int{7, 14, 21})
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestGenerateText_DecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/functions/v1/generateSpeakerText", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "pitch", body["kind"])
		json.NewEncoder(w).Encode(map[string]string{"text": "Dear organizer,"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	text, err := c.GenerateText(context.Background(), "pitch", GenerateRequest{EventName: "GopherCon"})
	require.NoError(t, err)
	require.Equal(t, "Dear organizer,", text)
}

func TestGenerateEmbedding_ReturnsVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string][]float32{"embedding": {0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	vec, err := c.GenerateEmbedding(context.Background(), "cloud native talks")
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}
