package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"asterbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func setupMockServer(t *testing.T) (*http.ServeMux, *LeadsService) {
	t.Helper()
	ctx := context.Background()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	srv, err := sheets.NewService(ctx, option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)
	return mux, NewLeadsServiceWith(srv, "leads_tid", "")
}

func TestLeadsService_AppendLead(t *testing.T) {
	mux, s := setupMockServer(t)

	var got sheets.ValueRange
	mux.HandleFunc("/v4/spreadsheets/leads_tid/values/Leads!A:A:append", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(sheets.AppendValuesResponse{
			Updates: &sheets.UpdateValuesResponse{UpdatedRange: "Leads!A2:F2"},
		})
	})

	lead := &models.Lead{
		UserID:    42,
		Username:  "aset",
		Name:      "Асет",
		Phone:     "77001234567",
		City:      "Алматы",
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.AppendLead(context.Background(), lead))

	require.Len(t, got.Values, 1)
	assert.Equal(t, []interface{}{"2024-05-01 10:00:00", float64(42), "aset", "Асет", "77001234567", "Алматы"}, got.Values[0])
}

func TestLeadsService_AppendLeadErrors(t *testing.T) {
	mux, s := setupMockServer(t)
	mux.HandleFunc("/v4/spreadsheets/leads_tid/values/Leads!A:A:append", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	assert.Error(t, s.AppendLead(context.Background(), nil))
	assert.Error(t, s.AppendLead(context.Background(), &models.Lead{UserID: 1}))
}

func TestLeadsService_TestConnection(t *testing.T) {
	mux, s := setupMockServer(t)
	mux.HandleFunc("/v4/spreadsheets/leads_tid/values/Leads!A1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"created_at"}}})
	})
	assert.NoError(t, s.TestConnection(context.Background()))
}

func TestServiceAccountEmail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"client_email":"bot@project.iam.gserviceaccount.com"}`), 0o600))

	email, err := ServiceAccountEmail(path)
	require.NoError(t, err)
	assert.Equal(t, "bot@project.iam.gserviceaccount.com", email)

	_, err = ServiceAccountEmail(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
