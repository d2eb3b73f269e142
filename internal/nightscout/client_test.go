package nightscout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// sha1 of "secret-token", precomputed for header assertions.
const secretTokenSHA1 = "1ae0af3fe72b3ba394f9fa95a6cffc090d726c23"

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL, "secret-token")
}

// TestReadAuth verifies reads carry the token query argument and no
// api-secret header.
func TestReadAuth(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("token"); got != "secret-token" {
			t.Errorf("token arg = %q, want secret-token", got)
		}
		if got := r.Header.Get("api-secret"); got != "" {
			t.Errorf("api-secret header = %q, want empty on reads", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"_id":"p1","mills":"1000"}]`))
	})

	profiles, err := c.Profiles(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 1 || profiles[0].ID != "p1" {
		t.Errorf("profiles = %+v, want one with ID p1", profiles)
	}
}

// TestWriteAuth verifies writes carry the SHA-1 api-secret header.
func TestWriteAuth(t *testing.T) {
	var gotSecret, gotMethod, gotPath string
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("api-secret")
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"_id":"p2","mills":"2000"}`))
	})

	out, err := c.UpsertProfile(context.Background(), Profile{Mills: "2000"})
	if err != nil {
		t.Fatal(err)
	}
	if gotSecret != secretTokenSHA1 {
		t.Errorf("api-secret = %q, want %q", gotSecret, secretTokenSHA1)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/v1/profile" {
		t.Errorf("request = %s %s, want PUT /api/v1/profile", gotMethod, gotPath)
	}
	if out.ID != "p2" {
		t.Errorf("returned ID = %q, want p2", out.ID)
	}
}

// TestAddTreatmentsBody verifies the treatment batch is posted as a JSON
// array with omitempty keeping absent optionals off the wire.
func TestAddTreatmentsBody(t *testing.T) {
	var body []map[string]any
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	})

	insulin := 2.5
	_, err := c.AddTreatments(context.Background(), []Treatment{{
		CreatedAt: "2023-04-01T12:00:00Z",
		EnteredBy: "Tidepool",
		Insulin:   &insulin,
	}})
	if err != nil {
		t.Fatal(err)
	}

	if len(body) != 1 {
		t.Fatalf("posted %d treatments, want 1", len(body))
	}
	if body[0]["insulin"] != 2.5 {
		t.Errorf("insulin = %v, want 2.5", body[0]["insulin"])
	}
	if _, present := body[0]["carbs"]; present {
		t.Error("carbs should be omitted when unset")
	}
	if _, present := body[0]["eventType"]; present {
		t.Error("eventType should be omitted when unset")
	}
}

// TestStatusUnits verifies the configured unit is read from status.json.
func TestStatusUnits(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/status.json" {
			t.Errorf("path = %q, want /api/v1/status.json", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"settings":{"units":"mmol/l"}}`))
	})

	status, err := c.Status(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if status.Settings.Units != "mmol/l" {
		t.Errorf("units = %q, want mmol/l", status.Settings.Units)
	}
}

// TestErrorStatus verifies non-2xx responses surface as errors.
func TestErrorStatus(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	if err := c.AddEntries(context.Background(), []Entry{{Type: "sgv", Sgv: 100}}); err == nil {
		t.Fatal("expected error for 401 response")
	}
}
