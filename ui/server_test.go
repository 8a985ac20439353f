package ui

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"studyviz/adapters/memory"
	"studyviz/domain/dataset"
	"studyviz/domain/grouping"
	"studyviz/internal/api"
	"studyviz/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := dataset.NewStore(dataset.Table{
		Fields: []string{"student_id", "study_hours_per_day", "sleep_hours", "internet_quality", "exam_score"},
		Rows: [][]string{
			{"S1", "1.0", "6.0", "Good", "40"},
			{"S2", "3.5", "4.0", "Poor", "55"},
			{"S3", "1.5", "9.0", "Good", "48"},
			{"S4", "6.0", "7.0", "Average", "90"},
			{"S5", "3.0", "7.5", "Good", "70"},
			{"S6", "0.5", "6.5", "Poor", "35"},
		},
		LabelField: "student_id",
		Source:     "students.csv",
	})
	require.NoError(t, err)

	hub := api.NewHub(api.DefaultHubOptions())
	t.Cleanup(hub.Close)
	manager := session.NewManager(store, grouping.Default(), session.Options{
		Sink:    api.NewHubView(hub),
		OnClose: hub.DropSession,
		Views:   memory.NewViewStateRepository(),
	})
	return NewServer(manager, hub, Options{KeepAlive: time.Second})
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createSession(t *testing.T, s *Server) string {
	t.Helper()
	w := do(t, s, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, ok := decode(t, w)["session_id"].(string)
	require.True(t, ok)
	return id
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(6), body["records"])
}

func TestDataset_Describe(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/dataset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "students.csv", body["source"])
	assert.Equal(t, "student_id", body["label_field"])
	assert.ElementsMatch(t, []interface{}{"study_hours_per_day", "sleep_hours", "exam_score"}, body["dimensions"])
}

func TestSessions_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s)

	w := do(t, s, http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode(t, w)
	assert.Equal(t, id, snap["session_id"])
	assert.Len(t, snap["filter_ids"], 6)

	w = do(t, s, http.MethodGet, "/api/sessions", nil)
	assert.Len(t, decode(t, w)["sessions"], 1)

	w = do(t, s, http.MethodDelete, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w)["code"])
}

func TestEvents_FilterTableExportReport(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s)
	base := "/api/sessions/" + id

	w := do(t, s, http.MethodPost, base+"/events", map[string]interface{}{
		"type": "node_activated",
		"path": []string{"Low Study", "Normal Sleep"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(2), decode(t, w)["filter_size"])

	w = do(t, s, http.MethodGet, base+"/table?page_size=1&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Equal(t, float64(2), page["total"])
	assert.Equal(t, float64(2), page["pages"])
	rows := page["rows"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "S6", rows[0].(map[string]interface{})["label"])

	w = do(t, s, http.MethodGet, base+"/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "student_id,study_hours_per_day,sleep_hours,internet_quality,exam_score", lines[0])
	assert.Equal(t, "S1,1.0,6.0,Good,40", lines[1])

	w = do(t, s, http.MethodGet, base+"/export?format=xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	w = do(t, s, http.MethodGet, base+"/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, base+"/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "2 of 6 records")

	w = do(t, s, http.MethodGet, base+"/report?format=html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<table>")
}

func TestEvents_Errors(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s)
	base := "/api/sessions/" + id

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"unknown node", map[string]interface{}{"type": "node_activated", "path": []string{"Extreme Study"}}, http.StatusNotFound, "NOT_FOUND"},
		{"unknown record", map[string]interface{}{"type": "point_activated", "record_id": "nobody"}, http.StatusNotFound, "NOT_FOUND"},
		{"malformed body", "not an event", http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, base+"/events", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode(t, w)["code"])
		})
	}

	w := do(t, s, http.MethodGet, base+"/table?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParams(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s)
	path := "/api/sessions/" + id + "/params"

	w := do(t, s, http.MethodPut, path, map[string]interface{}{"bin_count": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	params := decode(t, w)["params"].(map[string]interface{})
	assert.Equal(t, float64(5), params["bin_count"])

	w = do(t, s, http.MethodPut, path, map[string]interface{}{"primary_grouping": "shoe_size"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNKNOWN_FIELD", decode(t, w)["code"])

	w = do(t, s, http.MethodPut, path, map[string]interface{}{"bin_count": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSavedViews(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s)
	base := "/api/sessions/" + id

	do(t, s, http.MethodPost, base+"/events", map[string]interface{}{"type": "node_activated", "path": []string{"Low Study"}})
	do(t, s, http.MethodPost, base+"/events", map[string]interface{}{"type": "point_activated", "record_id": "student_id_3"})

	w := do(t, s, http.MethodPost, base+"/views", map[string]string{"name": "low study"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	viewID := decode(t, w)["id"].(string)

	w = do(t, s, http.MethodPost, base+"/views", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/api/views", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["views"], 1)

	other := createSession(t, s)
	w = do(t, s, http.MethodPost, "/api/sessions/"+other+"/views/"+viewID+"/restore", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(3), decode(t, w)["filter_size"])

	w = do(t, s, http.MethodGet, "/api/sessions/"+other, nil)
	snap := decode(t, w)
	assert.Equal(t, []interface{}{"Low Study"}, snap["active_path"])
	assert.Len(t, snap["pins"], 1)

	w = do(t, s, http.MethodDelete, "/api/views/"+viewID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, http.MethodDelete, "/api/views/"+viewID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func upload(t *testing.T, s *Server, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/dataset", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestDatasetUpload_ReloadsSessions(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s)

	w := upload(t, s, "clubs.csv", "name,club,score,hours\nAnn,Chess,70,2\nBo,Drama,80,4\nCy,Chess,65,1\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ds := decode(t, w)["dataset"].(map[string]interface{})
	assert.Equal(t, float64(3), ds["records"])
	assert.Equal(t, "name", ds["label_field"])

	w = do(t, s, http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode(t, w)
	assert.Len(t, snap["filter_ids"], 3)
	assert.Equal(t, "clubs.csv", snap["dataset"].(map[string]interface{})["source"])

	w = upload(t, s, "notes.txt", "a,b\n1,2\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(t, s, "empty.csv", "a,b\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", decode(t, w)["code"])
}

func TestStream_SendsSnapshotFirst(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/sessions/"+id+"/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event:snapshot\n", line)
}

func TestPaginate(t *testing.T) {
	records := make([]*dataset.Record, 5)
	page := paginate(records, 2, 2)
	assert.Equal(t, 3, page.Pages)
	assert.Len(t, page.Rows, 2)

	page = paginate(records, 3, 2)
	assert.Len(t, page.Rows, 1)

	page = paginate(records, 4, 2)
	assert.Empty(t, page.Rows)
	assert.Equal(t, 5, page.Total)

	page = paginate(nil, 1, 10)
	assert.Equal(t, 0, page.Pages)
	assert.NotNil(t, page.Rows)

	page = paginate(make([]*dataset.Record, 3), 368934881474191034, 25)
	assert.Empty(t, page.Rows, "page numbers that overflow the offset are past the end")
	assert.Equal(t, 1, page.Pages)
}
