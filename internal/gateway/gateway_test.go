package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webprint-client/config"
	"webprint-client/internal/failure"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(&config.APIConfig{BaseURL: server.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestClient_LoginKeepsSessionCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "jdoe@students.calvin.edu", r.PostForm.Get("email"))
		assert.Equal(t, "hunter2", r.PostForm.Get("password"))
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
	})
	mux.HandleFunc("GET /api/uniflowstatus", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		if err != nil || cookie.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"budget": 12.5,
			"queue": []map[string]any{
				{"job_id": "17", "name": "essay.pdf", "pages": 3, "copies": 2, "price": 0.15, "printer_name": "lib-201", "date": "2014-03-14 10:22:00", "color": false},
			},
		})
	})
	c := newTestClient(t, mux)

	_, err := c.Status(context.Background())
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))

	require.NoError(t, c.Login(context.Background(), "jdoe@students.calvin.edu", "hunter2"))

	status, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12.5, status.Budget)
	require.Len(t, status.Queue, 1)
	assert.Equal(t, QueueItem{JobID: "17", Name: "essay.pdf", Pages: 3, Copies: 2, Price: 0.15, PrinterName: "lib-201", Date: "2014-03-14 10:22:00"}, status.Queue[0])
}

func TestClient_LogoutAcceptsRedirect(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/logout", r.URL.Path)
		http.Redirect(w, r, "/", http.StatusFound)
	}))

	assert.NoError(t, c.Logout(context.Background()))
}

func TestClient_UploadReportsProgress(t *testing.T) {
	content := strings.Repeat("x", 64*1024)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "report.pdf", header.Filename)
		body, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, len(content), len(body))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(UploadResponse{FileID: "doc-1"})
	}))

	var last, calls int64
	fileID, err := c.Upload(context.Background(), "report.pdf", int64(len(content)), strings.NewReader(content), func(loaded, total int64) {
		assert.GreaterOrEqual(t, loaded, last)
		assert.Equal(t, int64(len(content)), total)
		last = loaded
		calls++
	})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", fileID)
	assert.Equal(t, int64(len(content)), last)
	assert.Positive(t, calls)
}

func TestClient_UploadFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		http.Error(w, "bad file", http.StatusBadRequest)
	}))

	_, err := c.Upload(context.Background(), "a.txt", 3, strings.NewReader("abc"), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Contains(t, err.Error(), "bad file")
}

func TestClient_PrintPostsForm(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/api/print", r.URL.Path)
		assert.Equal(t, "doc-1", r.PostForm.Get("file_id"))
		assert.Equal(t, "true", r.PostForm.Get("color"))
		assert.Equal(t, "false", r.PostForm.Get("double_sided"))
		assert.Equal(t, "true", r.PostForm.Get("staple"))
		assert.Equal(t, "true", r.PostForm.Get("collate"))
		assert.Equal(t, "3", r.PostForm.Get("copies"))
		w.WriteHeader(http.StatusCreated)
	}))

	err := c.Print(context.Background(), PrintRequest{FileID: "doc-1", Color: true, Staple: true, Collate: true, Copies: 3})
	assert.NoError(t, err)
}

func TestClient_DeleteJobEscapesID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/deletejob/a%2Fb", r.URL.EscapedPath())
	}))

	assert.NoError(t, c.DeleteJob(context.Background(), "a/b"))
}

func TestClient_CloudPrint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cloudprintstatus", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"haveCloudPrintPermission":true,"isPrinterInstalled":null,"cloudPrintPermissionUrl":"https://auth"}`))
	})
	mux.HandleFunc("POST /api/revokecloudprint", func(w http.ResponseWriter, r *http.Request) {})
	c := newTestClient(t, mux)

	status, err := c.CloudPrintStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.HaveCloudPrintPermission)
	assert.Nil(t, status.IsPrinterInstalled)
	assert.Equal(t, "https://auth", status.CloudPrintPermissionURL)
	assert.NoError(t, c.RevokeCloudPrint(context.Background()))
}

func TestClassify(t *testing.T) {
	status := func(code int) error { return &StatusError{Op: "op", StatusCode: code} }

	testCases := []struct {
		name     string
		err      error
		rejected error
		codes    []int
		want     error
	}{
		{"login unauthorized", status(401), failure.ErrAuth, []int{400, 401}, failure.ErrAuth},
		{"login bad request", status(400), failure.ErrAuth, []int{400, 401}, failure.ErrAuth},
		{"refresh unauthorized", status(401), failure.ErrSessionExpired, []int{401}, failure.ErrSessionExpired},
		{"refresh bad request", status(400), failure.ErrSessionExpired, []int{401}, failure.ErrTransient},
		{"backend down", status(504), failure.ErrSessionExpired, []int{401}, failure.ErrBackendUnavailable},
		{"bad gateway", status(502), failure.ErrSessionExpired, []int{401}, failure.ErrTransient},
		{"no response", errors.New("connection refused"), failure.ErrAuth, []int{401}, failure.ErrTransient},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.err, tc.rejected, tc.codes...)
			assert.ErrorIs(t, got, tc.want)
			assert.ErrorIs(t, got, tc.err)
		})
	}

	assert.NoError(t, Classify(nil, failure.ErrAuth))
}
