package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── local (afero) ────────────────────────────────────────────────────────────

func TestLocalStorage_UploadRenameDelete(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := NewLocalFs(fsys, "http://localhost:8080/uploads/")
	ctx := context.Background()

	obj, err := s.Upload(ctx, "tenant-x/10-11-25/products/7/img1.jpg", strings.NewReader("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "tenant-x/10-11-25/products/7/img1.jpg", obj.PublicID)
	assert.Equal(t, "http://localhost:8080/uploads/tenant-x/10-11-25/products/7/img1.jpg", obj.URL)

	// No sobrescribe.
	_, err = s.Upload(ctx, obj.PublicID, strings.NewReader("otro"), "image/jpeg")
	assert.Error(t, err)

	moved, err := s.Rename(ctx, obj.PublicID, "tenant-x/03-12-25/inactive/7/img1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "tenant-x/03-12-25/inactive/7/img1.jpg", moved.PublicID)

	exists, _ := afero.Exists(fsys, obj.PublicID)
	assert.False(t, exists)
	content, err := afero.ReadFile(fsys, moved.PublicID)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(content))

	require.NoError(t, s.Delete(ctx, []string{moved.PublicID, "nao/existe.jpg"}))
	exists, _ = afero.Exists(fsys, moved.PublicID)
	assert.False(t, exists)
}

func TestLocalStorage_RenameMissingFails(t *testing.T) {
	s := NewLocalFs(afero.NewMemMapFs(), "http://x")
	_, err := s.Rename(context.Background(), "a/b.jpg", "c/b.jpg")
	assert.Error(t, err)
}

func TestLocalStorage_RejectsPathTraversal(t *testing.T) {
	s := NewLocalFs(afero.NewMemMapFs(), "http://x")
	_, err := s.Upload(context.Background(), "../fora.jpg", strings.NewReader("x"), "image/jpeg")
	assert.Error(t, err)
}

// ── cloudinary (SDK falso) ───────────────────────────────────────────────────

type fakeCloudinary struct {
	uploads   []uploader.UploadParams
	renames   []uploader.RenameParams
	deletes   [][]string
	renameErr string
}

func (f *fakeCloudinary) Upload(_ context.Context, file io.Reader, p uploader.UploadParams) (*uploader.UploadResult, error) {
	_, _ = io.ReadAll(file)
	f.uploads = append(f.uploads, p)
	return &uploader.UploadResult{PublicID: p.PublicID, SecureURL: "https://res.cloudinary.test/" + p.PublicID}, nil
}

func (f *fakeCloudinary) Rename(_ context.Context, p uploader.RenameParams) (*uploader.RenameResult, error) {
	f.renames = append(f.renames, p)
	if f.renameErr != "" {
		return &uploader.RenameResult{Error: map[string]interface{}{"message": f.renameErr}}, nil
	}
	return &uploader.RenameResult{BriefAssetResult: api.BriefAssetResult{PublicID: p.ToPublicID, SecureURL: "https://res.cloudinary.test/" + p.ToPublicID}}, nil
}

func (f *fakeCloudinary) DeleteAssets(_ context.Context, p admin.DeleteAssetsParams) (*admin.DeleteAssetsResult, error) {
	f.deletes = append(f.deletes, p.PublicIDs)
	return &admin.DeleteAssetsResult{}, nil
}

func TestCloudinaryStorage_UploadAndRename(t *testing.T) {
	fake := &fakeCloudinary{}
	s := &CloudinaryStorage{api: fake}
	ctx := context.Background()

	obj, err := s.Upload(ctx, "tenant-x/10-11-25/products/7/img1.jpg", strings.NewReader("x"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.test/tenant-x/10-11-25/products/7/img1.jpg", obj.URL)
	require.Len(t, fake.uploads, 1)
	assert.False(t, *fake.uploads[0].Overwrite)

	moved, err := s.Rename(ctx, obj.PublicID, "tenant-x/03-12-25/inactive/7/img1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "tenant-x/03-12-25/inactive/7/img1.jpg", moved.PublicID)
}

func TestCloudinaryStorage_RenameErrorInBody(t *testing.T) {
	s := &CloudinaryStorage{api: &fakeCloudinary{renameErr: "Resource not found"}}
	_, err := s.Rename(context.Background(), "a/1.jpg", "b/1.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Resource not found")
}

func TestCloudinaryStorage_DeleteInBatches(t *testing.T) {
	fake := &fakeCloudinary{}
	s := &CloudinaryStorage{api: fake}
	ids := make([]string, 250)
	for i := range ids {
		ids[i] = fmt.Sprintf("t/01-01-25/products/1/%d.jpg", i)
	}
	require.NoError(t, s.Delete(context.Background(), ids))
	require.Len(t, fake.deletes, 3)
	assert.Len(t, fake.deletes[0], 100)
	assert.Len(t, fake.deletes[2], 50)
}

// ── cloudinary (SDK real contra un servidor HTTP local) ─────────────────────

type cloudinaryCalls struct {
	mu      sync.Mutex
	uploads map[string]string // public_id -> contenido
	renames [][2]string
	deletes []string
}

// cloudinaryServer responde como la Upload API y la Admin API para la cuenta "demo".
func cloudinaryServer(t *testing.T) (*httptest.Server, *cloudinaryCalls) {
	t.Helper()
	calls := &cloudinaryCalls{uploads: map[string]string{}}
	mux := http.NewServeMux()

	mux.HandleFunc("/v1_1/demo/auto/upload", func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		publicID := r.FormValue("public_id")
		file, _, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		content, _ := io.ReadAll(file)

		calls.mu.Lock()
		calls.uploads[publicID] = string(content)
		calls.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{
			"public_id":  publicID,
			"secure_url": "https://res.cloudinary.test/demo/image/upload/" + publicID,
		})
	})

	mux.HandleFunc("/v1_1/demo/image/rename", func(w http.ResponseWriter, r *http.Request) {
		// El SDK envía el formulario sin Content-Type: se decodifica a mano.
		raw, _ := io.ReadAll(r.Body)
		form, err := url.ParseQuery(string(raw))
		if !assert.NoError(t, err) {
			return
		}
		from, to := form.Get("from_public_id"), form.Get("to_public_id")
		if from == "nao/existe.jpg" {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "Resource not found - " + from}})
			return
		}
		calls.mu.Lock()
		calls.renames = append(calls.renames, [2]string{from, to})
		calls.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{
			"public_id":  to,
			"secure_url": "https://res.cloudinary.test/demo/image/upload/" + to,
		})
	})

	mux.HandleFunc("/v1_1/demo/resources/image/upload", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		var body struct {
			PublicIDs string `json:"public_ids"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		deleted := map[string]string{}
		calls.mu.Lock()
		for _, id := range strings.Split(body.PublicIDs, ",") {
			calls.deletes = append(calls.deletes, id)
			deleted[id] = "deleted"
		}
		calls.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"deleted": deleted})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, calls
}

func newTestCloudinary(t *testing.T, srv *httptest.Server) *CloudinaryStorage {
	t.Helper()
	cfg, err := config.NewFromParams("demo", "key", "secret")
	require.NoError(t, err)
	cfg.API.UploadPrefix = srv.URL
	s, err := newCloudinaryFromConfig(cfg)
	require.NoError(t, err)
	return s
}

func TestCloudinaryStorage_SDKContraServidor(t *testing.T) {
	srv, calls := cloudinaryServer(t)
	s := newTestCloudinary(t, srv)
	ctx := context.Background()

	obj, err := s.Upload(ctx, "tenant-x/10-11-25/products/7/img1.jpg", strings.NewReader("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "tenant-x/10-11-25/products/7/img1.jpg", obj.PublicID)
	assert.Equal(t, "https://res.cloudinary.test/demo/image/upload/tenant-x/10-11-25/products/7/img1.jpg", obj.URL)

	moved, err := s.Rename(ctx, obj.PublicID, "tenant-x/03-12-25/inactive/7/img1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "tenant-x/03-12-25/inactive/7/img1.jpg", moved.PublicID)
	assert.Contains(t, moved.URL, "/inactive/7/img1.jpg")

	_, err = s.Rename(ctx, "nao/existe.jpg", "b/1.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Resource not found - nao/existe.jpg")

	require.NoError(t, s.Delete(ctx, []string{moved.PublicID, "outra/foto.jpg"}))

	calls.mu.Lock()
	defer calls.mu.Unlock()
	assert.Equal(t, "jpeg", calls.uploads["tenant-x/10-11-25/products/7/img1.jpg"])
	assert.Equal(t, [][2]string{{"tenant-x/10-11-25/products/7/img1.jpg", "tenant-x/03-12-25/inactive/7/img1.jpg"}}, calls.renames)
	assert.Equal(t, []string{"tenant-x/03-12-25/inactive/7/img1.jpg", "outra/foto.jpg"}, calls.deletes)
}

// ── decorador con métricas ───────────────────────────────────────────────────

type recorded struct {
	op  string
	err error
}

type fakeRecorder struct{ calls []recorded }

func (r *fakeRecorder) ObserveStorage(op string, _ time.Duration, err error) {
	r.calls = append(r.calls, recorded{op, err})
}

func TestInstrument_RecordsEveryOperation(t *testing.T) {
	rec := &fakeRecorder{}
	s := Instrument(NewLocalFs(afero.NewMemMapFs(), "http://x"), rec)
	ctx := context.Background()

	_, err := s.Upload(ctx, "a/1.jpg", strings.NewReader("x"), "image/jpeg")
	require.NoError(t, err)
	_, err = s.Rename(ctx, "nao/existe.jpg", "b/1.jpg")
	require.Error(t, err)
	require.NoError(t, s.Delete(ctx, []string{"a/1.jpg"}))

	require.Len(t, rec.calls, 3)
	assert.Equal(t, "upload", rec.calls[0].op)
	assert.NoError(t, rec.calls[0].err)
	assert.Equal(t, "rename", rec.calls[1].op)
	assert.Error(t, rec.calls[1].err)
	assert.Equal(t, "delete", rec.calls[2].op)
}

func TestInstrument_NilRecorderReturnsInner(t *testing.T) {
	inner := NewLocalFs(afero.NewMemMapFs(), "http://x")
	assert.Same(t, inner, Instrument(inner, nil))
}
