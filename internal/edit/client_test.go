package edit

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 99, A: 255})
		}
	}
	return img
}

func clientFor(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Endpoint = srv.URL
	return NewClient(cfg)
}

func TestClientEdit(t *testing.T) {
	edited := testImage(32, 24)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			t.Errorf("parsing multipart request: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		for _, field := range []string{"image", "mask"} {
			f, _, err := r.FormFile(field)
			if err != nil {
				t.Errorf("missing %q part: %v", field, err)
				continue
			}
			img, err := png.Decode(f)
			f.Close()
			if err != nil {
				t.Errorf("decoding %q part: %v", field, err)
				continue
			}
			if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
				t.Errorf("%q part is %v, want 32x24", field, b)
			}
		}

		w.Header().Set("Content-Type", "image/png")
		var buf bytes.Buffer
		png.Encode(&buf, edited)
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	got, err := clientFor(t, srv).Edit(context.Background(), testImage(32, 24), image.NewGray(image.Rect(0, 0, 32, 24)))
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if b := got.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Errorf("result bounds = %v, want 32x24", b)
	}
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "image/png")
		png.Encode(w, testImage(8, 8))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Endpoint = srv.URL
	cfg.APIKey = "sekrit"

	_, err := NewClient(cfg).Edit(context.Background(), testImage(8, 8), image.NewGray(image.Rect(0, 0, 8, 8)))
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if gotAuth != "Bearer sekrit" {
		t.Errorf("Authorization = %q, want Bearer sekrit", gotAuth)
	}
}

func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := clientFor(t, srv).Edit(context.Background(), testImage(8, 8), image.NewGray(image.Rect(0, 0, 8, 8)))
	if err == nil {
		t.Fatal("Edit returned nil error on 429")
	}
}

func TestClientMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not an image"))
	}))
	defer srv.Close()

	_, err := clientFor(t, srv).Edit(context.Background(), testImage(8, 8), image.NewGray(image.Rect(0, 0, 8, 8)))
	if err == nil {
		t.Fatal("Edit returned nil error on garbage payload")
	}
}

func TestClientRejectsMismatchedMask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent for a mismatched mask")
	}))
	defer srv.Close()

	_, err := clientFor(t, srv).Edit(context.Background(), testImage(32, 24), image.NewGray(image.Rect(0, 0, 10, 10)))
	if err == nil {
		t.Fatal("Edit accepted a mismatched mask")
	}
}

func TestClientNilImage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Endpoint = "http://localhost:0"
	if _, err := NewClient(cfg).Edit(context.Background(), nil, nil); err == nil {
		t.Fatal("Edit accepted a nil image")
	}
}
