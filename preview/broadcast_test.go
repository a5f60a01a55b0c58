package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testFrame(c color.RGBA) *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for i := 0; i < len(frame.Pix); i += 4 {
		frame.Pix[i] = c.R
		frame.Pix[i+1] = c.G
		frame.Pix[i+2] = c.B
		frame.Pix[i+3] = 255
	}
	return frame
}

func TestPublishDeliversDecodableJPEG(t *testing.T) {
	b := NewBroadcaster()
	frames, cancel := b.Subscribe()
	defer cancel()

	if err := b.Publish(testFrame(color.RGBA{R: 200, G: 40, B: 40, A: 255})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case raw := <-frames:
		img, err := jpeg.Decode(bytes.NewReader(raw))
		if err != nil {
			t.Fatalf("subscriber received an undecodable frame: %v", err)
		}
		if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 24 {
			t.Errorf("unexpected frame dimensions: %v", img.Bounds())
		}
	default:
		t.Fatal("subscriber received no frame")
	}
}

func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	b := NewBroadcaster()
	_, cancel := b.Subscribe()
	defer cancel()

	// The subscriber never drains; repeated publishes must drop, not block
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			b.Publish(testFrame(color.RGBA{R: uint8(i * 20), A: 255}))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestCancelledSubscriberStopsReceiving(t *testing.T) {
	b := NewBroadcaster()
	frames, cancel := b.Subscribe()
	cancel()

	if err := b.Publish(testFrame(color.RGBA{G: 255, A: 255})); err != nil {
		t.Fatal(err)
	}
	select {
	case <-frames:
		t.Fatal("cancelled subscriber still received a frame")
	default:
	}
}

func TestRouterHealthz(t *testing.T) {
	srv := httptest.NewServer(Router(NewBroadcaster()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("unexpected status %d", resp.StatusCode)
	}
}

func TestStreamEmitsMultipartFrames(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(Router(b))
	defer srv.Close()

	go func() {
		for i := 0; i < 50; i++ {
			b.Publish(testFrame(color.RGBA{B: 180, A: 255}))
			time.Sleep(10 * time.Millisecond)
		}
	}()

	resp, err := http.Get(srv.URL + "/stream")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=frame" {
		t.Fatalf("unexpected content type %q", ct)
	}
	buf := make([]byte, 1024)
	n, err := resp.Body.Read(buf)
	if err != nil {
		t.Fatalf("stream read failed: %v", err)
	}
	if !bytes.Contains(buf[:n], []byte("--frame")) {
		t.Error("stream body missing multipart boundary")
	}
}
