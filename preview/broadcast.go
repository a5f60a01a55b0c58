package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

const jpegQuality = 80

// Broadcaster fans composited preview frames out to HTTP subscribers as an
// MJPEG stream. Slow subscribers drop frames; the render loop never blocks
// on a consumer.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan []byte]struct{})}
}

// Subscribe registers a frame consumer. The returned cancel function must be
// called when the consumer goes away.
func (b *Broadcaster) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 1)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	cancel := func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish encodes the frame once and offers it to every subscriber,
// dropping it for any subscriber whose buffer is full.
func (b *Broadcaster) Publish(frame *image.RGBA) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return errors.Wrap(err, "encode preview frame")
	}
	encoded := buf.Bytes()
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- encoded:
		default:
		}
	}
	return nil
}

// ServeHTTP streams frames as multipart/x-mixed-replace MJPEG.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	frames, cancel := b.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	for {
		select {
		case <-r.Context().Done():
			return
		case frame := <-frames:
			if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(frame)); err != nil {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			if _, err := fmt.Fprint(w, "\r\n"); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// Router builds the preview HTTP surface.
func Router(b *Broadcaster) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/stream", b).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}).Methods(http.MethodGet)
	return r
}
