package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"keysync/internal/logging"
)

type pathStore struct {
	mu       sync.RWMutex
	docs     map[string]json.RawMessage
	watchers map[*watcher]struct{}
}

type watcher struct {
	path string
	ch   chan json.RawMessage
}

func newPathStore() *pathStore {
	return &pathStore{
		docs:     make(map[string]json.RawMessage),
		watchers: make(map[*watcher]struct{}),
	}
}

func (s *pathStore) put(path string, doc json.RawMessage) {
	s.mu.Lock()
	s.docs[path] = doc
	notify := make(map[*watcher]json.RawMessage)
	for w := range s.watchers {
		if path == w.path || strings.HasPrefix(path, w.path+"/") {
			if doc, ok := s.lookupLocked(w.path); ok {
				notify[w] = doc
			}
		}
	}
	s.mu.Unlock()

	for w, doc := range notify {
		select {
		case w.ch <- doc:
		default: // slow subscriber, drop
		}
	}
}

// lookupLocked resolves path to either its exact document or, when only
// descendants exist, a map of immediate child segment to document.
func (s *pathStore) lookupLocked(path string) (json.RawMessage, bool) {
	if doc, ok := s.docs[path]; ok {
		return doc, true
	}
	children := make(map[string]json.RawMessage)
	prefix := path + "/"
	for k, doc := range s.docs {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		child := strings.SplitN(k[len(prefix):], "/", 2)[0]
		children[child] = doc
	}
	if len(children) == 0 {
		return nil, false
	}
	out, err := json.Marshal(children)
	if err != nil {
		return nil, false
	}
	return out, true
}

func (s *pathStore) get(path string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(path)
}

func (s *pathStore) subscribe(path string) *watcher {
	w := &watcher{path: path, ch: make(chan json.RawMessage, 8)}
	s.mu.Lock()
	s.watchers[w] = struct{}{}
	s.mu.Unlock()
	return w
}

func (s *pathStore) unsubscribe(w *watcher) {
	s.mu.Lock()
	delete(s.watchers, w)
	s.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func main() {
	var (
		listen     = flag.String("listen", ":8080", "listen address")
		debugLevel = flag.String("debuglevel", "info", "log level")
	)
	flag.Parse()

	logBknd, err := logging.NewBackend("", *debugLevel, os.Stderr)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	log := logBknd.Logger("DIRD")

	store := newPathStore()
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/watch", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		if path == "" {
			http.Error(w, "missing path", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warnf("Watch upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		sub := store.subscribe(path)
		defer store.unsubscribe(sub)
		log.Debugf("Watch open for %s", path)

		if doc, ok := store.get(path); ok {
			if err := conn.WriteMessage(websocket.TextMessage, doc); err != nil {
				return
			}
		}

		// Reader goroutine ends the session on close or error.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case doc := <-sub.ch:
				if err := conn.WriteMessage(websocket.TextMessage, doc); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})

	mux.HandleFunc("/v1/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/"), "/")
		if path == "" {
			http.Error(w, "missing path", http.StatusBadRequest)
			return
		}
		switch r.Method {
		case http.MethodPut:
			defer r.Body.Close()
			var doc json.RawMessage
			if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			store.put(path, doc)
			log.Infof("Stored %s (%d bytes)", path, len(doc))
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			doc, ok := store.get(path)
			if !ok {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write(doc)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	srv := &http.Server{Addr: *listen, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Directory listening on %s", *listen)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Errorf("Directory terminated: %v", err)
		logBknd.Close()
		os.Exit(1)
	}
	logBknd.Close()
}
