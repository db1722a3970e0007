package inspect

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Inspection is a local debugging aid; any page may connect.
	CheckOrigin: func(*http.Request) bool { return true },
}

// NewHandler routes the inspection endpoints to pub. Requests are logged to
// accessLog when it is non-nil.
func NewHandler(pub *Publisher, accessLog io.Writer) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/snapshot", func(w http.ResponseWriter, req *http.Request) {
		snap, ok := pub.Latest()
		if !ok {
			http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, snap)
	}).Methods(http.MethodGet)
	r.HandleFunc("/tree", func(w http.ResponseWriter, req *http.Request) {
		snap, ok := pub.Latest()
		if !ok {
			http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, snap.Tree)
	}).Methods(http.MethodGet)
	r.HandleFunc("/stats", func(w http.ResponseWriter, req *http.Request) {
		snap, ok := pub.Latest()
		if !ok {
			http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, snap.Stats)
	}).Methods(http.MethodGet)
	r.HandleFunc("/nodes/{id:[0-9]+}", func(w http.ResponseWriter, req *http.Request) {
		id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		snap, _ := pub.Latest()
		node, ok := FindNode(snap.Tree, uint32(id))
		if !ok {
			http.NotFound(w, req)
			return
		}
		writeJSON(w, node)
	}).Methods(http.MethodGet)
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			logger().Warn("ws upgrade", "err", err)
			return
		}
		pub.register(conn)
	})

	var h http.Handler = r
	if accessLog != nil {
		h = handlers.LoggingHandler(accessLog, h)
	}
	return handlers.RecoveryHandler()(h)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger().Warn("write response", "err", err)
	}
}

// FindNode returns the node with the given id under root.
func FindNode(root NodeInfo, id uint32) (NodeInfo, bool) {
	if root.ID == id {
		return root, true
	}
	for _, c := range root.Children {
		if n, ok := FindNode(c, id); ok {
			return n, true
		}
	}
	return NodeInfo{}, false
}

// Serve listens on addr until ctx is cancelled, then shuts the server down
// and disconnects pub's clients.
func Serve(ctx context.Context, addr string, pub *Publisher, accessLog io.Writer) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(pub, accessLog),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger().Info("serving", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "inspect server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
