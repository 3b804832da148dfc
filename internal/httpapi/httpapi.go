// Package httpapi serves health, metrics and a JSON fingerprint API next to
// the gRPC service.
//
// JSON strings cannot carry arbitrary bytes, so descriptors whose components
// are not UTF-8 must go through gRPC or the CBOR batch command instead.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"xdao.co/resumehash/cidutil"
	"xdao.co/resumehash/internal/metrics"
	"xdao.co/resumehash/internal/reqid"
	"xdao.co/resumehash/registry"
	"xdao.co/resumehash/rhash"
	"xdao.co/resumehash/storage"
)

// maxDescriptorBody bounds JSON descriptor requests. Escaping can expand a
// component up to six times.
const maxDescriptorBody = 6*(rhash.MaxReferenceLen+rhash.MaxContentTypeLen) + 1024

// API holds the handler dependencies.
type API struct {
	Logger        *slog.Logger
	Fingerprinter rhash.Fingerprinter
	// Registry is optional; the record endpoints answer 503 without it.
	Registry *registry.Registry
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
}

type descriptorBody struct {
	Reference   *string `json:"ref"`
	ContentType *string `json:"content_type"`
}

type fingerprintResponse struct {
	Fingerprint string `json:"fingerprint"`
	CID         string `json:"cid"`
}

type recordResponse struct {
	Reference   string `json:"ref"`
	ContentType string `json:"content_type"`
	CID         string `json:"cid"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	RuleID string `json:"rule_id,omitempty"`
}

// NewRouter sets up the routes and the request logging middleware.
func NewRouter(a API) *mux.Router {
	if a.Logger == nil {
		a.Logger = slog.Default()
	}
	gatherer := a.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := mux.NewRouter()
	r.Use(a.logRequests)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			a.Logger.Error("write healthz response", "err", err)
		}
	}).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")

	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/fingerprint", a.fingerprint).Methods("POST")
	api.HandleFunc("/text", a.text).Methods("POST")
	api.HandleFunc("/records", a.register).Methods("POST")
	api.HandleFunc("/records/{key}", a.resolve).Methods("GET")
	return r
}

func (a API) fingerprint(w http.ResponseWriter, r *http.Request) {
	d, ok := a.readDescriptor(w, r)
	if !ok {
		return
	}
	fp, err := a.Fingerprinter.ComputeDescriptor(d)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.writeFingerprint(w, http.StatusOK, fp)
}

func (a API) text(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, rhash.MaxTextLen))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
		return
	}
	fp, err := rhash.HashText(body)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fingerprintResponse{Fingerprint: fp.String(), CID: fp.CID().String()})
}

func (a API) register(w http.ResponseWriter, r *http.Request) {
	if a.Registry == nil {
		a.writeErr(w, registry.ErrNoStore)
		return
	}
	d, ok := a.readDescriptor(w, r)
	if !ok {
		return
	}
	fp, _, err := a.Registry.RegisterDescriptor(d)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	metrics.RegisteredRecords.Inc()
	a.writeFingerprint(w, http.StatusCreated, fp)
}

func (a API) resolve(w http.ResponseWriter, r *http.Request) {
	if a.Registry == nil {
		a.writeErr(w, registry.ErrNoStore)
		return
	}
	key := mux.Vars(r)["key"]
	var (
		d   rhash.Descriptor
		err error
	)
	if fp, perr := rhash.ParseFingerprint(key); perr == nil {
		d, err = a.Registry.Resolve(fp)
	} else {
		id, cerr := cidutil.Parse(key)
		if cerr != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: storage.ErrInvalidCID.Error()})
			return
		}
		d, err = a.Registry.ResolveCID(id)
	}
	if err != nil {
		a.writeErr(w, err)
		return
	}
	fp, err := a.Fingerprinter.ComputeDescriptor(d)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	id, err := fp.CIDFor(a.Fingerprinter.Algorithm)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{Reference: string(d.Reference), ContentType: string(d.ContentType), CID: id.String()})
}

func (a API) readDescriptor(w http.ResponseWriter, r *http.Request) (rhash.Descriptor, bool) {
	var body descriptorBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDescriptorBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return rhash.Descriptor{}, false
	}
	if body.Reference == nil || body.ContentType == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "ref and content_type are required"})
		return rhash.Descriptor{}, false
	}
	return rhash.Descriptor{Reference: []byte(*body.Reference), ContentType: []byte(*body.ContentType)}, true
}

func (a API) writeFingerprint(w http.ResponseWriter, status int, fp rhash.Fingerprint) {
	id, err := fp.CIDFor(a.Fingerprinter.Algorithm)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, status, fingerprintResponse{Fingerprint: fp.String(), CID: id.String()})
}

func (a API) writeErr(w http.ResponseWriter, err error) {
	markErr(w, err)
	var re *rhash.Error
	switch {
	case errors.As(err, &re):
		metrics.Rejections.WithLabelValues(re.RuleID).Inc()
		status := http.StatusUnprocessableEntity
		if re.Kind == rhash.KindInternal {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, errorResponse{Error: re.Message, Kind: string(re.Kind), RuleID: re.RuleID})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, registry.ErrNoStore):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		a.Logger.Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type rwLogger struct {
	http.ResponseWriter
	status int
	bytes  int
	err    error
}

func (w *rwLogger) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *rwLogger) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *rwLogger) SetErr(err error) { w.err = err }

func markErr(w http.ResponseWriter, err error) {
	if es, ok := w.(interface{ SetErr(error) }); ok {
		es.SetErr(err)
	}
}

// logRequests tags every request with an ID (taken from X-Request-ID when
// present) and logs it once the handler returns.
func (a API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = reqid.New()
		}
		w.Header().Set("X-Request-ID", id)
		rw := &rwLogger{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(rw, r.WithContext(reqid.With(r.Context(), id)))

		args := []any{"request_id", id, "method", r.Method, "path", r.URL.Path, "status", rw.status, "bytes", rw.bytes, "duration", time.Since(start)}
		if rw.err != nil {
			a.Logger.Warn("http request failed", append(args, "err", rw.err)...)
			return
		}
		a.Logger.Info("http request", args...)
	})
}
