package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"

	"xdao.co/resumehash/fprpc"
	"xdao.co/resumehash/internal/config"
	"xdao.co/resumehash/internal/httpapi"
	"xdao.co/resumehash/internal/logging"
	"xdao.co/resumehash/internal/metrics"
	"xdao.co/resumehash/registry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil))
}

// flagValues mirrors the config fields that can be overridden on the
// command line.
type flagValues struct {
	configPath    string
	listen        string
	metricsListen string
	algorithm     string
	maxMsgBytes   int
	storeBackend  string
	storeDir      string
	cacheObjects  int
	logFormat     string
	logLevel      string
	logFile       string
	listBackends  bool
}

func newFlagSet(errOut io.Writer) (*pflag.FlagSet, *flagValues) {
	v := &flagValues{}
	def := config.Default()
	fs := pflag.NewFlagSet("resumehashd", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&v.configPath, "config", "", "YAML config file")
	fs.StringVar(&v.listen, "listen", def.Listen, "gRPC listen address")
	fs.StringVar(&v.metricsListen, "metrics-listen", def.MetricsListen, "HTTP listen address for /metrics, /healthz and /v1 (empty disables)")
	fs.StringVar(&v.algorithm, "algorithm", def.Algorithm, "Fingerprint digest: sha256, sha3-256 or blake3")
	fs.IntVar(&v.maxMsgBytes, "max-msg-bytes", def.MaxMsgBytes, "Maximum gRPC message size")
	fs.StringVar(&v.storeBackend, "store-backend", def.Store.Backend, "Registry store: none, memory or localfs")
	fs.StringVar(&v.storeDir, "store-dir", "", "LocalFS registry directory (implies --store-backend=localfs)")
	fs.IntVar(&v.cacheObjects, "cache-objects", 0, "In-memory record cache in front of localfs (0 disables)")
	fs.StringVar(&v.logFormat, "log-format", def.Log.Format, "Log format: json or text")
	fs.StringVar(&v.logLevel, "log-level", def.Log.Level, "Log level: debug, info, warn or error")
	fs.StringVar(&v.logFile, "log-file", "", "Write logs to a rotated file instead of stderr")
	fs.BoolVar(&v.listBackends, "list-backends", false, "List supported store backends and exit")
	return fs, v
}

// loadConfig reads the config file, if any, and applies the flags that were
// set explicitly on top of it.
func loadConfig(fs *pflag.FlagSet, v *flagValues) (config.Config, error) {
	cfg := config.Default()
	if v.configPath != "" {
		var err error
		if cfg, err = config.Load(v.configPath); err != nil {
			return cfg, err
		}
	}
	if fs.Changed("listen") {
		cfg.Listen = v.listen
	}
	if fs.Changed("metrics-listen") {
		cfg.MetricsListen = v.metricsListen
	}
	if fs.Changed("algorithm") {
		cfg.Algorithm = v.algorithm
	}
	if fs.Changed("max-msg-bytes") {
		cfg.MaxMsgBytes = v.maxMsgBytes
	}
	if fs.Changed("store-dir") {
		cfg.Store.Dir = v.storeDir
		if !fs.Changed("store-backend") {
			cfg.Store.Backend = config.BackendLocalFS
		}
	}
	if fs.Changed("store-backend") {
		cfg.Store.Backend = v.storeBackend
	}
	if fs.Changed("cache-objects") {
		cfg.Store.CacheObjects = v.cacheObjects
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = v.logFormat
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = v.logLevel
	}
	if fs.Changed("log-file") {
		cfg.Log.File = v.logFile
	}
	return cfg, cfg.Validate()
}

// run starts the daemon and blocks until ctx is cancelled or a listener
// fails. ready, when non-nil, receives the bound addresses; httpAddr is nil
// when the HTTP listener is disabled.
func run(ctx context.Context, args []string, out, errOut io.Writer, ready func(grpcAddr, httpAddr net.Addr)) int {
	fs, v := newFlagSet(errOut)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if v.listBackends {
		for _, b := range []string{config.BackendNone, config.BackendMemory, config.BackendLocalFS} {
			_, _ = fmt.Fprintln(out, b)
		}
		return 0
	}
	cfg, err := loadConfig(fs, v)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	logger, logCloser, err := logging.New(cfg.LoggingOptions(), errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	defer logCloser.Close()

	f, err := cfg.Fingerprinter()
	if err != nil {
		logger.Error("invalid algorithm", "err", err)
		return 2
	}
	cas, err := cfg.OpenStore()
	if err != nil {
		logger.Error("open store", "backend", cfg.Store.Backend, "err", err)
		return 1
	}
	var reg *registry.Registry
	if cas != nil {
		reg = &registry.Registry{CAS: cas, Fingerprinter: f}
	}

	promReg := prometheus.NewRegistry()
	metrics.Register(promReg)
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		logger.Error("listen", "addr", cfg.Listen, "err", err)
		return 1
	}
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(fprpc.UnaryInterceptor(logger)),
		grpc.MaxRecvMsgSize(cfg.MaxMsgBytes),
		grpc.MaxSendMsgSize(cfg.MaxMsgBytes),
	)
	fprpc.RegisterFingerprintsServer(srv, &fprpc.Server{Fingerprinter: f, Registry: reg})

	errc := make(chan error, 2)
	go func() { errc <- srv.Serve(lis) }()

	var httpSrv *http.Server
	var httpAddr net.Addr
	if cfg.MetricsListen != "" {
		hlis, err := net.Listen("tcp", cfg.MetricsListen)
		if err != nil {
			srv.Stop()
			logger.Error("listen", "addr", cfg.MetricsListen, "err", err)
			return 1
		}
		httpAddr = hlis.Addr()
		httpSrv = &http.Server{
			Handler: httpapi.NewRouter(httpapi.API{
				Logger:        logger,
				Fingerprinter: f,
				Registry:      reg,
				Gatherer:      promReg,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := httpSrv.Serve(hlis); !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()
	}

	logger.Info("resumehashd listening",
		"grpc", lis.Addr().String(),
		"http", cfg.MetricsListen,
		"algorithm", f.Algorithm.String(),
		"store", cfg.Store.Backend,
	)
	if ready != nil {
		ready(lis.Addr(), httpAddr)
	}

	code := 0
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errc:
		logger.Error("server failed", "err", err)
		code = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if httpSrv != nil {
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", "err", err)
		}
	}
	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		srv.Stop()
	}
	return code
}
