package temporalx

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/api/workflowservice/v1"
	temporalsdkclient "go.temporal.io/sdk/client"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
)

const (
	dialBackoff    = 250 * time.Millisecond
	dialBackoffMax = 5 * time.Second
)

// Dial connects to Temporal, retrying until cfg.DialMaxWait elapses. It
// returns nil, nil when no address is configured.
func Dial(ctx context.Context, log *logger.Logger, cfg Config) (temporalsdkclient.Client, error) {
	if !cfg.Enabled() {
		log.Info("TEMPORAL_ADDRESS not set; Temporal disabled")
		return nil, nil
	}
	opts, err := clientOptions(log, cfg)
	if err != nil {
		return nil, err
	}
	opts.Namespace = cfg.Namespace

	deadline := time.Now().Add(cfg.DialMaxWait)
	for attempt := 1; ; attempt++ {
		dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		c, err := temporalsdkclient.DialContext(dialCtx, opts)
		cancel()
		if err == nil {
			log.Info("Connected to Temporal", "address", cfg.Address, "namespace", cfg.Namespace, "attempts", attempt)
			if cfg.AutoRegister {
				if err := EnsureNamespace(ctx, log, cfg); err != nil {
					c.Close()
					return nil, err
				}
			}
			return c, nil
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			return nil, fmt.Errorf("temporal dial %s/%s: %w", cfg.Address, cfg.Namespace, err)
		}
		log.Warn("Temporal not reachable; retrying", "address", cfg.Address, "attempt", attempt, "error", err)
		if err := sleepCtx(ctx, backoff(attempt)); err != nil {
			return nil, err
		}
	}
}

// EnsureNamespace registers cfg.Namespace when it does not exist yet. Meant
// for self-hosted development servers.
func EnsureNamespace(ctx context.Context, log *logger.Logger, cfg Config) error {
	opts, err := clientOptions(log, cfg)
	if err != nil {
		return err
	}
	nsClient, err := temporalsdkclient.NewNamespaceClient(opts)
	if err != nil {
		return fmt.Errorf("temporal namespace client: %w", err)
	}
	defer nsClient.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for attempt := 1; ; attempt++ {
		_, err := nsClient.Describe(ctx, cfg.Namespace)
		if err == nil {
			return nil
		}
		var notFound *serviceerror.NamespaceNotFound
		if errors.As(err, &notFound) {
			err = nsClient.Register(ctx, &workflowservice.RegisterNamespaceRequest{
				Namespace:                        cfg.Namespace,
				Description:                      "healthwhisperer nudge scheduling",
				WorkflowExecutionRetentionPeriod: durationpb.New(time.Duration(cfg.RetentionDays) * 24 * time.Hour),
			})
			var exists *serviceerror.NamespaceAlreadyExists
			if err == nil || errors.As(err, &exists) {
				log.Info("Registered Temporal namespace", "namespace", cfg.Namespace, "retention_days", cfg.RetentionDays)
				return nil
			}
		}
		if !isRetryableRPC(err) {
			return fmt.Errorf("temporal ensure namespace %s: %w", cfg.Namespace, err)
		}
		log.Warn("Temporal namespace check retrying", "namespace", cfg.Namespace, "attempt", attempt, "error", err)
		if err := sleepCtx(ctx, backoff(attempt)); err != nil {
			return fmt.Errorf("temporal ensure namespace %s: %w", cfg.Namespace, err)
		}
	}
}

func clientOptions(log *logger.Logger, cfg Config) (temporalsdkclient.Options, error) {
	opts := temporalsdkclient.Options{HostPort: cfg.Address, Logger: log}
	if cfg.ClientCertPath == "" && cfg.ClientKeyPath == "" && cfg.ClientCAPath == "" {
		return opts, nil
	}
	tlsCfg, err := loadTLSConfig(cfg)
	if err != nil {
		return opts, err
	}
	opts.ConnectionOptions.TLS = tlsCfg
	return opts, nil
}

func loadTLSConfig(cfg Config) (*tls.Config, error) {
	if cfg.ClientCertPath == "" || cfg.ClientKeyPath == "" {
		return nil, errors.New("temporal tls: TEMPORAL_CLIENT_CERT_PATH and TEMPORAL_CLIENT_KEY_PATH must both be set")
	}
	cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
	if err != nil {
		return nil, fmt.Errorf("temporal tls: load key pair: %w", err)
	}
	tlsCfg := &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
	if cfg.ClientCAPath != "" {
		pem, err := os.ReadFile(cfg.ClientCAPath)
		if err != nil {
			return nil, fmt.Errorf("temporal tls: read CA: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.New("temporal tls: invalid CA pem")
		}
		tlsCfg.RootCAs = pool
	}
	return tlsCfg, nil
}

func backoff(attempt int) time.Duration {
	d := dialBackoff
	for i := 1; i < attempt && d < dialBackoffMax; i++ {
		d *= 2
	}
	return min(d, dialBackoffMax)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isRetryableRPC(err error) bool {
	if err == nil {
		return false
	}
	s, ok := status.FromError(err)
	if !ok {
		return errors.Is(err, context.DeadlineExceeded)
	}
	switch s.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}
