package registry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/switcher/internal/shared/types"
)

// RemoteConfig configures the remote catalog client
type RemoteConfig struct {
	URL     string
	Timeout time.Duration
	Retries int
}

// Remote fetches app packages from a catalog service
type Remote struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

// NewRemote creates a catalog client
func NewRemote(cfg RemoteConfig, logger *zap.Logger) *Remote {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(100*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "AgentOS-Switcher/1.0").
		SetTransport(retryClient.HTTPClient.Transport).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	client.JSONUnmarshal = sonic.Unmarshal
	client.JSONMarshal = sonic.Marshal

	return &Remote{client: client, url: cfg.URL, logger: logger}
}

// Fetch downloads the catalog. Both the list layout and a bare array are accepted.
func (r *Remote) Fetch(ctx context.Context) ([]types.Package, error) {
	resp, err := r.client.R().SetContext(ctx).Get(r.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode())
	}

	body := resp.Body()
	var pkgs []types.Package
	var list manifestList
	if err := sonic.Unmarshal(body, &list); err == nil {
		pkgs = list.Apps
	} else if err := sonic.Unmarshal(body, &pkgs); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	for i := range pkgs {
		pkgs[i].Name = SanitizeName(pkgs[i].Name)
		pkgs[i].Description = SanitizeName(pkgs[i].Description)
	}
	return pkgs, nil
}

// Sync fetches the catalog and installs every package.
// Packages that fail validation are skipped and logged.
func (r *Remote) Sync(ctx context.Context, installer Installer) (int, error) {
	pkgs, err := r.Fetch(ctx)
	if err != nil {
		return 0, err
	}

	installed := 0
	for _, pkg := range pkgs {
		if err := installer.Install(pkg); err != nil {
			r.logger.Warn("Skipping remote package", zap.String("id", pkg.ID), zap.Error(err))
			continue
		}
		installed++
	}

	r.logger.Info("Synced remote catalog", zap.String("url", r.url), zap.Int("installed", installed))
	return installed, nil
}
