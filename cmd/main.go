// Copyright 2025 Fotocabin Systems B.V.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fotocabin/booth-core/pkg/alerting"
	"github.com/fotocabin/booth-core/pkg/api"
	"github.com/fotocabin/booth-core/pkg/booth"
	"github.com/fotocabin/booth-core/pkg/config"
	"github.com/fotocabin/booth-core/pkg/constants"
	"github.com/fotocabin/booth-core/pkg/env"
	"github.com/fotocabin/booth-core/pkg/imaging"
	"github.com/fotocabin/booth-core/pkg/logger"
	"github.com/fotocabin/booth-core/pkg/metrics"
	"github.com/fotocabin/booth-core/pkg/models"
	"github.com/fotocabin/booth-core/pkg/perception"
	filesystem "github.com/fotocabin/booth-core/pkg/service/filesystem"
	"github.com/fotocabin/booth-core/pkg/storage"
	"github.com/fotocabin/booth-core/pkg/version"
)

func main() {
	// Initialize the global logger first thing
	logger.Initialize()

	// Initialize error reporting
	alerting.Init(version.GetAppVersion(), true)

	log := logger.For(logger.ComponentCore)
	log.Infof("Starting booth-core %s", version.GetAppVersion())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	configPath, err := env.GetAsString("BOOTH_CONFIG_PATH", false, constants.DefaultConfigPath)
	if err != nil {
		alerting.ReportIssuef(alerting.IssueTypeFatal, log, "Failed to read config path: %s", err)
		os.Exit(1)
	}

	configManager, err := config.NewFileConfigManagerWithBackoff()
	if err != nil {
		alerting.ReportIssuef(alerting.IssueTypeFatal, log, "Failed to create config manager: %s", err)
		os.Exit(1)
	}
	configManager.WithConfigPath(configPath)

	// Load or seed the configuration. Invalid validator thresholds are a
	// refusal to start: a booth with a broken ruleset must not judge photos.
	cfg, err := configManager.GetConfigOrCreateDefault(ctx)
	if err != nil {
		if errors.Is(err, config.ErrValidatorConfig) {
			alerting.ReportIssuef(alerting.IssueTypeFatal, log, "Validator configuration is invalid: %s", err)
		} else {
			alerting.ReportIssuef(alerting.IssueTypeFatal, log, "Failed to load config: %s", err)
		}
		os.Exit(1)
	}

	metricsPort, err := env.GetAsInt("BOOTH_METRICS_PORT", false, cfg.Booth.MetricsPort)
	if err != nil {
		alerting.ReportIssuef(alerting.IssueTypeFatal, log, "Invalid metrics port: %s", err)
		os.Exit(1)
	}
	apiPort, err := env.GetAsInt("BOOTH_API_PORT", false, cfg.Booth.APIPort)
	if err != nil {
		alerting.ReportIssuef(alerting.IssueTypeFatal, log, "Invalid API port: %s", err)
		os.Exit(1)
	}

	// Start the metrics server
	metricsServer := metrics.SetupMetricsEndpoint(fmt.Sprintf(":%d", metricsPort))
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Failed to shutdown metrics server: %v", err)
		}
	}()

	fsService := filesystem.NewDefaultService()

	store, err := buildStore(fsService, log)
	if err != nil {
		alerting.ReportIssuef(alerting.IssueTypeFatal, log, "Failed to create capture store: %s", err)
		os.Exit(1)
	}

	source, adapter, err := buildBoundaries(fsService, log)
	if err != nil {
		alerting.ReportIssuef(alerting.IssueTypeFatal, log, "Failed to wire booth boundaries: %s", err)
		os.Exit(1)
	}

	loop, err := booth.NewLoop(ctx, configManager, source, adapter, store)
	if err != nil {
		alerting.ReportIssuef(alerting.IssueTypeFatal, log, "Failed to assemble frame loop: %s", err)
		os.Exit(1)
	}

	debug, _ := env.GetAsBool("BOOTH_DEBUG", false, false)
	apiServer := api.NewServer(loop.StatusManager(), loop, store, api.ServerConfig{
		Port:  apiPort,
		Debug: debug,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Execute(gctx)
	})
	g.Go(func() error {
		return apiServer.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer shutdownCancel()
		return apiServer.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		alerting.ReportIssuef(alerting.IssueTypeFatal, log, "Booth failed: %s", err)
		os.Exit(1)
	}

	log.Info("booth-core stopped")
}

// buildStore selects the capture backend. File-backed by default; in-memory
// for development kiosks without persistent storage.
func buildStore(fsService filesystem.Service, log *zap.SugaredLogger) (storage.Store, error) {
	backend, err := env.GetAsString("BOOTH_STORAGE", false, "file")
	if err != nil {
		return nil, err
	}

	switch backend {
	case "file":
		dataDir, err := env.GetAsString("BOOTH_DATA_DIR", false, "/data/captures")
		if err != nil {
			return nil, err
		}
		log.Infof("Persisting captures to %s", dataDir)
		return storage.NewFileStore(dataDir, fsService)
	case "memory":
		log.Warn("Using in-memory capture storage, captures are lost on restart")
		return storage.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage backend %q, want file or memory", backend)
	}
}

// buildBoundaries wires the camera spool and the perception engine. With
// BOOTH_SIMULATION=true both are replaced by synthetic stand-ins, which keeps
// a development kiosk fully functional without hardware.
func buildBoundaries(fsService filesystem.Service, log *zap.SugaredLogger) (booth.FrameSource, perception.Adapter, error) {
	simulation, err := env.GetAsBool("BOOTH_SIMULATION", false, false)
	if err != nil {
		return nil, nil, err
	}

	if simulation {
		log.Warn("Simulation mode: serving a synthetic compliant subject")
		frame := models.Frame{
			Gray:      imaging.NoisyGray(640, 480, 150, 25, 7),
			Timestamp: time.Now(),
		}
		faceBox := image.Rect(239, 132, 401, 348)
		source := booth.NewMockFrameSource(frame)
		adapter := perception.NewMockAdapter().
			WithResult(perception.SyntheticFaceResult(faceBox, perception.NeutralFaceOptions()))
		return source, adapter, nil
	}

	framesDir, err := env.GetAsString("BOOTH_FRAMES_DIR", false, "/data/frames")
	if err != nil {
		return nil, nil, err
	}
	engineURL, err := env.GetAsString("BOOTH_PERCEPTION_URL", true, "")
	if err != nil {
		return nil, nil, fmt.Errorf("perception engine URL is required outside simulation mode: %w", err)
	}

	log.Infof("Reading frames from %s, perception engine at %s", framesDir, engineURL)
	return booth.NewSpoolSource(framesDir, fsService), perception.NewHTTPAdapter(engineURL), nil
}
