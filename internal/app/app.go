// Package app wires configuration, clients and services into the MCP server
// shared by the HTTP and stdio frontends.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vire-valuation/internal/clients/eodhd"
	"github.com/bobmcallan/vire-valuation/internal/common"
	"github.com/bobmcallan/vire-valuation/internal/interfaces"
	"github.com/bobmcallan/vire-valuation/internal/models"
	"github.com/bobmcallan/vire-valuation/internal/services/analysis"
	"github.com/bobmcallan/vire-valuation/internal/services/report"
	"github.com/bobmcallan/vire-valuation/internal/storage"
)

// ErrFetcherUnavailable is returned by analyses when no EODHD key is configured.
var ErrFetcherUnavailable = errors.New("EODHD API key not configured")

// App holds all initialized services, clients, and the MCP server.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Fetcher         interfaces.StatementFetcher
	ReportStore     interfaces.ReportStore
	ReportWriter    interfaces.ReportWriter
	AnalysisService interfaces.AnalysisService
	MCPServer       *server.MCPServer
	StartupTime     time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes clients, services and the MCP server.
// configPath may be empty, in which case VIRE_CONFIG, the binary directory
// and config/ are tried in turn.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()
	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("VIRE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "vire-valuation.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/vire-valuation.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Reports.Path != "" && !filepath.IsAbs(config.Reports.Path) {
		config.Reports.Path = filepath.Join(binDir, config.Reports.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	var fetcher interfaces.StatementFetcher = unavailableFetcher{}
	eodhdKey, err := common.ResolveAPIKey("eodhd_api_key", config.Clients.EODHD.APIKey)
	if err != nil {
		logger.Warn().Msg("EODHD API key not configured - valuations will be unavailable")
	} else {
		fetcher = eodhd.NewClient(eodhdKey,
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
			eodhd.WithDefaultExchange(config.Clients.EODHD.DefaultExchange),
		)
	}

	return New(config, logger, fetcher)
}

// New builds an App around an existing fetcher.
func New(config *common.Config, logger *common.Logger, fetcher interfaces.StatementFetcher) (*App, error) {
	startupStart := time.Now()

	var store interfaces.ReportStore
	if config.Reports.Enabled {
		fileStore, err := storage.NewFileReportStore(logger, config.Reports.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize report store: %w", err)
		}
		store = fileStore
	}

	writer := report.NewWriter(logger)
	analysisService := analysis.NewService(fetcher, writer, store, config.Valuation, logger)

	mcpServer := server.NewMCPServer(
		"vire-valuation",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:          config,
		Logger:          logger,
		Fetcher:         fetcher,
		ReportStore:     store,
		ReportWriter:    writer,
		AnalysisService: analysisService,
		MCPServer:       mcpServer,
		StartupTime:     startupStart,
	}

	a.registerTools()

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// Close releases resources held by the App.
func (a *App) Close() {
	a.Logger.Debug().Msg("App closed")
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createValuationTool(), handleValuation(a.AnalysisService, a.Config.Reports.Enabled, logger))
	s.AddTool(createRatiosTool(), handleRatios(a.AnalysisService, logger))
	s.AddTool(createDCFTool(), handleDCF(a.Config.Valuation))
	s.AddTool(createSensitivityTool(), handleSensitivity(a.Config.Valuation))
	s.AddTool(createListReportsTool(), handleListReports(a.ReportStore))
}

type unavailableFetcher struct{}

func (unavailableFetcher) FetchStatements(ctx context.Context, ticker string) (*models.StatementPackage, error) {
	return nil, ErrFetcherUnavailable
}
