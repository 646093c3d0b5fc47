// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package services

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/AshBuk/sonicinput/audio/factory"
	"github.com/AshBuk/sonicinput/audio/interfaces"
	"github.com/AshBuk/sonicinput/audio/processing"
	"github.com/AshBuk/sonicinput/config"
	"github.com/AshBuk/sonicinput/config/store"
	"github.com/AshBuk/sonicinput/history"
	"github.com/AshBuk/sonicinput/hotkeys/adapters"
	hotkeyInterfaces "github.com/AshBuk/sonicinput/hotkeys/interfaces"
	"github.com/AshBuk/sonicinput/hotkeys/manager"
	"github.com/AshBuk/sonicinput/internal/eventbus"
	"github.com/AshBuk/sonicinput/internal/logger"
	"github.com/AshBuk/sonicinput/internal/notify"
	"github.com/AshBuk/sonicinput/internal/platform"
	"github.com/AshBuk/sonicinput/internal/registry"
	"github.com/AshBuk/sonicinput/internal/tray"
	outputFactory "github.com/AshBuk/sonicinput/output/factory"
	outputInterfaces "github.com/AshBuk/sonicinput/output/interfaces"
	"github.com/AshBuk/sonicinput/output/outputters"
	"github.com/AshBuk/sonicinput/provider"
	"github.com/AshBuk/sonicinput/refine"
	"github.com/AshBuk/sonicinput/reload"
	"github.com/AshBuk/sonicinput/websocket"
	"github.com/AshBuk/sonicinput/whisper"
)

// outputManagerService is the Registry name under which the output manager
// singleton is seeded, so a RECREATE-strategy config reload can swap it.
const outputManagerService = "outputManager"

// ServiceFactoryConfig holds all dependencies needed to create services
type ServiceFactoryConfig struct {
	Logger      logger.Logger
	Config      *config.Config
	ConfigFile  string
	Environment platform.EnvironmentType
	ModelPath   string
}

// Components holds all initialized application components
type Components struct {
	ModelManager    whisper.ModelManager
	Recorder        interfaces.AudioRecorder
	WhisperEngine   *whisper.WhisperEngine
	StreamingEngine *whisper.StreamingWhisperEngine
	TempManager     *processing.TempFileManager
	OutputManager   outputInterfaces.Outputter
	HotkeyManager   *manager.HotkeyManager
	WebSocketServer *websocket.WebSocketServer
	TrayManager     tray.TrayManagerInterface
	NotifyManager   *notify.NotificationManager
}

// ServiceFactory creates and configures all services with proper dependency injection
type ServiceFactory struct {
	config ServiceFactoryConfig
}

// NewServiceFactory creates a new service factory
func NewServiceFactory(config ServiceFactoryConfig) *ServiceFactory {
	return &ServiceFactory{
		config: config,
	}
}

// CreateServices creates and configures all services
func (sf *ServiceFactory) CreateServices() (*ServiceContainer, error) {
	container := NewServiceContainer()

	// Create all components first
	components, err := sf.initializeComponents()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	// Create ConfigService and HotkeyService
	configService := sf.createConfigService(components.HotkeyManager)
	container.Config = configService

	hotkeyService := sf.createHotkeyService(components.HotkeyManager)
	container.Hotkeys = hotkeyService

	// Create AudioService
	audioService := sf.createAudioService(components)
	container.Audio = audioService

	// Create UIService
	uiService := sf.createUIService(components.TrayManager, components.NotifyManager)
	container.UI = uiService

	// Create IOService
	ioService := sf.createIOService(components.OutputManager, components.WebSocketServer)
	container.IO = ioService

	// Wire the config store, registry, event bus, and reload coordinator
	// that let runtime config.Set calls reach the running services.
	if err := sf.wireReloadInfrastructure(container, components, configService, audioService, ioService, hotkeyService); err != nil {
		sf.config.Logger.Warning("Failed to wire reload infrastructure: %v", err)
	}

	// Wire optional AI refinement and utterance history, if enabled.
	sf.wireOptionalPipeline(container, audioService)

	// Wire tray callbacks to services
	sf.wireTrayCallbacks(container, components)
	// Ensure Quit exits app cleanly
	if components.TrayManager != nil {
		components.TrayManager.SetExitAction(func() {
			// Send SIGTERM to trigger App shutdown flow and defers
			_ = syscall.Kill(os.Getpid(), syscall.SIGTERM)
		})
	}

	return container, nil
}

// initializeComponents initializes all application components
func (sf *ServiceFactory) initializeComponents() (*Components, error) {
	components := &Components{}

	// Initialize model manager
	components.ModelManager = whisper.NewModelManager(sf.config.Config)
	if err := components.ModelManager.Initialize(); err != nil {
		sf.config.Logger.Warning("Failed to initialize model manager: %v", err)
	}

	// Override model path if provided
	if sf.config.ModelPath != "" {
		sf.config.Config.General.ModelPath = sf.config.ModelPath
	}

	// Ensure model is available
	if err := sf.ensureModelAvailable(components.ModelManager); err != nil {
		return nil, fmt.Errorf("failed to ensure model availability: %w", err)
	}

	// Get model file path
	modelFilePath, err := components.ModelManager.GetModelPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve model path: %w", err)
	}
	sf.config.Logger.Info("Model path resolved: %s", modelFilePath)

	// Initialize audio recorder
	components.TempManager = processing.GetTempFileManager()
	components.Recorder, err = factory.GetRecorder(sf.config.Config, sf.config.Logger, components.TempManager)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio recorder: %w", err)
	}

	// Initialize whisper engine
	components.WhisperEngine, err = whisper.NewWhisperEngine(sf.config.Config, modelFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize whisper engine: %w", err)
	}

	// Initialize streaming engine if enabled
	if sf.config.Config.Audio.EnableStreaming {
		components.StreamingEngine, err = whisper.NewStreamingWhisperEngine(sf.config.Config, modelFilePath)
		if err != nil {
			sf.config.Logger.Warning("Failed to initialize streaming engine: %v", err)
			components.StreamingEngine = nil
		} else {
			sf.config.Logger.Info("Streaming transcription enabled")
		}
	}

	// Initialize output manager
	outputEnv := sf.convertEnvironmentType()
	components.OutputManager, err = outputFactory.GetOutputterFromConfig(sf.config.Config, outputEnv)
	if err != nil {
		sf.config.Logger.Warning("Failed to initialize text outputter: %v", err)
		// Fallback to clipboard only
		if fallbackOut := sf.createFallbackOutputManager(outputEnv); fallbackOut != nil {
			components.OutputManager = fallbackOut
		} else {
			return nil, fmt.Errorf("failed to initialize any output manager")
		}
	}

	// Initialize hotkey manager
	components.HotkeyManager = sf.createHotkeyManager()

	// Initialize WebSocket server (always initialized but may not be started)
	components.WebSocketServer = sf.createWebSocketServer(components.Recorder, components.WhisperEngine)

	// Initialize tray manager
	components.TrayManager = sf.createTrayManager()
	// Start tray manager (no-op in mock). Ensures systray is initialized early.
	if components.TrayManager != nil {
		components.TrayManager.Start()
	}

	// Initialize notification manager
	components.NotifyManager = notify.NewNotificationManager("Speak-to-AI", sf.config.Config)

	return components, nil
}

// createConfigService creates a ConfigService instance for configuration management only
func (sf *ServiceFactory) createConfigService(hotkeyManager *manager.HotkeyManager) *ConfigService {
	return NewConfigService(
		sf.config.Logger,
		sf.config.Config,
		sf.config.ConfigFile,
		hotkeyManager,
	)
}

// createHotkeyService creates a HotkeyService instance for hotkey management
func (sf *ServiceFactory) createHotkeyService(hotkeyManager *manager.HotkeyManager) *HotkeyService {
	return NewHotkeyService(
		sf.config.Logger,
		hotkeyManager,
	)
}

// createAudioService creates an AudioService instance
func (sf *ServiceFactory) createAudioService(components *Components) *AudioService {
	return NewAudioService(
		sf.config.Logger,
		sf.config.Config,
		components.Recorder,
		components.WhisperEngine,
		components.StreamingEngine,
		components.ModelManager,
		components.TempManager,
	)
}

// createUIService creates a UIService instance
func (sf *ServiceFactory) createUIService(trayManager tray.TrayManagerInterface, notifyManager *notify.NotificationManager) *UIService {
	return NewUIService(
		sf.config.Logger,
		trayManager,
		notifyManager,
		sf.config.Config,
	)
}

// createIOService creates an IOService instance
func (sf *ServiceFactory) createIOService(outputManager outputInterfaces.Outputter, webSocketServer *websocket.WebSocketServer) *IOService {
	return NewIOService(
		sf.config.Logger,
		sf.config.Config,
		outputManager,
		webSocketServer,
	)
}

// wireReloadInfrastructure builds the Config Store, Service Registry, Event
// Bus, and Reload Coordinator, seeds the output manager as a registry
// singleton, registers a Reloadable per reload-capable service, and
// subscribes the coordinator to store change events. The container keeps
// references so Shutdown can flush/close the store.
func (sf *ServiceFactory) wireReloadInfrastructure(
	container *ServiceContainer,
	components *Components,
	configService *ConfigService,
	audioService *AudioService,
	ioService *IOService,
	hotkeyService *HotkeyService,
) error {
	log := sf.config.Logger

	bus := eventbus.New(log)
	reg := registry.New()
	coordinator := reload.New(reg, bus, log)

	storePath := storePathFor(sf.config.ConfigFile)
	cfgStore := store.New(storePath, bus, log)
	if err := cfgStore.Load(); err != nil {
		return fmt.Errorf("loading config store: %w", err)
	}

	registry.Register[outputInterfaces.Outputter](reg, outputManagerService, registry.Singleton,
		func(r *registry.Registry) (interface{}, error) {
			env := sf.convertEnvironmentType()
			return outputFactory.GetOutputterFromConfig(sf.config.Config, env)
		})
	if err := reg.SeedSingleton(outputManagerService, components.OutputManager); err != nil {
		log.Warning("reload: failed to seed output manager singleton: %v", err)
	}

	configService.SetStore(cfgStore)

	coordinator.Register("audio", &audioReloadable{audio: audioService})
	coordinator.Register(outputManagerService, &ioReloadable{io: ioService})
	coordinator.Register("hotkeys", &hotkeyReloadable{hotkeys: hotkeyService, cfg: sf.config.Config})

	bus.On(store.EventConfigChanged, coordinator.HandleDiff)

	container.Store = cfgStore
	container.Registry = reg
	container.Bus = bus
	container.Reload = coordinator
	return nil
}

// storePathFor derives the Config Store's JSON path from the YAML config
// file path, e.g. "config.yaml" -> "config.store.json".
func storePathFor(configFile string) string {
	if configFile == "" {
		return "config.store.json"
	}
	ext := filepath.Ext(configFile)
	base := strings.TrimSuffix(configFile, ext)
	return base + ".store.json"
}

// wireOptionalPipeline constructs the AI refinement and utterance history
// stages when their respective config sections are enabled, and injects
// them into the AudioService's transcription-completion handler.
func (sf *ServiceFactory) wireOptionalPipeline(container *ServiceContainer, audioService *AudioService) {
	cfg := sf.config.Config
	log := sf.config.Logger

	if cfg.AI.Enabled {
		llm := provider.NewLLMProvider(provider.LLMProviderConfig{
			Name:    "refine",
			APIKey:  cfg.AI.APIKey,
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
			Timeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
			Logger:  log,
		})
		refiner := refine.New(llm, log)
		audioService.SetRefiner(refiner, refine.Options{
			PromptTemplate:  cfg.AI.PromptTemplate,
			MaxTokens:       cfg.AI.MaxTokens,
			GracefulDegrade: true,
		})
		log.Info("AI refinement enabled (model: %s)", cfg.AI.Model)
	}

	if cfg.History.Enabled {
		dbPath := cfg.History.DatabasePath
		if strings.HasPrefix(dbPath, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				dbPath = filepath.Join(home, dbPath[2:])
			}
		}
		histStore, err := history.Open(dbPath)
		if err != nil {
			log.Warning("Failed to open history store at %s: %v", dbPath, err)
		} else {
			audioService.SetHistoryStore(histStore)
			container.HistoryStore = histStore
			log.Info("Utterance history enabled (db: %s)", dbPath)
		}
	}
}

// Helper methods for component initialization

// ensureModelAvailable ensures the whisper model is available
func (sf *ServiceFactory) ensureModelAvailable(modelManager whisper.ModelManager) error {
	// Try to get the model path, which will download if needed
	_, err := modelManager.GetModelPath()
	if err != nil {
		sf.config.Logger.Info("Model not found locally, checking download...")
		return fmt.Errorf("failed to ensure model available: %w", err)
	}
	return nil
}

// convertEnvironmentType converts platform environment to output factory type
func (sf *ServiceFactory) convertEnvironmentType() outputFactory.EnvironmentType {
	switch sf.config.Environment {
	case platform.EnvironmentWayland:
		return outputFactory.EnvironmentWayland
	case platform.EnvironmentX11:
		return outputFactory.EnvironmentX11
	default:
		return outputFactory.EnvironmentX11
	}
}

// createFallbackOutputManager creates fallback clipboard-only output manager
func (sf *ServiceFactory) createFallbackOutputManager(outputEnv outputFactory.EnvironmentType) outputInterfaces.Outputter {
	clipboardTool := ""
	if outputEnv == outputFactory.EnvironmentWayland {
		if _, err := exec.LookPath("wl-copy"); err == nil {
			clipboardTool = "wl-copy"
		}
	}
	if clipboardTool == "" {
		if _, err := exec.LookPath("xclip"); err == nil {
			clipboardTool = "xclip"
		}
	}

	if clipboardTool != "" {
		sf.config.Logger.Info("Falling back to clipboard output using %s", clipboardTool)
		oldMode := sf.config.Config.Output.DefaultMode
		sf.config.Config.Output.DefaultMode = config.OutputModeClipboard
		sf.config.Config.Output.ClipboardTool = clipboardTool

		if out, err := outputters.NewClipboardOutputter(clipboardTool, sf.config.Config); err == nil {
			return out
		}

		// Restore original mode if fallback failed
		sf.config.Config.Output.DefaultMode = oldMode
	}

	return nil
}

// createHotkeyManager creates and configures hotkey manager
func (sf *ServiceFactory) createHotkeyManager() *manager.HotkeyManager {
	// Convert platform environment to hotkey interfaces environment
	var hotkeyEnv hotkeyInterfaces.EnvironmentType
	switch sf.config.Environment {
	case platform.EnvironmentWayland:
		hotkeyEnv = hotkeyInterfaces.EnvironmentWayland
	case platform.EnvironmentX11:
		hotkeyEnv = hotkeyInterfaces.EnvironmentX11
	default:
		hotkeyEnv = hotkeyInterfaces.EnvironmentX11
	}

	configAdapter := adapters.NewConfigAdapter(sf.config.Config.Hotkeys.StartRecording, sf.config.Config.Hotkeys.Provider)

	return manager.NewHotkeyManager(configAdapter, hotkeyEnv, sf.config.Logger)
}

// createWebSocketServer creates WebSocket server
func (sf *ServiceFactory) createWebSocketServer(recorder interfaces.AudioRecorder, whisperEngine *whisper.WhisperEngine) *websocket.WebSocketServer {
	return websocket.NewWebSocketServer(sf.config.Config, recorder, whisperEngine, sf.config.Logger)
}

// createTrayManager creates system tray manager
func (sf *ServiceFactory) createTrayManager() tray.TrayManagerInterface {
	// Create tray manager with placeholder callbacks (will be set later)
	return tray.CreateTrayManagerWithConfig(sf.config.Config,
		func() { // onExit
			sf.config.Logger.Info("Exit requested from tray")
		},
		func() error { // onToggle
			sf.config.Logger.Info("Toggle requested from tray")
			return nil
		},
		func() error { // onShowConfig
			sf.config.Logger.Info("Show config requested from tray")
			return nil
		},
		func() error { // onReloadConfig
			sf.config.Logger.Info("Reload config requested from tray")
			return nil
		})
}

// SetupServiceDependencies configures cross-service dependencies
func (sf *ServiceFactory) SetupServiceDependencies(container *ServiceContainer) {
	// Set up AudioService dependencies
	if audioSvc, ok := container.Audio.(*AudioService); ok {
		audioSvc.SetDependencies(container.UI, container.IO)
	}

	// Additional cross-dependencies can be set up here as needed
}

// wireTrayCallbacks connects tray menu actions to real services
func (sf *ServiceFactory) wireTrayCallbacks(container *ServiceContainer, components *Components) {
	if components == nil || components.TrayManager == nil {
		return
	}

	// Core actions (toggle, show config, reload config)
	components.TrayManager.SetCoreActions(
		func() error { // toggle
			if container == nil || container.Audio == nil {
				return fmt.Errorf("audio service not available")
			}
			if container.Audio.IsRecording() {
				return container.Audio.HandleStopRecording()
			}
			return container.Audio.HandleStartRecording()
		},
		func() error { // show config
			if container == nil || container.UI == nil {
				return fmt.Errorf("UI service not available")
			}
			return container.UI.ShowConfigFile()
		},
		func() error { // reload config
			if container == nil || container.Config == nil {
				return fmt.Errorf("config service not available")
			}
			return container.Config.ReloadConfig()
		},
	)

	// Audio actions (recorder selection, test recording)
	components.TrayManager.SetAudioActions(
		func(method string) error {
			// Update method and reinit on next start
			sf.config.Config.Audio.RecordingMethod = method
			if audioSvc, ok := container.Audio.(*AudioService); ok {
				audioSvc.audioRecorderNeedsReinit = true
			}
			return nil
		},
		func() error { // test 3s recording
			if container == nil || container.Audio == nil {
				return fmt.Errorf("audio service not available")
			}
			if err := container.Audio.HandleStartRecording(); err != nil {
				return err
			}
			go func() {
				time.Sleep(3 * time.Second)
				_ = container.Audio.HandleStopRecording()
			}()
			return nil
		},
	)

	// Settings actions (VAD, language, model, notifications)
	components.TrayManager.SetSettingsActions(
		func(sensitivity string) error {
			if container == nil || container.Config == nil {
				return fmt.Errorf("config service not available")
			}
			return container.Config.UpdateVADSensitivity(sensitivity)
		},
		func(language string) error {
			if container == nil || container.Config == nil {
				return fmt.Errorf("config service not available")
			}
			return container.Config.UpdateLanguage(language)
		},
		func(modelType string) error {
			if container == nil || container.Audio == nil || container.Config == nil {
				return fmt.Errorf("services not available")
			}
			if err := container.Config.UpdateModelType(modelType); err != nil {
				return err
			}
			return container.Audio.SwitchModel(modelType)
		},
		func() error {
			if container == nil || container.Config == nil {
				return fmt.Errorf("config service not available")
			}
			if err := container.Config.ToggleWorkflowNotifications(); err != nil {
				return err
			}
			// Inform user about new state
			if container.UI != nil {
				enabled := "disabled"
				if cfg, ok := container.Config.(*ConfigService); ok && cfg != nil {
					if c, ok2 := cfg.GetConfig().(*config.Config); ok2 && c != nil {
						if c.Notifications.EnableWorkflowNotifications {
							enabled = "enabled"
						}
					}
				}
				container.UI.ShowNotification("Workflow Notifications", "Now "+enabled)
			}
			return nil
		},
	)
}
