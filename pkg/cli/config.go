package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/aztralwrld/eve/pkg/adapter"
	"github.com/aztralwrld/eve/pkg/model"
	"github.com/aztralwrld/eve/pkg/repository"
	"github.com/aztralwrld/eve/pkg/usecase/companion"
	"github.com/aztralwrld/eve/pkg/utils/logging"
)

// config holds configuration values
type config struct {
	configPath string
	logLevel   string

	// Repository
	backend  string
	dbPath   string
	project  string
	database string

	// Adapters
	geminiAPIKey string
	chatModel    string
	imageModel   string
	speechModel  string
	voice        string

	// Media archive
	bucket string

	// Persona override
	personaPath string
}

// fileConfig is the YAML shape of the optional config file. File values fill
// in whatever flags and environment left empty.
type fileConfig struct {
	LogLevel string `yaml:"log_level"`
	Backend  string `yaml:"backend"`
	Bucket   string `yaml:"bucket"`
	Persona  string `yaml:"persona"`

	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`

	Firestore struct {
		Project  string `yaml:"project"`
		Database string `yaml:"database"`
	} `yaml:"firestore"`

	Gemini struct {
		APIKey      string `yaml:"api_key"`
		ChatModel   string `yaml:"chat_model"`
		ImageModel  string `yaml:"image_model"`
		SpeechModel string `yaml:"speech_model"`
		Voice       string `yaml:"voice"`
	} `yaml:"gemini"`
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML config file",
			Sources:     cli.EnvVars("EVE_CONFIG"),
			Destination: &cfg.configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Sources:     cli.EnvVars("EVE_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "Persistence backend (sqlite or firestore)",
			Sources:     cli.EnvVars("EVE_BACKEND"),
			Destination: &cfg.backend,
		},
		&cli.StringFlag{
			Name:        "db-path",
			Usage:       "SQLite database path",
			Sources:     cli.EnvVars("EVE_DB_PATH"),
			Destination: &cfg.dbPath,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID for Firestore",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
	}
}

// llmFlags returns flags for model-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key",
			Sources:     cli.EnvVars("GEMINI_API_KEY"),
			Destination: &cfg.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "chat-model",
			Usage:       "Model for conversation turns",
			Sources:     cli.EnvVars("EVE_CHAT_MODEL"),
			Destination: &cfg.chatModel,
		},
		&cli.StringFlag{
			Name:        "image-model",
			Usage:       "Model for image synthesis",
			Sources:     cli.EnvVars("EVE_IMAGE_MODEL"),
			Destination: &cfg.imageModel,
		},
		&cli.StringFlag{
			Name:        "speech-model",
			Usage:       "Model for speech synthesis",
			Sources:     cli.EnvVars("EVE_SPEECH_MODEL"),
			Destination: &cfg.speechModel,
		},
		&cli.StringFlag{
			Name:        "voice",
			Usage:       "Prebuilt voice name for speech synthesis",
			Sources:     cli.EnvVars("EVE_VOICE"),
			Destination: &cfg.voice,
		},
		&cli.StringFlag{
			Name:        "persona",
			Usage:       "Path to a file overriding the core instruction",
			Sources:     cli.EnvVars("EVE_PERSONA"),
			Destination: &cfg.personaPath,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket for media archive",
			Sources:     cli.EnvVars("EVE_BUCKET"),
			Destination: &cfg.bucket,
		},
	}
}

// setup loads the optional config file, fills empty fields from it, and
// installs the default logger. Every command action calls this first.
func (cfg *config) setup() error {
	if cfg.configPath != "" {
		raw, err := os.ReadFile(cfg.configPath)
		if err != nil {
			return goerr.Wrap(err, "failed to read config file", goerr.V("path", cfg.configPath))
		}

		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return goerr.Wrap(err, "failed to parse config file", goerr.V("path", cfg.configPath))
		}
		cfg.merge(&fc)
	}

	logging.SetDefault(logging.New(cfg.logLevel, os.Stderr))
	return nil
}

func (cfg *config) merge(fc *fileConfig) {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}

	fill(&cfg.logLevel, fc.LogLevel)
	fill(&cfg.backend, fc.Backend)
	fill(&cfg.bucket, fc.Bucket)
	fill(&cfg.personaPath, fc.Persona)
	fill(&cfg.dbPath, fc.SQLite.Path)
	fill(&cfg.project, fc.Firestore.Project)
	fill(&cfg.database, fc.Firestore.Database)
	fill(&cfg.geminiAPIKey, fc.Gemini.APIKey)
	fill(&cfg.chatModel, fc.Gemini.ChatModel)
	fill(&cfg.imageModel, fc.Gemini.ImageModel)
	fill(&cfg.speechModel, fc.Gemini.SpeechModel)
	fill(&cfg.voice, fc.Gemini.Voice)
}

// newRepository creates the repository for the configured backend
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	switch cfg.backend {
	case "", "sqlite":
		path := cfg.dbPath
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, goerr.Wrap(err, "failed to resolve home directory")
			}
			path = filepath.Join(home, ".eve", "eve.db")
		}

		repo, err := repository.NewSQLite(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open sqlite repository")
		}
		return repo, nil

	case "firestore":
		if cfg.project == "" {
			return nil, goerr.New("project is required for the firestore backend")
		}
		database := cfg.database
		if database == "" {
			database = "(default)"
		}

		repo, err := repository.NewFirestore(ctx, cfg.project, database)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create firestore repository")
		}
		return repo, nil

	default:
		return nil, goerr.New("unknown backend", goerr.V("backend", cfg.backend))
	}
}

// newGemini creates the Gemini adapter. A missing API key maps to
// ErrNoCredentials so the caller can degrade instead of crashing.
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiAPIKey == "" {
		return nil, goerr.Wrap(model.ErrNoCredentials, "gemini-api-key is not set")
	}

	var opts []adapter.GeminiOption
	if cfg.chatModel != "" {
		opts = append(opts, adapter.WithChatModel(cfg.chatModel))
	}
	if cfg.imageModel != "" {
		opts = append(opts, adapter.WithImageModel(cfg.imageModel))
	}
	if cfg.speechModel != "" {
		opts = append(opts, adapter.WithSpeechModel(cfg.speechModel))
	}
	if cfg.voice != "" {
		opts = append(opts, adapter.WithVoice(cfg.voice))
	}

	gemini, err := adapter.NewGemini(ctx, cfg.geminiAPIKey, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini adapter")
	}
	return gemini, nil
}

// newStorage creates the media archive adapter
func (cfg *config) newStorage(ctx context.Context) (adapter.Storage, error) {
	if cfg.bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	storage, err := adapter.NewStorage(ctx, cfg.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}
	return storage, nil
}

// newCompanion wires repository and adapter into the usecase. The persona
// file, when set, replaces the embedded core instruction.
func (cfg *config) newCompanion(ctx context.Context) (*companion.UseCase, repository.Repository, error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		_ = repo.Close()
		return nil, nil, err
	}

	var opts []companion.Option
	if cfg.personaPath != "" {
		raw, err := os.ReadFile(cfg.personaPath)
		if err != nil {
			_ = repo.Close()
			return nil, nil, goerr.Wrap(err, "failed to read persona file", goerr.V("path", cfg.personaPath))
		}
		opts = append(opts, companion.WithBaseInstruction(string(raw)))
	}

	return companion.New(repo, gemini, opts...), repo, nil
}
