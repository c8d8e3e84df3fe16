package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"alttext/internal/batch"
	"alttext/internal/config"
	"alttext/internal/logging"
	"alttext/internal/pipeline"
	"alttext/internal/provider"
	jsonx "alttext/internal/shared/json"
)

// taskEntry is one row of the --tasks JSON file.
type taskEntry struct {
	ID        string   `json:"id"`
	Path      string   `json:"path"`
	MIMEType  string   `json:"mime_type"`
	Context   string   `json:"context"`
	TypeHint  string   `json:"type_hint"`
	Languages []string `json:"languages"`
}

func newGenerateCmd() *cobra.Command {
	var (
		configPath string
		tasksPath  string
		outDir     string
		languages  []string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate alt text for a batch of images",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, _, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if debug {
				logging.SetLevel(logging.LevelDebug)
			}
			logger := logging.NewComponentLogger("cli")
			runner, err := buildRunner(cfg, logger)
			if err != nil {
				return err
			}

			tasks, err := loadTasks(tasksPath, languages)
			if err != nil {
				return err
			}

			sink, err := batch.NewJSONSink(outDir)
			if err != nil {
				return err
			}

			results, runErr := runner.Run(ctx, tasks)
			for _, result := range results {
				if _, err := sink.Save(result); err != nil {
					logger.Error("save result %s: %v", result.ImageID, err)
				}
			}
			printSummary(results, outDir)
			return runErr
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default searches ./alttext.yaml and ~/.alttext/)")
	cmd.Flags().StringVar(&tasksPath, "tasks", "", "JSON file listing images to process")
	cmd.Flags().StringVar(&outDir, "out", "out", "directory for per-image result files")
	cmd.Flags().StringSliceVar(&languages, "languages", nil, "target languages for tasks that do not set their own")
	cmd.Flags().BoolVar(&debug, "debug", false, "debug-level logging")
	_ = cmd.MarkFlagRequired("tasks")
	return cmd
}

func buildRunner(cfg *config.Config, logger logging.Logger) (*batch.Runner, error) {
	factory := provider.NewFactory(cfg)
	registerCredentials(factory, cfg)
	return batch.Assemble(cfg, factory, logger)
}

// registerCredentials resolves each gateway stage's credentials reference.
// Tokens come from ALTTEXT_CREDENTIAL_<REF> in the environment, falling back
// to the gateway endpoint's api_key. Token refresh flows live outside this
// binary; a static token is what batch use needs.
func registerCredentials(factory *provider.Factory, cfg *config.Config) {
	for _, spec := range cfg.Stages {
		if spec.Kind != config.ProviderGateway || spec.CredentialsRef == "" {
			continue
		}
		envKey := "ALTTEXT_CREDENTIAL_" + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(spec.CredentialsRef))
		token := os.Getenv(envKey)
		if token == "" {
			token = cfg.Endpoint(config.ProviderGateway).APIKey
		}
		factory.RegisterCredentials(spec.CredentialsRef, provider.StaticToken(token))
	}
}

func loadTasks(path string, fallbackLanguages []string) ([]pipeline.ImageTask, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tasks file: %w", err)
	}

	var entries []taskEntry
	if err := jsonx.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse tasks file: %w", err)
	}

	tasks := make([]pipeline.ImageTask, 0, len(entries))
	for i, entry := range entries {
		image, err := os.ReadFile(entry.Path)
		if err != nil {
			return nil, fmt.Errorf("task %d: read image: %w", i, err)
		}
		langs := entry.Languages
		if len(langs) == 0 {
			langs = fallbackLanguages
		}
		if len(langs) == 0 {
			return nil, fmt.Errorf("task %d: no languages set and no --languages fallback", i)
		}
		id := entry.ID
		if id == "" {
			id = strings.TrimSuffix(filepath.Base(entry.Path), filepath.Ext(entry.Path))
		}
		tasks = append(tasks, pipeline.ImageTask{
			ID:        id,
			Path:      entry.Path,
			Image:     image,
			MIMEType:  orDefault(entry.MIMEType, sniffMIME(entry.Path)),
			Context:   entry.Context,
			TypeHint:  entry.TypeHint,
			Languages: langs,
		})
	}
	return tasks, nil
}

func sniffMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func printSummary(results []pipeline.GenerationResult, outDir string) {
	ok, failed := 0, 0
	for _, result := range results {
		if result.Failed() {
			failed++
			fmt.Printf("%s %s\n", red("✗"), result.ImageID)
			for _, msg := range result.Errors {
				fmt.Printf("    %s\n", gray(msg))
			}
			continue
		}
		ok++
		fmt.Printf("%s %s", green("✓"), result.ImageID)
		if len(result.Errors) > 0 {
			fmt.Printf(" %s", yellow(fmt.Sprintf("(%d warning(s))", len(result.Errors))))
		}
		fmt.Println()
		for lang, lr := range result.PerLanguage {
			fmt.Printf("    %s %s\n", gray(lang+":"), lr.AltText)
		}
	}
	fmt.Printf("\n%s %d ok, %d failed, results in %s\n", bold("done:"), ok, failed, outDir)
}
