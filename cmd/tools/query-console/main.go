// cmd/tools/query-console/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"homelead-workers/internal/common/logger"
	"homelead-workers/internal/llm"
	"homelead-workers/internal/models"
	"homelead-workers/internal/query/pipeline"
	"homelead-workers/internal/store/memory"
	"homelead-workers/pkg/registry"
)

var (
	verbose bool

	askQuestion string
	askHint     string
	askSeed     string
	askRegistry string
	askLLM      bool

	registryFile string
)

var rootCmd = &cobra.Command{
	Use:   "query-console",
	Short: "Run the data-query pipeline from the command line",
	Long: `query-console resolves utterances against an in-memory copy of the
HomeLead collections and manages the collection registry file.`,
	SilenceUsage: true,
}

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Resolve one utterance against the in-memory store",
	Example: `  query-console ask -q "top 5 brokers in Mumbai"
  query-console ask -q "average budget of leads" -v
  query-console ask -q "Rahul Verma" --collection leads`,
	RunE: runAsk,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a collection registry file",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.LoadRegistry(registryFile)
		if err != nil {
			return fmt.Errorf("registry validation failed: %w", err)
		}
		fmt.Printf("Registry validation passed. Found %d collections (version %s).\n", len(reg.Collections), reg.Version)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the compiled-in collection registry to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := registry.Default()
		reg.LastUpdated = time.Now().Format(time.RFC3339)
		if err := reg.Save(registryFile); err != nil {
			return fmt.Errorf("export registry: %w", err)
		}
		fmt.Printf("Wrote %d collections to %s\n", len(reg.Collections), registryFile)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each pipeline stage")

	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "utterance to resolve (required)")
	askCmd.Flags().StringVar(&askHint, "collection", "", "collection hint used when no keyword matches")
	askCmd.Flags().StringVar(&askSeed, "seed", "", "JSON file of records keyed by collection (default: built-in demo records)")
	askCmd.Flags().StringVar(&askRegistry, "registry", "", "collection registry file (default: compiled-in profiles)")
	askCmd.Flags().BoolVar(&askLLM, "llm", false, "use the completion endpoint from LLM_BASE_URL / TOGETHER_API_KEY")
	_ = askCmd.MarkFlagRequired("question")

	for _, cmd := range []*cobra.Command{validateCmd, exportCmd} {
		cmd.Flags().StringVar(&registryFile, "path", "configs/collection-registry.json", "registry file path")
	}

	rootCmd.AddCommand(askCmd, validateCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(askQuestion) == "" {
		return fmt.Errorf("--question must not be empty")
	}

	log := logger.NewNoOpLogger()
	if verbose {
		log = logger.NewStructured("debug", "console")
	}

	reg, err := registry.LoadOrDefault(askRegistry)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	store := memory.NewSeeded()
	if askSeed != "" {
		if store, err = memory.LoadFile(askSeed); err != nil {
			return fmt.Errorf("load seed: %w", err)
		}
	}

	opts := pipeline.Options{
		Registry: reg,
		Store:    store,
		Logger:   log,
	}
	if askLLM {
		completer, err := llm.NewOpenAICompleter(llmConfigFromEnv(), nil, log)
		if err != nil {
			return fmt.Errorf("language model: %w", err)
		}
		opts.Completer = completer
	}

	var hint models.Collection
	if askHint != "" {
		c, ok := models.ParseCollection(askHint)
		if !ok {
			return fmt.Errorf("unknown collection %q", askHint)
		}
		hint = c
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	res := pipeline.New(opts).Resolve(ctx, pipeline.Request{Utterance: askQuestion, Hint: hint})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "collection: %s (%s)\n", res.Collection, res.Rule)
	fmt.Fprintf(out, "filter:     %s\n", res.Filter.String())
	fmt.Fprintf(out, "synthesis:  %s", res.SynthesisPath)
	if res.FallbackReason != "" {
		fmt.Fprintf(out, " (%s)", res.FallbackReason)
	}
	fmt.Fprintln(out)
	if len(res.Rejected) > 0 {
		fmt.Fprintf(out, "rejected:   %s\n", strings.Join(res.Rejected, ", "))
	}
	fmt.Fprintf(out, "mode:       %s, limit %d, %d result(s), %s\n", res.Mode, res.Limit, res.ResultCount, res.Outcome)
	fmt.Fprintln(out)
	fmt.Fprintln(out, res.Reply)
	return nil
}

func llmConfigFromEnv() llm.Config {
	cfg := llm.Config{
		BaseURL:    "https://api.together.xyz/v1",
		Model:      "meta-llama/Llama-3-8b-chat-hf",
		MaxTokens:  200,
		TopP:       0.7,
		MaxRetries: 2,
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	for _, name := range []string{"TOGETHER_API_KEY", "LLM_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			cfg.APIKey = v
			break
		}
	}
	return cfg
}
