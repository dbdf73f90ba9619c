package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docchat/internal/config"
	"docchat/internal/server"
	"docchat/internal/tui"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:          "docchat",
		Short:        "Ask questions about a document with retrieval-augmented generation",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (default ./config.yaml, then ~/.config/docchat/config.yaml)")
	root.AddCommand(
		newChatCmd(&cfgPath),
		newAskCmd(&cfgPath),
		newServeCmd(&cfgPath),
		newCheckCmd(&cfgPath),
	)
	return root
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path == "" {
		cfg, _, err := config.LoadDefault()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newChatCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat FILE",
		Short: "Ingest FILE and chat about it in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			// the terminal belongs to the UI
			if cfg.Log.File == "" {
				cfg.Log.File = filepath.Join(os.TempDir(), "docchat.log")
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.ingestFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			m := tui.New(a.chat, res.Document, res.Summary, cfg.Retrieval.TopK)
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

func newAskCmd(cfgPath *string) *cobra.Command {
	var topK int
	cmd := &cobra.Command{
		Use:   "ask FILE QUESTION...",
		Short: "Ingest FILE, answer one question and exit",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := a.ingestFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			if topK <= 0 {
				topK = cfg.Retrieval.TopK
			}
			ans, err := a.chat.Ask(cmd.Context(), strings.Join(args[1:], " "), topK)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ans.Text)
			if len(ans.Sources) > 0 {
				fmt.Fprintln(out, "\nSources:")
				for _, s := range ans.Sources {
					fmt.Fprintf(out, "  [%d] chunk %d (score %.3f): %s\n", s.Rank, s.Chunk.ID, s.Score, preview(s.Chunk.Text, 100))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of excerpts to retrieve (default from config)")
	return cmd
}

func newServeCmd(cfgPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve [FILE]",
		Short: "Run the HTTP API, optionally ingesting FILE first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if len(args) == 1 {
				if _, err := a.ingestFile(cmd.Context(), args[0]); err != nil {
					return err
				}
			}
			if err := a.chat.GeneratorHealth(cmd.Context()); err != nil {
				a.logger.Warn("generator not reachable, answers will be degraded", zap.Error(err))
			}

			gin.SetMode(gin.ReleaseMode)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(a.chat, cfg.Server, cfg.Retrieval.TopK, a.logger).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newCheckCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the configured embedder and generator are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()
			return a.check(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
