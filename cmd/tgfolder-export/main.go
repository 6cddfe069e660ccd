package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AABur/tgfolder-export/internal/config"
	"github.com/AABur/tgfolder-export/internal/export"
	"github.com/AABur/tgfolder-export/internal/logger"
	"github.com/AABur/tgfolder-export/internal/session"
	"github.com/AABur/tgfolder-export/internal/telegram"
)

// Version information, injected at build time via ldflags.
var (
	Version   = "dev"
	Build     = "unknown"
	BuildTime = "unknown"
)

// Default output file names.
const (
	defaultJSONFile = "tgf-list.json"
	defaultTextFile = "tgf-list.txt"
)

// errUsage marks command-line misuse; main maps it to exit code 2.
var errUsage = errors.New("usage error")

var (
	clearSession bool
	qrLogin      bool
	jsonFile     string
	textFile     string
)

var rootCmd = &cobra.Command{
	Use:   "tgfolder-export",
	Short: "Export Telegram folder contents to file",
	Long: `tgfolder-export authenticates to Telegram, reads your custom folders
(dialog filters), resolves every included peer to its user, channel or group,
and writes the result as JSON or a plain-text report.

API credentials are read from app_api_id and app_api_hash (.env or the
process environment). The session is kept in ` + session.Dir + `/` + session.FileName + `.`,
	Version:       fmt.Sprintf("%s (build %s, %s)", Version, Build, BuildTime),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolVar(&clearSession, "clear-session", false, "clear saved Telegram session and exit")
	rootCmd.Flags().BoolVar(&qrLogin, "qr", false, "log in by scanning a QR code instead of a phone code")
	rootCmd.Flags().StringVarP(&jsonFile, "json", "j", "",
		fmt.Sprintf("export to JSON format (default file: %s)", defaultJSONFile))
	rootCmd.Flags().StringVarP(&textFile, "text", "t", "",
		fmt.Sprintf("export to text format (default file: %s)", defaultTextFile))
	rootCmd.Flags().Lookup("json").NoOptDefVal = defaultJSONFile
	rootCmd.Flags().Lookup("text").NoOptDefVal = defaultTextFile

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})
}

func run(cmd *cobra.Command, _ []string) error {
	if clearSession {
		// explicit clearing ignores every other flag
		path, err := session.Path()
		if err != nil {
			return err
		}
		session.ForceClear(path, cmd.OutOrStdout())
		return nil
	}

	if jsonFile != "" && textFile != "" {
		return fmt.Errorf("%w: -j/--json and -t/--text are mutually exclusive", errUsage)
	}
	if jsonFile == "" && textFile == "" && !qrLogin {
		return fmt.Errorf("%w: one of -j/--json or -t/--text is required", errUsage)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	logger.Init(cfg.LogLevel)
	log := logger.Get()

	sessionPath, err := session.Path()
	if err != nil {
		return err
	}
	if session.IsExpired(sessionPath, time.Now()) {
		log.Info().Str("path", sessionPath).Msg("removing expired session file")
		session.Cleanup(sessionPath)
	}

	ctx := cmd.Context()

	if qrLogin {
		if err := telegram.QRLogin(ctx, cfg, sessionPath, log); err != nil {
			return err
		}
		if jsonFile == "" && textFile == "" {
			// login-only invocation
			return nil
		}
	}

	client, err := telegram.Dial(cfg, sessionPath, log)
	if err != nil {
		return err
	}
	defer client.Close()

	if self := client.Self(); self != nil {
		log.Info().Str("username", self.Username).Msg("authorized")
	}

	exporter := export.NewExporter(client, log)
	result, err := exporter.ExportAll(ctx)
	if err != nil {
		return err
	}

	var (
		outFile string
		content string
	)
	if jsonFile != "" {
		outFile = jsonFile
		content, err = export.RenderJSON(result)
		if err != nil {
			return err
		}
	} else {
		outFile = textFile
		content = export.RenderText(result)
	}

	log.Info().Str("file", outFile).Msg("writing export")
	if err := os.WriteFile(outFile, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outFile, err)
	}

	log.Info().Msg("export completed successfully")
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, rootCmd.UsageString())
			os.Exit(2)
		}
		os.Exit(1)
	}
}
