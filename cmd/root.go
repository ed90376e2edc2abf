package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	"musicdl/config"
	"musicdl/core"
	"musicdl/drm"
	"musicdl/logger"
	"musicdl/models"
	"musicdl/util"
	"musicdl/util/libav"
	"musicdl/util/networking"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	outputDir  string
	cdmPath    string
	key        string
	configPath string
	logLevel   string
}

func NewRootCommand() *cobra.Command {
	var opts rootOptions

	rootCmd := &cobra.Command{
		Use:   "musicdl <url>",
		Short: "Download music from Suno or other music platforms",
		Long: `Download a track from its page URL. Tracks without a direct file are
fetched from the protected stream and decrypted with ffmpeg using the content
key supplied with --key. Builds that link a key-system implementation can
negotiate the key from a Widevine device file (--cdm) instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], &opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.outputDir, "output", "o", "", "Output directory")
	flags.StringVarP(&opts.cdmPath, "cdm", "c", "", "Widevine device file (.wvd), used when a key-system implementation is linked in. Auto-detected from the config directory or $MUSIC_DL_CDM if not specified")
	flags.StringVarP(&opts.key, "key", "k", "", "Decryption key (32-char hex). Skips automatic key acquisition")
	flags.StringVar(&opts.configPath, "config", "", "Configuration file path")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	return rootCmd
}

func run(cmd *cobra.Command, pageURL string, opts *rootOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.outputDir != "" {
		cfg.DownloadsDirectory = opts.outputDir
	}
	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	if err := libav.CheckFFmpeg(); err != nil {
		zap.S().Warnf("%v, protected streams cannot be decrypted", err)
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	keySystem := drm.DefaultFactory()
	if keySystem == nil {
		zap.S().Debug("no key-system implementation linked in, protected tracks need --key")
	}

	pipeline := core.New(core.Options{
		Config:         cfg,
		Client:         client,
		OutputDir:      cfg.DownloadsDirectory,
		CredentialPath: opts.cdmPath,
		Key:            opts.key,
		KeySystem:      keySystem,
		ShowProgress:   isTerminal(os.Stderr),
	})
	_, err = pipeline.Run(ctx, pageURL)

	var keyErr *core.KeyRequiredError
	if errors.As(err, &keyErr) {
		printGuidance(cmd.ErrOrStderr(), keyErr)
	}
	return err
}

func newClient(cfg *models.EnvConfig) (*networking.Client, error) {
	var cookies []*http.Cookie
	if cfg.CookiesFile != "" {
		parsed, err := util.ParseCookieFile(cfg.CookiesFile)
		if err != nil {
			return nil, err
		}
		zap.S().Debugf("loaded %d cookies from %s", len(parsed), cfg.CookiesFile)
		cookies = parsed
	}
	return networking.NewClient(cfg, cookies), nil
}

func printGuidance(w io.Writer, keyErr *core.KeyRequiredError) {
	fmt.Fprintln(w)
	fmt.Fprint(w, keyErr.Guidance())
	fmt.Fprintln(w)
}

func isTerminal(file *os.File) bool {
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
