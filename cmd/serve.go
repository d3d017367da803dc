package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/theopenlane/phishguard/config"
	"github.com/theopenlane/phishguard/internal/api"
	"github.com/theopenlane/phishguard/internal/blocklist"
	"github.com/theopenlane/phishguard/internal/classifier"
	"github.com/theopenlane/phishguard/internal/emailauth"
	"github.com/theopenlane/phishguard/internal/pipeline"
	"github.com/theopenlane/phishguard/internal/slack"
	"github.com/theopenlane/phishguard/internal/textsig"
	"github.com/theopenlane/phishguard/internal/urlrisk"
)

// serveCmd is the cobra command that starts the phishguard API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the phishguard api server",
	Run: func(cmd *cobra.Command, _ []string) {
		err := serve(cmd.Context())
		cobra.CheckErr(err)
	},
}

// init registers the serve command and its flags on the root command
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.PersistentFlags().String("config", "./config/.config.yaml", "config file location")
}

// serve initializes dependencies and starts the phishguard API server
func serve(ctx context.Context) error {
	cfgPath := k.String("config")

	cfg, err := config.Load(&cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg.Server.Debug = k.Bool("debug")
	cfg.Server.Pretty = k.Bool("pretty")

	cls, err := setupClassifier(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setting up classifier: %w", err)
	}

	domainBlocklist := setupBlocklist(ctx, cfg)
	notifier := setupSlack(cfg)

	service := setupPipeline(cfg, cls, domainBlocklist, notifier)

	handler := api.NewRouter(service, cfg.Server.MaxBodySize)

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGracePeriod)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	log.Info().Str("listen", cfg.Server.Listen).Str("model", cfg.Classifier.Model).Msg("starting phishguard service")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}

// setupClassifier initializes the Gemini classifier from config
func setupClassifier(ctx context.Context, cfg *config.Config) (classifier.Classifier, error) {
	client, err := classifier.NewGeminiClient(
		ctx,
		cfg.Classifier.APIKey,
		classifier.WithGeminiLogger(log.Logger),
		classifier.WithModel(cfg.Classifier.Model),
		classifier.WithMaxRetries(cfg.Classifier.MaxRetries),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing gemini client: %w", err)
	}

	return client, nil
}

// setupBlocklist initializes the phishing domain blocklist from config,
// returning nil when unconfigured
func setupBlocklist(ctx context.Context, cfg *config.Config) *blocklist.Manager {
	if cfg.Blocklist.FeedConfig == "" {
		log.Info().Msg("phishing domain blocklist not configured, skipping")
		return nil
	}

	feedCfg, err := blocklist.LoadFeedConfig(cfg.Blocklist.FeedConfig)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Blocklist.FeedConfig).Msg("failed to load blocklist feed config")
		return nil
	}

	manager, err := blocklist.NewManager(
		feedCfg,
		blocklist.WithStorageDir(cfg.Blocklist.StorageDir),
		blocklist.WithHTTPClient(&http.Client{Timeout: cfg.Blocklist.RequestTimeout}),
		blocklist.WithLogger(log.Logger),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize blocklist manager")
		return nil
	}

	if cfg.Blocklist.AutoHydrate {
		go func() {
			log.Info().Msg("starting blocklist hydration")

			summary, hydrateErr := manager.Hydrate(ctx)
			if hydrateErr != nil {
				log.Error().Err(hydrateErr).Msg("blocklist hydration failed")
				return
			}

			log.Info().Int("feeds", summary.SuccessfulFeeds).Int("domains", summary.TotalDomains).Msg("blocklist hydration complete")
		}()
	}

	return manager
}

// setupSlack initializes the Slack webhook client from config, returning
// nil when unconfigured
func setupSlack(cfg *config.Config) *slack.Client {
	if cfg.Notify.SlackWebhookURL == "" {
		log.Info().Msg("slack notifications not configured, skipping")
		return nil
	}

	client, err := slack.New(
		cfg.Notify.SlackWebhookURL,
		slack.WithHTTPClient(&http.Client{Timeout: cfg.Notify.RequestTimeout}),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize slack client")
		return nil
	}

	log.Info().Msg("slack notifications configured")

	return client
}

// setupPipeline initializes the classification pipeline from config
func setupPipeline(cfg *config.Config, cls classifier.Classifier, domainBlocklist *blocklist.Manager, notifier *slack.Client) *pipeline.Service {
	urlOpts := []urlrisk.AnalyzerOption{
		urlrisk.WithLogger(log.Logger),
		urlrisk.WithURLBudget(cfg.Analysis.URLBudget),
		urlrisk.WithMaxURLs(cfg.Analysis.MaxURLs),
		urlrisk.WithDNSServer(cfg.Analysis.DNSServer),
	}

	if domainBlocklist != nil {
		urlOpts = append(urlOpts, urlrisk.WithBlocklist(domainBlocklist))
	}

	textAnalyzer := textsig.NewAnalyzer(
		textsig.WithBrandEntities(cfg.Analysis.Brands),
	)

	serviceOpts := []pipeline.ServiceOption{
		pipeline.WithLogger(log.Logger),
		pipeline.WithHeaderAnalyzer(emailauth.NewAnalyzer()),
		pipeline.WithURLAnalyzer(urlrisk.NewAnalyzer(urlOpts...)),
		pipeline.WithTextAnalyzer(textAnalyzer),
		pipeline.WithTargetLatency(cfg.Classifier.TargetLatency),
		pipeline.WithMinClassifierBudget(cfg.Classifier.MinBudget),
	}

	if notifier != nil {
		serviceOpts = append(serviceOpts, pipeline.WithNotifier(notifier))
	}

	return pipeline.NewService(cls, serviceOpts...)
}
