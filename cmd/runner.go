package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/prepx/internal/repositories"
	"github.com/desertthunder/prepx/internal/services"
	"github.com/desertthunder/prepx/internal/shared"
	"github.com/desertthunder/prepx/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, OAuth session and practice engine are opened on first use so that
// commands which never touch them (api, setup) work without a configured store.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	svc        services.Service
	speech     tasks.Speech
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db      *sql.DB
	ownDB   bool
	session *services.Session
	engine  *tasks.PracticeEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        *services.APIService
	Service    services.Service
	Speech     tasks.Speech
	DB         *sql.DB
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.Backend.BaseURL, opts.HTTPClient)
		if rl := opts.Config.Backend.RateLimit; rl > 0 {
			opts.API.WithLimiter(rate.NewLimiter(rate.Limit(rl), 1))
		}
	}
	if opts.Service == nil {
		opts.Service = services.NewInterviewService(opts.API)
	}
	if opts.Speech == nil {
		opts.Speech = services.NewSpeechService(opts.API, services.SpeechOpts{
			Uploader:       &http.Client{Timeout: opts.Config.Backend.Timeout.Duration},
			MaxUploadBytes: opts.Config.Audio.MaxUploadBytes,
			MaxWait:        opts.Config.Audio.TranscribeTimeout.Duration,
		})
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		svc:        opts.Service,
		speech:     opts.Speech,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, questionsCommand, answerCommand, speakCommand,
		historyCommand, cacheCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before applies global flags ahead of every command.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.engine = nil
}

// Close releases the database if the runner opened it.
func (r *Runner) Close() error {
	if r.db != nil && r.ownDB {
		err := r.db.Close()
		r.db = nil
		return err
	}
	return nil
}

// database opens the configured SQLite store and applies pending migrations.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	r.logger.Debug("opening database", "path", r.config.Database.Path)
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.db, r.ownDB = db, true
	return db, nil
}

// oauthSession returns the login session backed by the token table.
func (r *Runner) oauthSession() (*services.Session, error) {
	if r.session != nil {
		return r.session, nil
	}
	if !r.config.HasOAuth() {
		return nil, fmt.Errorf("%w: set oauth.client_id, oauth.auth_url and oauth.token_url in %s", shared.ErrMissingConfig, r.configFile())
	}

	db, err := r.database()
	if err != nil {
		return nil, err
	}

	session, err := services.NewSession(r.config.OAuth, repositories.NewTokenRepository(db))
	if err != nil {
		return nil, err
	}
	r.session = session.WithHTTPClient(r.httpClient)
	return r.session, nil
}

// authorize swaps the API client for one carrying the stored token.
//
// Without an OAuth registration or a stored login, requests go out unauthenticated
// and the backend decides whether that is acceptable.
func (r *Runner) authorize(ctx context.Context) {
	if !r.config.HasOAuth() {
		return
	}

	session, err := r.oauthSession()
	if err != nil {
		r.logger.Warn("login unavailable", "error", err)
		return
	}
	if !session.Authenticated() {
		r.logger.Warn("not logged in, run 'prepx auth login'")
		return
	}
	r.api.SetClient(session.Client(ctx, r.config.Backend.Timeout.Duration))
}

// practiceEngine builds the engine with the local attempt and clip stores.
// A database that cannot be opened only disables local persistence.
func (r *Runner) practiceEngine() *tasks.PracticeEngine {
	if r.engine != nil {
		return r.engine
	}

	opts := tasks.EngineOpts{
		OutputDir: r.config.Audio.OutputDir,
		Voice:     r.config.Backend.Voice,
		Logger:    r.logger,
	}
	if db, err := r.database(); err != nil {
		r.logger.Warn("local history disabled", "error", err)
	} else {
		opts.Recorder = repositories.NewAttemptRepository(db)
		opts.Clips = repositories.NewSpeechClipRepository(db)
	}

	r.engine = tasks.NewPracticeEngine(r.svc, r.speech, opts)
	return r.engine
}

func (r *Runner) configFile() string {
	if r.configPath == "" {
		return "config.toml"
	}
	return r.configPath
}

// printProgress writes updates from the returned channel until it is closed.
// The returned function closes the channel and waits for the printer to finish.
func (r *Runner) printProgress() (chan tasks.ProgressUpdate, func()) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchQuestion:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.Transcribe:
				r.writePlain("🎙  %s\n", update.Message)
			case tasks.Submit, tasks.Synthesize:
				r.writePlain("⏳ %s\n", update.Message)
			case tasks.ExportFeedback:
				r.writePlain("   %s\n", update.Message)
			default:
				r.logger.Debug(update.Message, "phase", update.Phase)
			}
		}
	}()

	return progressCh, func() {
		close(progressCh)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
