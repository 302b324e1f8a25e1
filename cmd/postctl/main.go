package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostPilot/pkg/client"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "PostPilot server URL")
	user := flag.String("user", os.Getenv("POSTPILOT_USER"), "Username")
	password := flag.String("password", os.Getenv("POSTPILOT_PASSWORD"), "Password")
	email := flag.String("email", "", "Email, used with -register")
	register := flag.Bool("register", false, "Create the account before generating")
	platform := flag.String("platform", "twitter", "Target platform")
	save := flag.Bool("save", false, "Save the result to content history")
	timeout := flag.Duration("timeout", client.DefaultRequestTimeout, "Generation timeout")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	prompt := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if prompt == "" {
		fmt.Fprintln(os.Stderr, "usage: postctl [flags] <prompt>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *user == "" || *password == "" {
		log.Fatal("-user and -password (or POSTPILOT_USER and POSTPILOT_PASSWORD) are required")
	}

	logger := logging.NewNop()
	if *verbose {
		logger = logging.NewDevelopment()
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, options{
		baseURL:  *baseURL,
		user:     *user,
		password: *password,
		email:    *email,
		register: *register,
		platform: *platform,
		prompt:   prompt,
		save:     *save,
		timeout:  *timeout,
	}, logger); err != nil {
		log.Fatal(describe(err))
	}
}

type options struct {
	baseURL  string
	user     string
	password string
	email    string
	register bool
	platform string
	prompt   string
	save     bool
	timeout  time.Duration
}

func run(ctx context.Context, opts options, logger *logging.Logger) error {
	api, err := client.NewAPI(opts.baseURL, 0)
	if err != nil {
		return err
	}

	if opts.register {
		_, err = api.Register(ctx, opts.user, opts.password, opts.email)
	} else {
		_, err = api.Login(ctx, opts.user, opts.password)
	}
	if err != nil {
		return err
	}
	logger.Debug("Authenticated", zap.String("user", opts.user))

	broker := client.NewBroker(client.Config{
		URL:            api.SocketURL(),
		Jar:            api.Jar(),
		RequestTimeout: opts.timeout,
		Logger:         logger.Logger,
	})
	if err := broker.Connect(ctx); err != nil {
		return err
	}
	defer broker.Close()

	result, err := broker.GenerateContent(ctx, opts.prompt, opts.platform)
	if err != nil {
		return err
	}

	out, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if opts.save {
		entry, err := api.SaveHistory(ctx, opts.platform, result)
		if err != nil {
			return fmt.Errorf("save history: %w", err)
		}
		logger.Info("Saved to history", zap.Int64("id", entry.ID))
	}
	return nil
}

func describe(err error) string {
	var serr *client.ServerError
	var herr *client.HandshakeError
	var aerr *client.APIError
	switch {
	case errors.As(err, &serr):
		return fmt.Sprintf("generation failed (%s): %s", serr.Code, serr.Message)
	case errors.As(err, &herr):
		return fmt.Sprintf("socket refused with status %d, check the session", herr.Status)
	case errors.As(err, &aerr):
		return fmt.Sprintf("request failed: %s", aerr.Message)
	default:
		return err.Error()
	}
}
