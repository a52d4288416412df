// Command certificate-preview renders a certificate PDF from a layout settings
// file and sample data, without a database or a running portal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/config"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/fetch"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/logging"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/render"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/settings"
	"certificate-automation/certifier-portal/certifier-portal-backend/pkg/storage"
)

func main() {
	_ = godotenv.Load()

	defaults := config.Default()
	var (
		settingsPath = flag.String("settings", "", "layout settings JSON file (default layout when empty)")
		name         = flag.String("name", "Jane Doe", "recipient name")
		title        = flag.String("title", "Contributor", "certificate title")
		certifier    = flag.String("certifier", "Example Org", "certifier name")
		link         = flag.String("url", "http://localhost:5000/certificate/preview/view", "URL encoded in the QR code")
		out          = flag.String("out", "Certificate.pdf", "output file, - for stdout")
		assets       = flag.String("assets", defaults.Renderer.AssetsDir, "directory holding static/ templates and fonts")
		timeout      = flag.Duration("timeout", defaults.Renderer.FetchTimeout, "timeout for remote templates")
		verbose      = flag.Bool("v", false, "print the placed elements")
	)
	flag.Parse()

	logger, err := logging.NewLogger(config.LoggingConfig{Level: "warn", Format: "console"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, *settingsPath, *assets, *timeout, *out, *verbose, render.Request{
		Certificate:     render.CertificateData{Name: *name, Title: *title},
		Certifier:       render.CertifierData{Name: *certifier},
		VerificationURL: *link,
	}); err != nil {
		logger.Fatal("Preview failed", zap.Error(err))
	}
}

func run(logger *zap.Logger, settingsPath, assets string, timeout time.Duration, out string, verbose bool, req render.Request) error {
	req.Settings = settings.Default()
	if settingsPath != "" {
		raw, err := os.ReadFile(settingsPath)
		if err != nil {
			return fmt.Errorf("failed to read settings: %w", err)
		}
		parsed, ok := settings.Parse(raw)
		if !ok {
			logger.Warn("Settings do not match the expected shape, using the default layout",
				zap.String("path", settingsPath))
		}
		req.Settings = parsed
	}

	ctx := context.Background()
	var s3 storage.S3Client
	if region := os.Getenv("S3_REGION"); region != "" {
		client, err := storage.NewS3Client(ctx, storage.S3Options{
			Region:    region,
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		})
		if err != nil {
			return err
		}
		s3 = client
	}

	templates := render.NewTemplateLoader(assets, fetch.NewClient(timeout, logger), s3)
	result, err := render.NewRenderer(assets, templates, logger).Render(ctx, req)
	if err != nil {
		return err
	}

	if verbose {
		for _, e := range result.Elements {
			fmt.Fprintf(os.Stderr, "%-10s left=%-7.2f bottom=%-7.2f %gx%g %q\n",
				e.Name, e.Left, e.Bottom, e.Width, e.Height, e.Text)
		}
	}

	var w io.Writer = os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err = io.Copy(w, result.PDF)
	return err
}
