package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhubert/reword/internal/mockserver"
)

var mockServerFlags struct {
	addr  string
	delay time.Duration
}

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Serve a fake chat completions endpoint for offline use",
	Long: `Serve a fake OpenAI-style chat completions endpoint that streams
simulated rewrites. Point reword at it with:

  reword --base-url http://127.0.0.1:8089/v1 "some text"`,
	Args: cobra.NoArgs,
	RunE: runMockServer,
}

func init() {
	mockServerCmd.Flags().StringVar(&mockServerFlags.addr, "addr", mockserver.DefaultAddr, "listen address")
	mockServerCmd.Flags().DurationVar(&mockServerFlags.delay, "delay", 60*time.Millisecond, "delay between streamed words")
	rootCmd.AddCommand(mockServerCmd)
}

func runMockServer(cmd *cobra.Command, _ []string) error {
	logger, closeLog := setupLogging()
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              mockServerFlags.addr,
		Handler:           mockserver.New(mockServerFlags.delay, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Mock server listening on http://%s/v1\n", mockServerFlags.addr)
	logger.Info("mock server started", "addr", mockServerFlags.addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	logger.Info("mock server stopped")
	return nil
}
