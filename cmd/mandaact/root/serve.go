package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mandaact/internal/api"
	"mandaact/internal/ui"
)

func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			addr := s.cfg.Listen
			if listen != "" {
				addr = listen
			}
			srv := api.New(s.svc, api.Options{UserID: s.user(), Location: s.cfg.Location(), Logger: s.log})

			errc := make(chan error, 1)
			go func() { errc <- srv.Listen(addr) }()
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconSparkle, "listening on "+addr))
			s.log.Printf("api listening addr=%s", addr)

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides config)")
	return cmd
}
