package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	statusadapter "github.com/bnema/orderlink/internal/adapters/render/status"
	"github.com/spf13/cobra"
)

const defaultStaleAfter = 30 * time.Second

func newStatusCmd(app *app) *cobra.Command {
	var (
		addr       string
		asJSON     bool
		noSpinner  bool
		staleAfter time.Duration
		recent     int
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show connections and orders of a running peripheral",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := app.loadProfile()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = profile.DebugAddr
			}
			if addr == "" {
				return fmt.Errorf("status: no debug address (set debug.addr or --addr)")
			}

			spinnerOut := cmd.ErrOrStderr()
			if noSpinner || asJSON {
				spinnerOut = nil
			}
			doc, err := fetchSnapshot(cmd.Context(), app.httpClient, addr, spinnerOut)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}

			rendered, err := app.statusRenderer(doc.Snapshot(), statusadapter.RenderOptions{
				Now:          app.now(),
				StaleAfter:   staleAfter,
				BufferLimit:  profile.Framing.MaxMessageBytes,
				RecentOrders: recent,
			})
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Debug HTTP address of the running peripheral (default debug.addr)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the raw snapshot as JSON")
	cmd.Flags().BoolVar(&noSpinner, "no-spinner", false, "Fetch without the progress spinner")
	cmd.Flags().DurationVar(&staleAfter, "stale-after", defaultStaleAfter, "Flag partial messages older than this")
	cmd.Flags().IntVar(&recent, "recent", 0, "Number of recent orders to show (default 10)")

	return cmd
}
