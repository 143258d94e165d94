package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"stocksim/internal/httpx"
	"stocksim/internal/quote/polygon"
	"stocksim/internal/quote/polygonadapter"
)

var (
	fetchSymbol string
	fetchDate   string
)

// fetchCmd probes the upstream provider once, bypassing the server's rate
// gate. Useful to verify the API key and reference date before first start.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch one opening price from the upstream provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		date := fetchDate
		if date == "" {
			date = cfg.Universe.ReferenceDate
		}
		if date == "" {
			return fmt.Errorf("no date given; pass --date or set reference_date")
		}

		httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
		client, err := polygon.NewClient(
			cfg.Polygon.APIKey,
			polygon.WithBaseURL(cfg.Polygon.Endpoint),
			polygon.WithHTTPClient(httpClient),
			polygon.WithHeader(http.Header{
				"User-Agent": []string{"stocksim/1.0"},
			}),
		)
		if err != nil {
			return err
		}
		src := polygonadapter.New(polygonadapter.Config{Name: "Polygon"}, client)

		open, err := src.OpeningPrice(cmd.Context(), fetchSymbol, date)
		if err != nil {
			return fmt.Errorf("%s on %s: %w", fetchSymbol, date, err)
		}

		out := struct {
			Symbol    string  `json:"symbol"`
			Date      string  `json:"date"`
			OpenPrice float64 `json:"openPrice"`
		}{Symbol: fetchSymbol, Date: date, OpenPrice: open}
		b, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(b))
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchSymbol, "symbol", "AAPL", "ticker symbol")
	fetchCmd.Flags().StringVar(&fetchDate, "date", "", "trading date YYYY-MM-DD (default: configured reference date)")
	rootCmd.AddCommand(fetchCmd)
}
