package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"stocksim/internal/store"
)

// dumpCmd prints the durable instrument state as the server would load it.
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the durable instrument state",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var st store.Store
		if cfg.Store.Backend == "sqlite" {
			st, err = store.NewSQLite(cfg.Store.Path)
			if err != nil {
				return err
			}
		} else {
			st = store.NewFile(cfg.Store.Path)
		}
		defer st.Close()

		exists, err := st.Exists(cmd.Context())
		if err != nil {
			return err
		}
		if !exists {
			fmt.Println("no durable state; the server has not bootstrapped yet")
			return nil
		}

		instruments, err := st.LoadAll(cmd.Context())
		if err != nil {
			return err
		}
		b, _ := json.MarshalIndent(instruments, "", "  ")
		fmt.Println(string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
