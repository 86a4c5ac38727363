package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/sensor-logger/internal/index"
	"github.com/Zuo-Peng/sensor-logger/internal/render"
)

func previewCmd() *cobra.Command {
	var head, tail int

	cmd := &cobra.Command{
		Use:   "preview <sessionKey>",
		Short: "Print a session as aligned columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			opts := render.Options{
				Header: cfg.Header,
				Head:   head,
				Tail:   tail,
			}
			if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
				opts.Color = true
				if w, _, err := term.GetSize(fd); err == nil {
					opts.Width = w
				}
			}

			out, err := render.RenderSession(db, cfg.DataRoot, args[0], opts)
			if err != nil {
				return err
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&head, "head", 10, "Rows to show from the start")
	cmd.Flags().IntVar(&tail, "tail", 10, "Rows to show from the end (head and tail 0 = all rows)")

	return cmd
}
