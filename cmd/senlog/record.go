package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/sensor-logger/internal/index"
	"github.com/Zuo-Peng/sensor-logger/internal/logging"
	"github.com/Zuo-Peng/sensor-logger/internal/recorder"
	"github.com/Zuo-Peng/sensor-logger/internal/serialport"
)

func recordCmd() *cobra.Command {
	var portFlag, movementFlag string
	var noCatalog bool

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record serial telemetry into session files until interrupted",
		Long: `Opens the serial port and appends every received line to
collected_data/<movement>/<movement>_<id>.csv. A line containing the
sentinel ("End Data Collection") closes the file and starts a new one.
Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if portFlag != "" {
				cfg.Port = portFlag
			}
			if movementFlag != "" {
				if filepath.Base(movementFlag) != movementFlag {
					return fmt.Errorf("movement %q must be a plain name", movementFlag)
				}
				cfg.Movement = movementFlag
			}

			log := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: true})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := recorder.Options{
				DataRoot: cfg.DataRoot,
				Movement: cfg.Movement,
				Header:   cfg.Header,
				Sentinel: cfg.Sentinel,
				Retries:  cfg.CollisionRetries,
				Echo:     os.Stdout,
				Log:      log,

				ReadTimeout: cfg.ReadTimeout(),
			}

			// the port is opened first so a missing device leaves nothing on disk
			port, err := serialport.Open(serialport.Config{
				Name:        cfg.Port,
				Baud:        cfg.Baud,
				ReadTimeout: cfg.ReadTimeout(),
			})
			if err != nil {
				return err
			}
			defer port.Close()

			if !noCatalog {
				db, err := index.OpenDB(cfg.DBPath)
				if err != nil {
					log.Warn().Err(err).Msg("catalog unavailable, recording without it")
				} else {
					defer db.Close()
					opts.Catalog = db
				}
			}

			err = recorder.Start(ctx, func() (io.ReadCloser, error) { return port, nil }, opts)
			if errors.Is(err, context.Canceled) {
				log.Info().Msg("Data collection stopped by user.")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&portFlag, "port", "", "Serial device path (overrides config)")
	cmd.Flags().StringVar(&movementFlag, "movement", "", "Movement name used for the directory and file names")
	cmd.Flags().BoolVar(&noCatalog, "no-catalog", false, "Do not record sessions in the catalog")

	return cmd
}
