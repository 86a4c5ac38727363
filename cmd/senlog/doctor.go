package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/sensor-logger/internal/index"
	"github.com/Zuo-Peng/sensor-logger/internal/scan"
	"github.com/Zuo-Peng/sensor-logger/internal/serialport"
)

func doctorCmd() *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify serial device, data directory and catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// check serial device
			fmt.Println("=== Serial ===")
			fmt.Printf("  Port: %s @ %d baud, timeout %s\n", cfg.Port, cfg.Baud, cfg.ReadTimeout())
			if !serialport.Exists(cfg.Port) {
				fmt.Println("  Status: NOT FOUND")
			} else if probe {
				p, err := serialport.Open(serialport.Config{Name: cfg.Port, Baud: cfg.Baud, ReadTimeout: cfg.ReadTimeout()})
				if err != nil {
					fmt.Printf("  Status: OPEN FAILED (%v)\n", err)
				} else {
					p.Close()
					fmt.Println("  Status: OK (opened and released)")
				}
			} else {
				fmt.Println("  Status: present (use --probe to open it)")
			}

			// check data root
			fmt.Println("\n=== Data ===")
			checkDir("Root", cfg.DataRoot)
			checkDir("Movement", cfg.MovementDir())
			files, err := scan.ScanRoot(cfg.DataRoot)
			if err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				perMovement := make(map[string]int)
				for _, f := range files {
					perMovement[f.Movement]++
				}
				fmt.Printf("  CSV files: %d\n", len(files))
				names := make([]string, 0, len(perMovement))
				for name := range perMovement {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					label := name
					if label == "" {
						label = "(root)"
					}
					fmt.Printf("    %-20s %d\n", label, perMovement[name])
				}
			}

			// check DB
			fmt.Println("\n=== Catalog ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'senlog index' first)")
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			sessionCount, err := db.SessionCount(cfg.DataRoot)
			if err != nil {
				return fmt.Errorf("count sessions: %w", err)
			}
			rowCount, err := db.RowCount(cfg.DataRoot)
			if err != nil {
				return fmt.Errorf("count rows: %w", err)
			}
			fmt.Printf("  Sessions: %d\n", sessionCount)
			fmt.Printf("  Rows:     %d\n", rowCount)

			counts, err := db.StatusCounts(cfg.DataRoot)
			if err != nil {
				return fmt.Errorf("count statuses: %w", err)
			}
			for _, status := range []string{index.StatusRecording, index.StatusComplete, index.StatusInterrupted, index.StatusImported} {
				if n := counts[status]; n > 0 {
					fmt.Printf("    %-12s %d\n", status, n)
				}
			}
			if files != nil && len(files) != sessionCount {
				fmt.Printf("  Status: MISMATCH (files=%d, sessions=%d, run 'senlog index')\n", len(files), sessionCount)
			}

			// check DB file size
			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeKB := float64(info.Size()) / 1024
				fmt.Printf("\n=== DB Size: %.1f KB ===\n", sizeKB)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Open and release the serial port to check access")

	return cmd
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}
