package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"watchflip/internal/events"
	"watchflip/internal/export"
	"watchflip/internal/query"
	"watchflip/internal/repos"
	"watchflip/internal/services"
)

var (
	exportFormat  string
	exportVariant string
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the inventory as csv, json, html or pdf",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, closeAll, err := offlineWatches()
		if err != nil {
			return err
		}
		defer closeAll()

		list, err := ws.List(cmd.Context())
		if err != nil {
			return err
		}
		list = query.DefaultSort.Apply(list)

		now := time.Now()
		var ext string
		var write func(io.Writer) error
		switch exportFormat {
		case "csv":
			ext = "csv"
			write = func(w io.Writer) error { return export.WriteCSV(w, list, export.ParseVariant(exportVariant)) }
		case "json":
			ext = "json"
			write = func(w io.Writer) error { return export.WriteJSON(w, list) }
		case "html":
			ext = "html"
			write = func(w io.Writer) error { return export.WriteHTML(w, export.BuildReport(list, now)) }
		case "pdf":
			ext = "pdf"
			write = func(w io.Writer) error { return export.WritePDF(w, export.BuildReport(list, now)) }
		default:
			return fmt.Errorf("unknown format %q (want csv, json, html or pdf)", exportFormat)
		}

		out := exportOut
		if out == "" {
			out = export.Filename(ext, now)
		}
		if out == "-" {
			return write(os.Stdout)
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d watches to %s\n", len(list), out)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Create watches from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		inputs, err := export.ParseCSV(f)
		if err != nil {
			return err
		}

		ws, closeAll, err := offlineWatches()
		if err != nil {
			return err
		}
		defer closeAll()

		res := ws.Import(cmd.Context(), inputs)
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d watches\n", len(res.Succeeded))
		for _, fail := range res.Failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", fail.ID, fail.Error)
		}
		if len(res.Failed) > 0 {
			return fmt.Errorf("%d records failed", len(res.Failed))
		}
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [PASSWORD]",
	Short: "Print a bcrypt hash for OPERATOR_PASSWORD_HASH",
	Long:  "Print a bcrypt hash for OPERATOR_PASSWORD_HASH. Without an argument the password is read from stdin.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var pw string
		if len(args) == 1 {
			pw = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			pw = strings.TrimRight(line, "\r\n")
		}
		hash, err := services.HashPassword(pw)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "csv, json, html or pdf")
	exportCmd.Flags().StringVar(&exportVariant, "variant", "simple", "CSV columns: simple or full")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", `Output file, "-" for stdout (default watch-inventory-DATE.EXT)`)
}

// offlineWatches opens the configured database without the HTTP stack.
// Events are not published from the CLI.
func offlineWatches() (*services.WatchService, func(), error) {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN, false)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	ws := services.NewWatchService(repos.NewWatchRepo(db), events.Nop{}, cfg.MediaDir)
	return ws, func() {
		db.Close()
		closeLog()
	}, nil
}
