package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"aircheck/internal/store"
)

const statusRequestTimeout = 3 * time.Second

type healthPayload struct {
	Status  string               `json:"status"`
	Journal *store.HealthSummary `json:"journal,omitempty"`
}

// newStatusCommand asks the running daemon's health endpoint for its state.
func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			p := statusPrinter{out: out, colorize: isTerminal(out)}
			p.header("Aircheck Daemon")

			client := &http.Client{Timeout: statusRequestTimeout}
			resp, err := client.Get("http://" + cfg.Paths.APIBind + "/healthz")
			if err != nil {
				p.line(statusError, "Daemon", "not reachable at "+cfg.Paths.APIBind)
				p.line(statusInfo, "Hint", "start it with `aircheck run` or the aircheckd service")
				return nil
			}
			defer resp.Body.Close()

			var payload healthPayload
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				return fmt.Errorf("decode health response: %w", err)
			}

			kind := statusOK
			if payload.Status != "ok" {
				kind = statusWarn
			}
			p.line(kind, "Daemon", payload.Status)
			p.line(statusInfo, "Station", cfg.Station.ID)
			p.line(statusInfo, "Archive", cfg.Paths.ArchiveDir)

			if payload.Journal != nil {
				j := payload.Journal
				p.line(statusInfo, "Segments", strconv.Itoa(j.Total)+" tracked")
				p.line(statusOK, "Placed", strconv.Itoa(j.Placed))
				if j.Failed > 0 {
					p.line(statusError, "Failed", strconv.Itoa(j.Failed))
				}
				if j.Unmatched > 0 {
					p.line(statusWarn, "Unmatched", strconv.Itoa(j.Unmatched))
				}
			}
			return nil
		},
	}
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

func (k statusKind) label() string {
	switch k {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

const ansiReset = "\x1b[0m"

func (k statusKind) color() string {
	switch k {
	case statusOK:
		return "\x1b[32m"
	case statusWarn:
		return "\x1b[33m"
	case statusError:
		return "\x1b[31m"
	default:
		return "\x1b[34m"
	}
}

// statusPrinter writes the short label/value report the status command
// produces, coloring by severity when attached to a terminal.
type statusPrinter struct {
	out      io.Writer
	colorize bool
}

func (p statusPrinter) header(title string) {
	line := "== " + title + " =="
	if p.colorize {
		line = statusInfo.color() + line + ansiReset
	}
	fmt.Fprintln(p.out, line)
}

func (p statusPrinter) line(kind statusKind, label, message string) {
	text := fmt.Sprintf("  %-12s [%s] %s", label+":", kind.label(), message)
	if p.colorize {
		text = kind.color() + text + ansiReset
	}
	fmt.Fprintln(p.out, text)
}
