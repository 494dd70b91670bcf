package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rzbill/ringlog/internal/cmd/client/transports"
)

func newSendCommand() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "send <line>...",
		Short: "Append lines over TCP and print what the server echoes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines := make([][]byte, len(args))
			for i, a := range args {
				lines[i] = []byte(a)
			}
			tr := transports.NewTCPTransport(tcpAddrFromEnv(), timeout)
			out, err := tr.Send(cmd.Context(), lines)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Whole exchange timeout")
	return cmd
}

func newSeekToCommand() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "seekto <index> <offset>",
		Short: "Print the store from a byte of a record onwards",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			off, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("offset: %w", err)
			}
			tr := transports.NewTCPTransport(tcpAddrFromEnv(), timeout)
			out, err := tr.SeekTo(cmd.Context(), uint32(idx), uint32(off))
			if err != nil {
				return err
			}
			if len(out) == 0 {
				return fmt.Errorf("seekto %d,%d: no reply (record or offset out of range)", idx, off)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Whole exchange timeout")
	return cmd
}

func newHealthCommand() *cobra.Command {
	var service string
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health over gRPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			st, err := transports.NewGrpcTransport(dialGRPCContext).Check(ctx, service)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "status:", st)
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "", "Health service name (empty for the whole server)")
	return cmd
}

func newStatsCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print store statistics from the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, strings.TrimRight(baseURL(), "/")+"/v1/stats", nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("stats: %s: %s", resp.Status, strings.TrimSpace(string(body)))
			}
			var stats map[string]any
			if err := json.Unmarshal(body, &stats); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}
}
